package service

import (
	"time"

	calendarEntity "booking-router/modules/calendar/entity"
	providerService "booking-router/modules/provider/service"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
// Intervals that only touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int64) bool {
	return aStart < bEnd && bStart < aEnd
}

// WithinOpenHours reports whether [start, end] fits one of the windows
// configured for start's UTC weekday. A close of 00:00 is midnight at the end
// of the day. Windows that do not parse are skipped, so a calendar with no
// usable window is closed.
func WithinOpenHours(hours []calendarEntity.OpenHour, start, end time.Time) bool {
	start, end = start.UTC(), end.UTC()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(start.Weekday())

	for _, h := range hours {
		if h.DayOfWeek != weekday || !validClock(h.OpenHour, h.OpenMinute) || !validClock(h.CloseHour, h.CloseMinute) {
			continue
		}
		open := day.Add(time.Duration(h.OpenHour)*time.Hour + time.Duration(h.OpenMinute)*time.Minute)
		closeAt := day.Add(time.Duration(h.CloseHour)*time.Hour + time.Duration(h.CloseMinute)*time.Minute)
		if h.CloseHour == 0 && h.CloseMinute == 0 {
			closeAt = closeAt.Add(24 * time.Hour)
		}
		if !closeAt.After(open) {
			continue
		}
		if !start.Before(open) && !end.After(closeAt) {
			return true
		}
	}
	return false
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour < 24 && minute >= 0 && minute < 60
}

// bookedByUser indexes booked intervals by the person they are assigned to.
func bookedByUser(slots []calendarEntity.BookedSlot) map[string][]calendarEntity.BookedSlot {
	index := make(map[string][]calendarEntity.BookedSlot, len(slots))
	for _, s := range slots {
		if s.AssignedUserID == "" {
			continue
		}
		index[s.AssignedUserID] = append(index[s.AssignedUserID], s)
	}
	return index
}

func userBusy(booked []calendarEntity.BookedSlot, start, end int64) bool {
	for _, s := range booked {
		if Overlaps(start, end, s.StartTime, s.EndTime) {
			return true
		}
	}
	return false
}

// ResolveAvailability removes candidates that are closed at the requested time
// or whose schedulers are already booked. Which rules apply depends on the
// candidate's provider capabilities.
func ResolveAvailability(adapters AdapterResolver, candidates []Candidate, booked []calendarEntity.BookedSlot, start, end time.Time) []Candidate {
	byUser := bookedByUser(booked)
	reqStart, reqEnd := start.Unix(), end.Unix()

	available := make([]Candidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		adapter, err := adapters.Get(c.Source())
		if err != nil {
			continue
		}
		capability := adapter.Capabilities()

		if capability.OpenHours && !WithinOpenHours(c.OpenHours, start, end) {
			continue
		}

		switch capability.Availability {
		case providerService.SingleUser:
			if c.Account == nil || userBusy(byUser[c.Account.NativeID], reqStart, reqEnd) {
				continue
			}
		default:
			if len(c.TeamMembers) > 0 {
				free := freeMembers(c.TeamMembers, byUser, reqStart, reqEnd)
				if len(free) == 0 {
					continue
				}
				c.TeamMembers = free
			}
		}
		available = append(available, *c)
	}
	return available
}

// freeMembers drops the team members booked during [start, end).
func freeMembers(members []calendarEntity.TeamMember, byUser map[string][]calendarEntity.BookedSlot, start, end int64) []calendarEntity.TeamMember {
	free := make([]calendarEntity.TeamMember, 0, len(members))
	for _, m := range members {
		if !userBusy(byUser[m.UserID], start, end) {
			free = append(free, m)
		}
	}
	return free
}
