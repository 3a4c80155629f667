package service

import (
	"time"

	"booking-router/modules/calendar/entity"
)

// openHoursToUTC turns weekday windows given in loc wall-clock time into UTC
// windows. The offset used is the one in force on that weekday of the week
// containing ref, so the daily refresh picks up DST changes. A window that
// crosses midnight UTC is split in two.
func openHoursToUTC(hours []entity.OpenHour, loc *time.Location, ref time.Time) []entity.OpenHour {
	if loc == nil || loc == time.UTC {
		return hours
	}
	local := ref.In(loc)

	out := make([]entity.OpenHour, 0, len(hours))
	for _, h := range hours {
		if h.DayOfWeek < 0 || h.DayOfWeek > 6 || !validClock(h.OpenHour, h.OpenMinute) || !validClock(h.CloseHour, h.CloseMinute) {
			continue
		}
		y, m, d := local.AddDate(0, 0, (h.DayOfWeek-int(local.Weekday())+7)%7).Date()
		open := time.Date(y, m, d, h.OpenHour, h.OpenMinute, 0, 0, loc)
		closeAt := time.Date(y, m, d, h.CloseHour, h.CloseMinute, 0, 0, loc)
		if h.CloseHour == 0 && h.CloseMinute == 0 {
			closeAt = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		}
		if !closeAt.After(open) {
			continue
		}
		out = append(out, splitAtUTCMidnight(h.CalendarID, open.UTC(), closeAt.UTC())...)
	}
	return out
}

func splitAtUTCMidnight(calendarID string, open, closeAt time.Time) []entity.OpenHour {
	var out []entity.OpenHour
	for open.Before(closeAt) {
		end := time.Date(open.Year(), open.Month(), open.Day()+1, 0, 0, 0, 0, time.UTC)
		if closeAt.Before(end) {
			end = closeAt
		}
		out = append(out, entity.OpenHour{
			CalendarID:  calendarID,
			DayOfWeek:   int(open.Weekday()),
			OpenHour:    open.Hour(),
			OpenMinute:  open.Minute(),
			CloseHour:   end.Hour(),
			CloseMinute: end.Minute(),
		})
		open = end
	}
	return out
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour < 24 && minute >= 0 && minute < 60
}
