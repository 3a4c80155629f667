package entity

import (
	"time"

	coreEntity "booking-router/core/entity"
)

// Calendar mirrors one provider-side booking calendar or event type.
// Durations are stored in seconds whatever unit the provider uses.
type Calendar struct {
	coreEntity.BaseEntity
	CalendarID   string `db:"calendar_id" json:"calendar_id"`
	LocationID   string `db:"location_id" json:"location_id"`
	Name         string `db:"name" json:"name"`
	SlotDuration int64  `db:"slot_duration" json:"slot_duration"`
	SlotInterval int64  `db:"slot_interval" json:"slot_interval"`
	PreBuffer    int64  `db:"pre_buffer" json:"pre_buffer"`
	PostBuffer   int64  `db:"post_buffer" json:"post_buffer"`
	IsActive     bool   `db:"is_active" json:"is_active"`
	GroupID      string `db:"group_id" json:"group_id"`
	Slug         string `db:"slug" json:"slug"`
}

// OpenHour is one UTC window on a weekday (0 = Sunday). A close of 00:00
// means midnight at the end of that day.
type OpenHour struct {
	CalendarID  string `db:"calendar_id" json:"calendar_id"`
	DayOfWeek   int    `db:"day_of_week" json:"day_of_week"`
	OpenHour    int    `db:"open_hour" json:"open_hour"`
	OpenMinute  int    `db:"open_minute" json:"open_minute"`
	CloseHour   int    `db:"close_hour" json:"close_hour"`
	CloseMinute int    `db:"close_minute" json:"close_minute"`
}

type TeamMember struct {
	CalendarID string  `db:"calendar_id" json:"calendar_id"`
	UserID     string  `db:"user_id" json:"user_id"`
	Priority   float64 `db:"priority" json:"priority"`
	IsPrimary  bool    `db:"is_primary" json:"is_primary"`
}

// BookedSlot is an occupied interval in unix seconds.
type BookedSlot struct {
	coreEntity.BaseEntity
	EventID        string `db:"event_id" json:"event_id"`
	CalendarID     string `db:"calendar_id" json:"calendar_id"`
	LocationID     string `db:"location_id" json:"location_id"`
	AssignedUserID string `db:"assigned_user_id" json:"assigned_user_id"`
	StartTime      int64  `db:"start_time" json:"start_time"`
	EndTime        int64  `db:"end_time" json:"end_time"`
	Status         string `db:"status" json:"status"`
	ContactID      string `db:"contact_id" json:"contact_id"`
}

// SlotCacheEntry is one prefetched open start time.
type SlotCacheEntry struct {
	CalendarID      string    `db:"calendar_id" json:"calendar_id"`
	LocationID      string    `db:"location_id" json:"location_id"`
	SlotDatetimeUTC time.Time `db:"slot_datetime_utc" json:"slot_datetime_utc"`
	Timezone        string    `db:"timezone" json:"timezone"`
	Date            time.Time `db:"date" json:"date"`
	SchedulingURL   *string   `db:"scheduling_url" json:"scheduling_url,omitempty"`
}

// CalendarSnapshot is a normalized provider calendar ready to be saved.
type CalendarSnapshot struct {
	Calendar    Calendar
	OpenHours   []OpenHour
	TeamMembers []TeamMember
}

// Candidate is an active calendar with its mirrored booking count.
type Candidate struct {
	Calendar
	BookedSlots int64 `db:"booked_slots" json:"booked_slots"`
}
