package dto

import providerService "booking-router/modules/provider/service"

type FetchSlotsRequest struct {
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	UTMParams map[string]any `json:"utmParams"`
}

// CalendarMatch is the calendar chosen for a requested window.
type CalendarMatch struct {
	ID           string                `json:"id"`
	CalendarID   string                `json:"calendar_id"`
	LocationID   string                `json:"location_id"`
	Name         string                `json:"name"`
	Source       string                `json:"source"`
	SlotDuration int64                 `json:"slot_duration"`
	BookedSlots  int64                 `json:"booked_slots"`
	SpendAmount  string                `json:"spend_amount"`
	RedirectURL  string                `json:"redirect_url"`
	Slug         string                `json:"slug,omitempty"`
	MatchedSlot  *providerService.Slot `json:"matched_slot,omitempty"`
}

type FetchSlotsResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Calendar *CalendarMatch `json:"calendar"`
}

type BookingRequest struct {
	FirstName  string         `json:"firstName" validate:"required"`
	LastName   string         `json:"lastName"`
	Email      string         `json:"email" validate:"required,email"`
	Phone      string         `json:"phone"`
	StartTime  string         `json:"startTime" validate:"required"`
	EndTime    string         `json:"endTime" validate:"required"`
	LocationID string         `json:"locationId" validate:"required"`
	TimeZone   string         `json:"timeZone"`
	UTMParams  map[string]any `json:"utmParams"`
}

type BookingResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	RedirectURL   string `json:"redirectURL"`
	AppointmentID string `json:"appointmentId,omitempty"`
	ContactID     string `json:"contactId,omitempty"`
}
