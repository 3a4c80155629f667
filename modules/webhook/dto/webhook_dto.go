package dto

import providerService "booking-router/modules/provider/service"

// WebhookPayload is the union of the GHL, Calendly and OnceHub deliveries.
// GHL and OnceHub name the event in "type", Calendly in "event".
type WebhookPayload struct {
	Type        string `json:"type"`
	Event       string `json:"event"`
	InstallType string `json:"installType"`
	LocationID  string `json:"locationId"`
	CompanyID   string `json:"companyId"`

	Appointment *GhlAppointment     `json:"appointment"`
	Payload     *CalendlyInvitee    `json:"payload"`
	Data        *OnceHubBookingData `json:"data"`
}

func (p *WebhookPayload) Kind() string {
	if p.Type != "" {
		return p.Type
	}
	return p.Event
}

type GhlAppointment struct {
	ID                string `json:"id"`
	CalendarID        string `json:"calendarId"`
	ContactID         string `json:"contactId"`
	AssignedUserID    string `json:"assignedUserId"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	AppointmentStatus string `json:"appointmentStatus"`
}

type CalendlyInvitee struct {
	Event          string                  `json:"event"`
	ScheduledEvent *CalendlyScheduledEvent `json:"scheduled_event"`
}

type CalendlyScheduledEvent struct {
	URI              string `json:"uri"`
	EventType        string `json:"event_type"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Status           string `json:"status"`
	EventMemberships []struct {
		User string `json:"user"`
	} `json:"event_memberships"`
}

type OnceHubBookingData struct {
	providerService.OnceHubBooking
	Owner string `json:"owner"`
}

type WebhookResponse struct {
	Message string `json:"message"`
}
