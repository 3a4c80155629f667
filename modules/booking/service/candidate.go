package service

import (
	accountEntity "booking-router/modules/account/entity"
	calendarEntity "booking-router/modules/calendar/entity"
	providerService "booking-router/modules/provider/service"
)

// Candidate is a mirrored calendar moving through the selection pipeline,
// joined with the account that owns it.
type Candidate struct {
	calendarEntity.Candidate
	Account     *accountEntity.AccountWithAuth
	OpenHours   []calendarEntity.OpenHour
	TeamMembers []calendarEntity.TeamMember
	MatchedSlot *providerService.Slot
}

func (c *Candidate) Source() string {
	if c.Account == nil {
		return ""
	}
	return c.Account.Source()
}

func (c *Candidate) Spend() float64 {
	if c.Account == nil {
		return 0
	}
	return c.Account.Spend()
}

func (c *Candidate) Priority() int {
	if c.Account == nil {
		return 0
	}
	return c.Account.Priority()
}

// calendarIDs lists provider calendar ids in candidate order.
func calendarIDs(candidates []Candidate) []string {
	ids := make([]string, 0, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].CalendarID)
	}
	return ids
}

// linkAccounts attaches each candidate's account. An account owns a calendar
// when it points at the provider id or at the mirrored row. Candidates with no
// owning account are dropped.
func linkAccounts(candidates []calendarEntity.Candidate, accounts []accountEntity.AccountWithAuth) []Candidate {
	byLocation := map[string][]*accountEntity.AccountWithAuth{}
	for i := range accounts {
		a := &accounts[i]
		byLocation[a.NativeID] = append(byLocation[a.NativeID], a)
	}

	linked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		var owner *accountEntity.AccountWithAuth
		for _, a := range byLocation[c.LocationID] {
			if a.CalendarID == c.CalendarID || (a.MirrorCalendarID != nil && *a.MirrorCalendarID == c.ID) {
				owner = a
				break
			}
		}
		if owner == nil {
			continue
		}
		linked = append(linked, Candidate{Candidate: c, Account: owner})
	}
	return linked
}

func locationIDs(candidates []calendarEntity.Candidate) []string {
	seen := map[string]bool{}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c.LocationID] {
			seen[c.LocationID] = true
			ids = append(ids, c.LocationID)
		}
	}
	return ids
}
