package service

import (
	"context"
	"sync"
	"time"

	"booking-router/core/logger"
)

// ConfirmAll asks each candidate's provider, concurrently, whether the exact
// start is still offered. A failed call counts as not available. Confirmed
// candidates come back in ranked order with MatchedSlot set.
func ConfirmAll(ctx context.Context, adapters AdapterResolver, ranked []Candidate, start, end time.Time) []Candidate {
	results := make([]*Candidate, len(ranked))

	var wg sync.WaitGroup
	for i := range ranked {
		c := ranked[i]
		if c.Account == nil || c.Account.Auth == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			adapter, err := adapters.Get(c.Source())
			if err != nil {
				return
			}
			slots, err := adapter.FetchAvailability(ctx, c.Account.Auth, c.CalendarID, start, end)
			if err != nil {
				logger.Warn("BookingService:ConfirmAll:FetchAvailability:Error", "error", err, "calendar_id", c.CalendarID, "source", c.Source())
				return
			}
			slot, ok := adapter.MatchSlot(slots, start)
			if !ok {
				return
			}
			c.MatchedSlot = slot
			results[i] = &c
		}()
	}
	wg.Wait()

	confirmed := make([]Candidate, 0, len(ranked))
	for _, c := range results {
		if c != nil {
			confirmed = append(confirmed, *c)
		}
	}
	return confirmed
}
