package jobs

import (
	"time"

	"booking-router/core/config"
	"booking-router/core/queue"
	"booking-router/modules/jobs/handler"
)

const jobTimeout = 30 * time.Minute

// Init wires the mirror maintenance tasks onto the queue and their cron entries.
func Init(q *queue.Queue, calendars handler.MirrorMaintainer, cfg config.JobsConfig) error {
	h := handler.NewJobsHandler(calendars)
	q.Handle(handler.TypeCalendarRefresh, h.RefreshCalendars)
	q.Handle(handler.TypeSlotsPrefetch, h.PrefetchSlots)
	q.Handle(handler.TypeSlotsCleanup, h.CleanupSlots)

	schedule := []struct {
		cron     string
		taskType string
	}{
		{cfg.RefreshCron, handler.TypeCalendarRefresh},
		{cfg.PrefetchCron, handler.TypeSlotsPrefetch},
		{cfg.CleanupCron, handler.TypeSlotsCleanup},
	}
	for _, s := range schedule {
		if s.cron == "" {
			continue
		}
		if err := q.Schedule(s.cron, s.taskType, jobTimeout); err != nil {
			return err
		}
	}
	return nil
}
