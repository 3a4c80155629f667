package handler

import (
	"context"
	"time"

	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/metrics"

	"github.com/hibiken/asynq"
)

const (
	TypeCalendarRefresh = "calendar:refresh"
	TypeSlotsPrefetch   = "slots:prefetch"
	TypeSlotsCleanup    = "slots:cleanup"
)

// MirrorMaintainer is the calendar service surface the scheduled jobs drive.
type MirrorMaintainer interface {
	RefreshAll(ctx context.Context) (int, *errors.AppError)
	PrefetchSlots(ctx context.Context, now time.Time) (int64, *errors.AppError)
	PurgeSlots(ctx context.Context, now time.Time) (int64, *errors.AppError)
}

type JobsHandler struct {
	calendars MirrorMaintainer
	now       func() time.Time
}

func NewJobsHandler(calendars MirrorMaintainer) *JobsHandler {
	return &JobsHandler{calendars: calendars, now: time.Now}
}

func (h *JobsHandler) RefreshCalendars(ctx context.Context, _ *asynq.Task) error {
	synced, appErr := h.calendars.RefreshAll(ctx)
	return h.finish(TypeCalendarRefresh, synced, appErr)
}

func (h *JobsHandler) PrefetchSlots(ctx context.Context, _ *asynq.Task) error {
	inserted, appErr := h.calendars.PrefetchSlots(ctx, h.now())
	return h.finish(TypeSlotsPrefetch, inserted, appErr)
}

// CleanupSlots drops the previous UTC day's cached slots.
func (h *JobsHandler) CleanupSlots(ctx context.Context, _ *asynq.Task) error {
	deleted, appErr := h.calendars.PurgeSlots(ctx, h.now())
	return h.finish(TypeSlotsCleanup, deleted, appErr)
}

func (h *JobsHandler) finish(job string, n any, appErr *errors.AppError) error {
	if appErr != nil {
		metrics.RecordJobRun(job, appErr)
		logger.Error("JobsHandler:Run:Error", "job", job, "error", appErr)
		return appErr
	}
	metrics.RecordJobRun(job, nil)
	logger.Info("JobsHandler:Run:Done", "job", job, "count", n)
	return nil
}
