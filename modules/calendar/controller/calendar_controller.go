package controller

import (
	"time"

	"booking-router/core/controller"
	"booking-router/modules/calendar/dto"
	"booking-router/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// CalendarController exposes the scheduled mirror jobs for manual runs.
type CalendarController struct {
	controller.BaseController
	service service.CalendarService
	now     func() time.Time
}

func NewCalendarController(service service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		service:        service,
		now:            time.Now,
	}
}

// Refresh re-syncs every configured calendar.
// POST /calendars/refresh
func (c *CalendarController) Refresh(ctx echo.Context) error {
	synced, appErr := c.service.RefreshAll(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.MaintenanceResponse{Job: "refresh", Count: int64(synced)}, "Calendars refreshed")
}

// POST /calendars/prefetch
func (c *CalendarController) Prefetch(ctx echo.Context) error {
	inserted, appErr := c.service.PrefetchSlots(ctx.Request().Context(), c.now())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.MaintenanceResponse{Job: "prefetch", Count: inserted}, "Slots prefetched")
}

// POST /calendars/cleanup
func (c *CalendarController) Cleanup(ctx echo.Context) error {
	deleted, appErr := c.service.PurgeSlots(ctx.Request().Context(), c.now())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.MaintenanceResponse{Job: "cleanup", Count: deleted}, "Cached slots purged")
}
