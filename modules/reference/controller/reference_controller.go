package controller

import (
	"booking-router/core/controller"
	"booking-router/modules/reference/service"

	"github.com/labstack/echo/v4"
)

type ReferenceController struct {
	controller.BaseController
	ReferenceService service.ReferenceService
}

func NewReferenceController(svc service.ReferenceService) *ReferenceController {
	return &ReferenceController{
		BaseController:   controller.NewBaseController(),
		ReferenceService: svc,
	}
}

func (ctl *ReferenceController) ListStates(c echo.Context) error {
	states, appErr := ctl.ReferenceService.ListStates(c.Request().Context())
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, states, "States fetched successfully")
}

func (ctl *ReferenceController) ListTimezones(c echo.Context) error {
	zones, appErr := ctl.ReferenceService.ListTimezones(c.Request().Context())
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, zones, "Timezones fetched successfully")
}
