package controller

import (
	"net/http"

	"booking-router/core/controller"
	"booking-router/modules/booking/dto"
	"booking-router/modules/booking/service"

	"github.com/labstack/echo/v4"
)

type BookingController struct {
	controller.BaseController
	BookingService service.BookingService
}

func NewBookingController(bookingSvc service.BookingService) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		BookingService: bookingSvc,
	}
}

// FetchSlots answers with the calendar to book for the requested window.
func (b *BookingController) FetchSlots(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.FetchSlotsRequest)
	if err := b.BindAndValidate(c, requestData); err != nil {
		return err
	}

	result, appErr := b.BookingService.FetchSlots(ctx, requestData)
	if appErr != nil {
		return b.ErrorResponse(c, appErr)
	}
	return c.JSON(http.StatusOK, result)
}

func (b *BookingController) Book(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.BookingRequest)
	if err := b.BindAndValidate(c, requestData); err != nil {
		return err
	}

	result, appErr := b.BookingService.Book(ctx, requestData)
	if appErr != nil {
		return b.ErrorResponse(c, appErr)
	}
	return c.JSON(http.StatusOK, result)
}
