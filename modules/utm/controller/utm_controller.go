package controller

import (
	"booking-router/core/controller"
	"booking-router/modules/utm/dto"
	"booking-router/modules/utm/service"

	"github.com/labstack/echo/v4"
)

type UTMController struct {
	controller.BaseController
	UTMService service.UTMService
}

func NewUTMController(svc service.UTMService) *UTMController {
	return &UTMController{
		BaseController: controller.NewBaseController(),
		UTMService:     svc,
	}
}

func (ctl *UTMController) Create(c echo.Context) error {
	requestData := new(dto.UTMRequest)
	if err := ctl.BindAndValidate(c, requestData); err != nil {
		return err
	}
	utm, appErr := ctl.UTMService.Create(c.Request().Context(), requestData)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.CreatedResponse(c, utm, "UTM parameter created successfully")
}

func (ctl *UTMController) List(c echo.Context) error {
	items, appErr := ctl.UTMService.List(c.Request().Context())
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, items, "UTM parameters fetched successfully")
}

func (ctl *UTMController) Get(c echo.Context) error {
	utm, appErr := ctl.UTMService.Get(c.Request().Context(), c.Param("id"))
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, utm, "UTM parameter fetched successfully")
}

func (ctl *UTMController) Update(c echo.Context) error {
	requestData := new(dto.UTMRequest)
	if err := ctl.BindAndValidate(c, requestData); err != nil {
		return err
	}
	utm, appErr := ctl.UTMService.Update(c.Request().Context(), c.Param("id"), requestData)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, utm, "UTM parameter updated successfully")
}

func (ctl *UTMController) Delete(c echo.Context) error {
	if appErr := ctl.UTMService.Delete(c.Request().Context(), c.Param("id")); appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, nil, "UTM parameter deleted successfully")
}
