package controller

import (
	"booking-router/core/controller"
	"booking-router/modules/style/dto"
	"booking-router/modules/style/service"

	"github.com/labstack/echo/v4"
)

type StyleController struct {
	controller.BaseController
	StyleService service.StyleService
}

func NewStyleController(svc service.StyleService) *StyleController {
	return &StyleController{
		BaseController: controller.NewBaseController(),
		StyleService:   svc,
	}
}

func (ctl *StyleController) Save(c echo.Context) error {
	requestData := new(dto.StyleRequest)
	if err := ctl.BindAndValidate(c, requestData); err != nil {
		return err
	}
	style, appErr := ctl.StyleService.Save(c.Request().Context(), requestData)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, style, "Style configuration saved successfully")
}

func (ctl *StyleController) List(c echo.Context) error {
	styles, appErr := ctl.StyleService.List(c.Request().Context())
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, styles, "Style configurations fetched successfully")
}
