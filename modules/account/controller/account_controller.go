package controller

import (
	"booking-router/core/constants"
	"booking-router/core/controller"
	"booking-router/modules/account/dto"
	"booking-router/modules/account/service"

	"github.com/labstack/echo/v4"
)

type AccountController struct {
	controller.BaseController
	AccountService service.AccountService
}

func NewAccountController(svc service.AccountService) *AccountController {
	return &AccountController{
		BaseController: controller.NewBaseController(),
		AccountService: svc,
	}
}

func (ctl *AccountController) GetLocation(c echo.Context) error {
	account, appErr := ctl.AccountService.GetLocation(c.Request().Context(), c.QueryParam("id"))
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, account, "Subaccount fetched successfully")
}

func (ctl *AccountController) ListAccounts(c echo.Context) error {
	accounts, appErr := ctl.AccountService.ListAccounts(c.Request().Context())
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, accounts, "Accounts fetched successfully")
}

func (ctl *AccountController) ConfigureAccount(c echo.Context) error {
	requestData := new(dto.ConfigureAccountRequest)
	if err := ctl.BindAndValidate(c, requestData); err != nil {
		return err
	}

	result, appErr := ctl.AccountService.ConfigureAccount(c.Request().Context(), requestData)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, result, "Data updated successfully")
}

func (ctl *AccountController) DeleteAccount(c echo.Context) error {
	if appErr := ctl.AccountService.DeleteAccount(c.Request().Context(), c.Param("id")); appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, nil, "Subaccount deleted successfully")
}

func (ctl *AccountController) ListCalendlyEventTypes(c echo.Context) error {
	return ctl.listCalendars(c, constants.SourceCalendly)
}

func (ctl *AccountController) ListOnceHubCalendars(c echo.Context) error {
	return ctl.listCalendars(c, constants.SourceOnceHub)
}

func (ctl *AccountController) listCalendars(c echo.Context, source string) error {
	calendars, appErr := ctl.AccountService.ListProviderCalendars(c.Request().Context(), c.QueryParam("id"), source)
	if appErr != nil {
		return ctl.ErrorResponse(c, appErr)
	}
	return ctl.SuccessResponse(c, calendars, "Calendars fetched successfully")
}
