package controller

import (
	"net/http"

	"booking-router/core/controller"
	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/utils"
	"booking-router/modules/auth/dto"
	"booking-router/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	controller.BaseController
	AuthService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		AuthService:    authService,
	}
}

func (a *AuthController) InitiateGHL(c echo.Context) error {
	authURL, appErr := a.AuthService.InitiateGHL(c.Request().Context())
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}
	return c.Redirect(http.StatusFound, authURL)
}

// GHLCallback always lands the browser back on the dashboard, with the
// outcome in the query string.
func (a *AuthController) GHLCallback(c echo.Context) error {
	target, appErr := a.AuthService.GHLCallback(c.Request().Context(), c.QueryParam("code"), c.QueryParam("state"))
	if appErr != nil {
		logger.Warn("AuthController:GHLCallback:Failed", "code", appErr.Code, "error", appErr.Message)
	}
	return c.Redirect(http.StatusFound, target)
}

func (a *AuthController) InitiateCalendly(c echo.Context) error {
	authURL, appErr := a.AuthService.InitiateCalendly(c.Request().Context())
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}
	return c.Redirect(http.StatusFound, authURL)
}

func (a *AuthController) CalendlyCallback(c echo.Context) error {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		description := c.QueryParam("error_description")
		logger.Warn("AuthController:CalendlyCallback:Denied", "error", providerErr, "description", description)
		return c.Redirect(http.StatusFound, a.AuthService.FailureRedirect(description))
	}

	target, appErr := a.AuthService.CalendlyCallback(c.Request().Context(), c.QueryParam("code"), c.QueryParam("state"))
	if appErr != nil {
		logger.Warn("AuthController:CalendlyCallback:Failed", "code", appErr.Code, "error", appErr.Message)
	}
	return c.Redirect(http.StatusFound, target)
}

func (a *AuthController) ConnectOnceHub(c echo.Context) error {
	requestData := new(dto.OnceHubConnectRequest)
	if err := a.BindAndValidate(c, requestData); err != nil {
		return err
	}

	result, appErr := a.AuthService.ConnectOnceHub(c.Request().Context(), requestData)
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}
	return c.JSON(http.StatusOK, result)
}

func (a *AuthController) Signin(c echo.Context) error {
	requestData := new(dto.SigninRequest)
	if err := a.BindAndValidate(c, requestData); err != nil {
		return err
	}

	result, appErr := a.AuthService.Signin(c.Request().Context(), requestData)
	if appErr != nil {
		return a.ErrorResponse(c, appErr)
	}
	return a.SuccessResponse(c, result, "Signin success")
}

func (a *AuthController) Signout(c echo.Context) error {
	token, err := utils.GetTokenFromHeader(c.Request().Header.Get("Authorization"))
	if err != nil {
		return a.Unauthorized(errors.ErrMissingAuthorizationHeader, err.Error())
	}
	if appErr := a.AuthService.Signout(c.Request().Context(), token); appErr != nil {
		return a.ErrorResponse(c, appErr)
	}
	return a.SuccessResponse(c, nil, "Signout success")
}
