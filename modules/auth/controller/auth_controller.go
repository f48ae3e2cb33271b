package controller

import (
	"net/http"
	"net/url"

	"slotshare/core/controller"
	"slotshare/core/errors"
	"slotshare/core/logger"
	"slotshare/core/middleware"
	"slotshare/modules/auth/dto"
	"slotshare/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	controller.BaseController
	AuthService service.AuthServiceInterface
	// when set, the OAuth callback redirects here with the tokens in the
	// URL fragment instead of answering with JSON
	postLoginRedirect string
}

func NewAuthController(authService service.AuthServiceInterface, postLoginRedirect string) *AuthController {
	return &AuthController{
		BaseController:    controller.NewBaseController(),
		AuthService:       authService,
		postLoginRedirect: postLoginRedirect,
	}
}

// GoogleAuth redirects user to Google OAuth login page
// @Summary Sign in with Google
// @Tags Auth
// @Success 302
// @Router /public/auth/google [get]
func (controller *AuthController) GoogleAuth(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := controller.AuthService.GetGoogleAuthURL(ctx)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return c.Redirect(http.StatusFound, resp.URL)
}

// GoogleAuthURL returns the consent URL for clients that open it themselves
// @Summary Google consent URL
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.GoogleAuthURLResponse
// @Router /public/auth/google/url [get]
func (controller *AuthController) GoogleAuthURL(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := controller.AuthService.GetGoogleAuthURL(ctx)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, resp, "Visit the url in your browser to sign in")
}

// GoogleCallback handles the OAuth callback from Google
// @Summary Google OAuth callback
// @Tags Auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State token"
// @Success 200 {object} dto.LoginResponse
// @Router /public/auth/google/callback [get]
func (controller *AuthController) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")

	// Check if Google returned an error
	if errorParam := c.QueryParam("error"); errorParam != "" {
		logger.Warn("AuthController:GoogleCallback:GoogleError", "error", errorParam, "description", c.QueryParam("error_description"))
		return controller.BadRequest(errors.ErrInvalidRequestData, "Google OAuth error: "+errorParam)
	}
	if code == "" {
		return controller.BadRequest(errors.ErrInvalidRequestData, "authorization code is required")
	}
	if state == "" {
		return controller.BadRequest(errors.ErrInvalidRequestData, "state parameter is required for security validation")
	}

	loginResponse, err := controller.AuthService.HandleGoogleCallback(ctx, code, state)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	if controller.postLoginRedirect != "" {
		fragment := url.Values{}
		fragment.Set("access_token", loginResponse.AccessToken)
		fragment.Set("refresh_token", loginResponse.RefreshToken)
		return c.Redirect(http.StatusFound, controller.postLoginRedirect+"#"+fragment.Encode())
	}

	return controller.SuccessResponse(c, loginResponse, "Google login success")
}

// RefreshToken issues a new token pair
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Router /public/auth/refresh [post]
func (controller *AuthController) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.RefreshTokenRequest)
	if err := c.Bind(requestData); err != nil || requestData.RefreshToken == "" {
		return controller.BadRequest(errors.ErrInvalidRequestData, "refresh_token is required")
	}

	resp, err := controller.AuthService.RefreshToken(ctx, requestData.RefreshToken)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, resp, "Refresh token success")
}

// Logout revokes the caller's access token and drops their workspace
// @Summary Sign out
// @Tags Auth
// @Security BearerAuth
// @Router /private/auth/logout [post]
func (controller *AuthController) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.GetTokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if err := controller.AuthService.Logout(ctx, claims, middleware.GetRawToken(c)); err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, nil, "Logout success")
}

// Session reports the caller's sign-in state
// @Summary Current session
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SessionInfo
// @Router /private/auth/session [get]
func (controller *AuthController) Session(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.GetTokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	session, err := controller.AuthService.Session(ctx, claims.UserID)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, session, "Success")
}
