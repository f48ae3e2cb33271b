package router

import (
	"slotshare/core/middleware"
	"slotshare/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	AuthController *controller.AuthController
}

func NewAuthRouter(authController *controller.AuthController) *AuthRouter {
	return &AuthRouter{
		AuthController: authController,
	}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	publicRoutes := v1.Group("/public/auth")
	publicRoutes.GET("/google", r.AuthController.GoogleAuth)
	publicRoutes.GET("/google/url", r.AuthController.GoogleAuthURL)
	publicRoutes.GET("/google/callback", r.AuthController.GoogleCallback)
	publicRoutes.POST("/refresh", r.AuthController.RefreshToken)

	privateRoutes := v1.Group("/private/auth", mw.AuthMiddleware())
	privateRoutes.POST("/logout", r.AuthController.Logout)
	privateRoutes.GET("/session", r.AuthController.Session)
}
