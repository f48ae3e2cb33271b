package auth

import (
	"context"

	"slotshare/core/cache"
	"slotshare/core/config"
	"slotshare/core/constants"
	"slotshare/core/database"
	"slotshare/core/logger"
	"slotshare/core/middleware"
	"slotshare/core/utils"
	"slotshare/modules/auth/controller"
	"slotshare/modules/auth/repository"
	"slotshare/modules/auth/router"
	"slotshare/modules/auth/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

// Init wires the auth module and returns its service for modules that need
// Google credentials or session state.
func Init(e *echo.Echo, db database.IDatabase, cache cache.Cache, sealer *utils.Sealer, cfg config.GoogleAPIConfig, mw *middleware.Middleware, mux *asynq.ServeMux) *service.AuthService {
	repo := repository.NewAuthRepository(db)
	authService := service.NewAuthService(repo, cache, sealer, cfg)
	authController := controller.NewAuthController(authService, cfg.PostLoginRedirect)

	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURI == "" {
		logger.Warn("Auth:Init:GoogleNotConfigured", "reason", "Google OAuth credentials not configured in env")
	}

	router.NewAuthRouter(authController).Setup(e, mw)

	if mux != nil {
		mux.HandleFunc(constants.TaskCleanupOAuthStates, func(ctx context.Context, _ *asynq.Task) error {
			_, err := authService.CleanupExpiredOAuthStates(ctx)
			return err
		})
	}

	return authService
}
