package availability

import (
	"context"

	"slotshare/core/config"
	"slotshare/core/constants"
	"slotshare/core/logger"
	"slotshare/core/middleware"
	"slotshare/core/storage"
	"slotshare/modules/availability/controller"
	"slotshare/modules/availability/router"
	"slotshare/modules/availability/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

// Init wires the availability workspace. store may be nil, in which case
// share links are disabled.
func Init(e *echo.Echo, cfg *config.Config, fetcher service.EventFetcher, sessions service.SessionProvider, store storage.ObjectStore, mw *middleware.Middleware, mux *asynq.ServeMux) (*service.AvailabilityService, error) {
	settings, err := service.SettingsFromConfig(cfg.Availability)
	if err != nil {
		return nil, err
	}

	var publisher *service.SharePublisher
	if store != nil {
		publisher = service.NewSharePublisher(store, cfg.Share.PresignTTL)
	}

	svc := service.NewAvailabilityService(fetcher, sessions, publisher, settings, cfg.Availability.WorkspaceIdleTTL)
	ctrl := controller.NewAvailabilityController(svc)
	router.NewAvailabilityRouter(ctrl).Setup(e, mw)

	if mux != nil {
		mux.HandleFunc(constants.TaskEvictIdleWorkspaces, func(ctx context.Context, _ *asynq.Task) error {
			svc.EvictIdle(ctx)
			return nil
		})
	}

	logger.Info("Availability:Init",
		"week_start", settings.WeekStart,
		"default_zone", settings.DefaultZone.String(),
		"share_enabled", publisher != nil)
	return svc, nil
}
