package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"slotshare/core/cache"
	"slotshare/core/config"
	"slotshare/core/constants"
	"slotshare/core/database"
	"slotshare/core/logger"
	"slotshare/core/middleware"
	"slotshare/core/storage"
	"slotshare/core/utils"
	"slotshare/modules/auth"
	"slotshare/modules/availability"
	"slotshare/modules/calendar"
	"slotshare/modules/directory"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run loads configuration, wires every module and serves until SIGINT or
// SIGTERM.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var appCache cache.Cache
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		logger.Warn("Server:Run:RedisUnavailable", "error", err, "fallback", "memory")
		appCache = cache.NewMemoryCache()
	} else {
		appCache = redisCache
	}
	defer appCache.Close()

	sealer, err := utils.NewSealer(cfg.Security.TokenEncryptionKey)
	if err != nil {
		return fmt.Errorf("security.token_encryption_key: %w", err)
	}

	var store storage.ObjectStore
	if cfg.Share.Enabled() {
		store = storage.NewS3Store(cfg.Share)
	}

	e := newEcho(cfg, db)
	mw := middleware.NewMiddleware(appCache)
	mux := asynq.NewServeMux()

	authService := auth.Init(e, db, appCache, sealer, cfg.GoogleAPI, mw, mux)
	calendarService := calendar.Init(e, authService, mw)
	directoryService := directory.Init(e, authService, appCache, cfg.Directory, mw)
	availabilityService, err := availability.Init(e, cfg, calendarService, authService, store, mw, mux)
	if err != nil {
		return fmt.Errorf("init availability: %w", err)
	}

	authService.OnLogout(availabilityService.EndSession)
	authService.OnLogout(directoryService.Forget)

	stopJobs, err := startJobs(cfg, redisCache != nil, mux)
	if err != nil {
		return err
	}
	defer stopJobs()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-quit:
		logger.Info("Server:Run:Shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server:Run:Stopped")
	return nil
}

func newEcho(cfg *config.Config, db database.IDatabase) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, constants.HeaderClientTimezone},
		AllowCredentials: true,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Warn("HTTP:Request:Error", append(args, "error", v.Error)...)
				return nil
			}
			logger.Info("HTTP:Request", args...)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultTimeout)
		defer cancel()
		if err := db.SQLx().PingContext(ctx); err != nil {
			logger.Error("Server:Health:Database:Error", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}
