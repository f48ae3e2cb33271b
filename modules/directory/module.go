package directory

import (
	"slotshare/core/cache"
	"slotshare/core/config"
	"slotshare/core/middleware"
	"slotshare/modules/directory/controller"
	"slotshare/modules/directory/router"
	"slotshare/modules/directory/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, tokens service.TokenProvider, cache cache.Cache, cfg config.DirectoryConfig, mw *middleware.Middleware) *service.DirectoryService {
	directoryService := service.NewDirectoryService(tokens, cache, cfg)
	directoryController := controller.NewDirectoryController(directoryService)
	router.NewDirectoryRouter(directoryController).Setup(e, mw)
	return directoryService
}
