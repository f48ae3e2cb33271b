package router

import (
	"slotshare/core/middleware"
	"slotshare/modules/directory/controller"

	"github.com/labstack/echo/v4"
)

type DirectoryRouter struct {
	DirectoryController *controller.DirectoryController
}

func NewDirectoryRouter(directoryController *controller.DirectoryController) *DirectoryRouter {
	return &DirectoryRouter{
		DirectoryController: directoryController,
	}
}

func (r *DirectoryRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	directory := v1.Group("/private/directory", mw.AuthMiddleware())
	directory.GET("/search", r.DirectoryController.Search)
}
