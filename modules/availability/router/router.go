package router

import (
	"slotshare/core/middleware"
	"slotshare/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	AvailabilityController *controller.AvailabilityController
}

func NewAvailabilityRouter(availabilityController *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{
		AvailabilityController: availabilityController,
	}
}

func (r *AvailabilityRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	v1.GET("/public/timezones", r.AvailabilityController.Timezones)

	workspace := v1.Group("/private/workspace", mw.AuthMiddleware())
	workspace.GET("", r.AvailabilityController.GetWorkspace)
	workspace.POST("/refresh", r.AvailabilityController.Refresh)
	workspace.PUT("/week", r.AvailabilityController.Navigate)
	workspace.PUT("/people", r.AvailabilityController.SetPeople)
	workspace.PUT("/include-self", r.AvailabilityController.SetIncludeSelf)
	workspace.PUT("/share-timezone", r.AvailabilityController.SetShareTimezone)
	workspace.PUT("/calendar-timezone", r.AvailabilityController.SetCalendarTimezone)

	workspace.POST("/slots", r.AvailabilityController.CreateSlot)
	workspace.PUT("/slots/:id", r.AvailabilityController.UpdateSlot)
	workspace.DELETE("/slots/:id", r.AvailabilityController.DeleteSlot)
	workspace.DELETE("/slots", r.AvailabilityController.DeleteAllSlots)
	workspace.POST("/auto-populate", r.AvailabilityController.AutoPopulate)

	workspace.GET("/availability.txt", r.AvailabilityController.AvailabilityText)
	workspace.GET("/availability.ics", r.AvailabilityController.AvailabilityICS)
	workspace.POST("/share", r.AvailabilityController.Share)
}
