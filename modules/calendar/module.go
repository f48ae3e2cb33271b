package calendar

import (
	"slotshare/core/middleware"
	"slotshare/modules/calendar/controller"
	"slotshare/modules/calendar/router"
	"slotshare/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init wires the Google Calendar reader. The returned service is also the
// availability workspace's event fetcher.
func Init(e *echo.Echo, tokens service.TokenProvider, mw *middleware.Middleware) *service.CalendarService {
	calendarService := service.NewCalendarService(tokens)
	calendarController := controller.NewCalendarController(calendarService)

	router.NewCalendarRouter(calendarController).Setup(e, mw)
	return calendarService
}
