package controller

import (
	"slotshare/core/controller"
	"slotshare/core/errors"
	"slotshare/core/middleware"
	"slotshare/modules/availability/entity"
	"slotshare/modules/calendar/dto"
	"slotshare/modules/calendar/mapper"
	"slotshare/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	controller.BaseController
	CalendarService service.CalendarServiceInterface
}

func NewCalendarController(svc service.CalendarServiceInterface) *CalendarController {
	return &CalendarController{
		BaseController:  controller.NewBaseController(),
		CalendarService: svc,
	}
}

// ListEvents handles GET /calendar/events
// @Summary Raw events for the signed-in user or a list of calendars
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param start query string true "RFC3339 instant or YYYY-MM-DD"
// @Param end query string true "RFC3339 instant or YYYY-MM-DD"
// @Param emails query string false "Comma separated calendar emails"
// @Success 200 {object} dto.EventListResponse
// @Failure 401 {object} controller.ErrorResponse
// @Failure 502 {object} controller.ErrorResponse
// @Router /private/calendar/events [get]
func (c *CalendarController) ListEvents(ctx echo.Context) error {
	claims, ok := middleware.GetTokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var query dto.EventsQuery
	if err := ctx.Bind(&query); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid query", err.Error())
	}
	if query.Start == "" || query.End == "" {
		return c.BadRequest(errors.ErrInvalidInput, "start and end are required")
	}

	start, err := mapper.ParseBound(query.Start)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid start", err.Error())
	}
	end, err := mapper.ParseBound(query.End)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid end", err.Error())
	}
	window, err := entity.NewInterval(start, end)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "start must be before end")
	}

	emails := mapper.ParseEmails(query.Emails)
	if len(emails) == 0 {
		emails = []string{claims.Email}
	}

	result, appErr := c.CalendarService.ListEvents(ctx.Request().Context(), claims.UserID, emails, window)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, mapper.ToEventListResponse(result), "Success")
}
