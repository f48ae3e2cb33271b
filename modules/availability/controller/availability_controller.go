package controller

import (
	"fmt"
	"net/http"
	"time"

	"slotshare/core/constants"
	"slotshare/core/controller"
	"slotshare/core/errors"
	"slotshare/core/middleware"
	"slotshare/modules/availability/dto"
	"slotshare/modules/availability/mapper"
	"slotshare/modules/availability/service"

	"github.com/labstack/echo/v4"
)

// AvailabilityController serves the signed-in user's workspace
type AvailabilityController struct {
	controller.BaseController
	AvailabilityService service.AvailabilityServiceInterface
}

func NewAvailabilityController(svc service.AvailabilityServiceInterface) *AvailabilityController {
	return &AvailabilityController{
		BaseController:      controller.NewBaseController(),
		AvailabilityService: svc,
	}
}

func (c *AvailabilityController) owner(ctx echo.Context) (service.Owner, bool) {
	claims, ok := middleware.GetTokenClaims(ctx)
	if !ok {
		return service.Owner{}, false
	}
	return service.Owner{
		UserID: claims.UserID,
		Email:  claims.Email,
		Zone:   ctx.Request().Header.Get(constants.HeaderClientTimezone),
	}, true
}

func (c *AvailabilityController) workspace(ctx echo.Context, view service.View, message string) error {
	return c.SuccessResponse(ctx, mapper.ToWorkspaceResponse(view), message)
}

// GetWorkspace handles GET /workspace
// @Summary Current workspace
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.WorkspaceResponse
// @Router /private/workspace [get]
func (c *AvailabilityController) GetWorkspace(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	return c.workspace(ctx, c.AvailabilityService.Snapshot(ctx.Request().Context(), owner), "Success")
}

// Refresh handles POST /workspace/refresh
// @Summary Re-read busy time for the visible week
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.WorkspaceResponse
// @Failure 401 {object} controller.ErrorResponse
// @Failure 502 {object} controller.ErrorResponse
// @Router /private/workspace/refresh [post]
func (c *AvailabilityController) Refresh(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	view, appErr := c.AvailabilityService.Refresh(ctx.Request().Context(), owner)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.workspace(ctx, view, "Success")
}

// Navigate handles PUT /workspace/week
// @Summary Move the visible week
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.NavigateRequest true "Target date or week step"
// @Success 200 {object} dto.WorkspaceResponse
// @Router /private/workspace/week [put]
func (c *AvailabilityController) Navigate(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.NavigateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	reqCtx := ctx.Request().Context()
	var (
		view   service.View
		appErr *errors.AppError
	)
	if req.Date != "" {
		loc, err := service.LoadZone(c.AvailabilityService.Snapshot(reqCtx, owner).DisplayZone)
		if err != nil {
			loc = time.UTC
		}
		date, err := mapper.ParseDate(req.Date, loc)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "date must be YYYY-MM-DD or RFC3339")
		}
		view, appErr = c.AvailabilityService.NavigateTo(reqCtx, owner, date)
	} else {
		view, appErr = c.AvailabilityService.StepWeek(reqCtx, owner, req.Step)
	}
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.workspace(ctx, view, "Success")
}

// SetPeople handles PUT /workspace/people
// @Summary Replace the people whose busy time is shown
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.PeopleRequest true "Emails"
// @Success 200 {object} dto.WorkspaceResponse
// @Router /private/workspace/people [put]
func (c *AvailabilityController) SetPeople(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.PeopleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	view, appErr := c.AvailabilityService.SetPeople(ctx.Request().Context(), owner, req.Emails)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.workspace(ctx, view, "Success")
}

// SetIncludeSelf handles PUT /workspace/include-self
// @Summary Show or hide the signed-in user's own busy time
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.IncludeSelfRequest true "Flag"
// @Success 200 {object} dto.WorkspaceResponse
// @Router /private/workspace/include-self [put]
func (c *AvailabilityController) SetIncludeSelf(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.IncludeSelfRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	view, appErr := c.AvailabilityService.SetIncludeSelf(ctx.Request().Context(), owner, req.IncludeSelf)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.workspace(ctx, view, "Success")
}

// SetShareTimezone handles PUT /workspace/share-timezone
// @Summary Set the zone the availability text is written in
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TimezoneRequest true "IANA zone"
// @Success 200 {object} dto.WorkspaceResponse
// @Router /private/workspace/share-timezone [put]
func (c *AvailabilityController) SetShareTimezone(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.TimezoneRequest
	if err := ctx.Bind(&req); err != nil || req.Timezone == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "timezone is required")
	}

	view, appErr := c.AvailabilityService.SetShareTimezone(ctx.Request().Context(), owner, req.Timezone)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.workspace(ctx, view, "Success")
}

// SetCalendarTimezone handles PUT /workspace/calendar-timezone
// @Summary Set the fallback zone of the calendar view
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TimezoneRequest true "IANA zone"
// @Success 200 {object} dto.WorkspaceResponse
// @Router /private/workspace/calendar-timezone [put]
func (c *AvailabilityController) SetCalendarTimezone(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.TimezoneRequest
	if err := ctx.Bind(&req); err != nil || req.Timezone == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "timezone is required")
	}

	view, appErr := c.AvailabilityService.SetCalendarTimezone(ctx.Request().Context(), owner, req.Timezone)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.workspace(ctx, view, "Success")
}

// CreateSlot handles POST /workspace/slots
// @Summary Add an availability slot
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SlotRequest true "Slot span"
// @Success 200 {object} dto.SlotMutationResponse
// @Router /private/workspace/slots [post]
func (c *AvailabilityController) CreateSlot(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.SlotRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	interval, err := mapper.ToSlotInterval(&req)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, err.Error())
	}

	slot, view := c.AvailabilityService.CreateSlot(ctx.Request().Context(), owner, interval)
	resp := mapper.ToSlotResponse(slot)
	return c.SuccessResponse(ctx, &dto.SlotMutationResponse{
		Slot:      &resp,
		Changed:   true,
		Workspace: mapper.ToWorkspaceResponse(view),
	}, "Slot created")
}

// UpdateSlot handles PUT /workspace/slots/:id
// @Summary Move or resize a slot
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param request body dto.SlotRequest true "New span"
// @Success 200 {object} dto.SlotMutationResponse
// @Router /private/workspace/slots/{id} [put]
func (c *AvailabilityController) UpdateSlot(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.SlotRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	interval, err := mapper.ToSlotInterval(&req)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, err.Error())
	}

	view, changed := c.AvailabilityService.UpdateSlot(ctx.Request().Context(), owner, ctx.Param("id"), interval)
	return c.SuccessResponse(ctx, &dto.SlotMutationResponse{
		Changed:   changed,
		Workspace: mapper.ToWorkspaceResponse(view),
	}, "Success")
}

// DeleteSlot handles DELETE /workspace/slots/:id
// @Summary Remove a slot
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} dto.SlotMutationResponse
// @Router /private/workspace/slots/{id} [delete]
func (c *AvailabilityController) DeleteSlot(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	view, changed := c.AvailabilityService.DeleteSlot(ctx.Request().Context(), owner, ctx.Param("id"))
	return c.SuccessResponse(ctx, &dto.SlotMutationResponse{
		Changed:   changed,
		Workspace: mapper.ToWorkspaceResponse(view),
	}, "Success")
}

// DeleteAllSlots handles DELETE /workspace/slots
// @Summary Remove every slot
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.WorkspaceResponse
// @Router /private/workspace/slots [delete]
func (c *AvailabilityController) DeleteAllSlots(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	return c.workspace(ctx, c.AvailabilityService.DeleteAllSlots(ctx.Request().Context(), owner), "All slots removed")
}

// AutoPopulate handles POST /workspace/auto-populate
// @Summary Replace all slots with the free time of the visible week
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.AutoPopulateRequest true "Confirmation and working-hours overrides"
// @Success 200 {object} dto.AutoPopulateResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /private/workspace/auto-populate [post]
func (c *AvailabilityController) AutoPopulate(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.AutoPopulateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	reqCtx := ctx.Request().Context()
	policy, err := mapper.ToPolicy(&req, c.AvailabilityService.Snapshot(reqCtx, owner).Policy)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, err.Error())
	}

	slots, view, appErr := c.AvailabilityService.AutoPopulate(reqCtx, owner, policy, req.Confirm)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, &dto.AutoPopulateResponse{
		Created:   len(slots),
		Workspace: mapper.ToWorkspaceResponse(view),
	}, fmt.Sprintf("Created %d slots", len(slots)))
}

// AvailabilityText handles GET /workspace/availability.txt
// @Summary The shareable availability text
// @Tags Availability
// @Security BearerAuth
// @Produce plain
// @Router /private/workspace/availability.txt [get]
func (c *AvailabilityController) AvailabilityText(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	view := c.AvailabilityService.Snapshot(ctx.Request().Context(), owner)
	return ctx.String(http.StatusOK, view.AvailabilityText)
}

// AvailabilityICS handles GET /workspace/availability.ics
// @Summary The availability slots as an iCalendar file
// @Tags Availability
// @Security BearerAuth
// @Produce text/calendar
// @Router /private/workspace/availability.ics [get]
func (c *AvailabilityController) AvailabilityICS(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	reqCtx := ctx.Request().Context()
	data, appErr := c.AvailabilityService.ExportICS(reqCtx, owner)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	week := c.AvailabilityService.Snapshot(reqCtx, owner).Week.Start
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="availability-%s.ics"`, week.Format(time.DateOnly)))
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// Share handles POST /workspace/share
// @Summary Publish the availability and return time-limited links
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ShareResponse
// @Failure 501 {object} controller.ErrorResponse
// @Router /private/workspace/share [post]
func (c *AvailabilityController) Share(ctx echo.Context) error {
	owner, ok := c.owner(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	link, appErr := c.AvailabilityService.Share(ctx.Request().Context(), owner)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, mapper.ToShareResponse(link), "Availability published")
}

// Timezones handles GET /public/timezones
// @Summary Zones offered for the availability text
// @Tags Availability
// @Produce json
// @Success 200 {array} dto.TimezoneResponse
// @Router /public/timezones [get]
func (c *AvailabilityController) Timezones(ctx echo.Context) error {
	return c.SuccessResponse(ctx, mapper.ToTimezoneResponses(time.Now()), "Success")
}
