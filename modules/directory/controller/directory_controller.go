package controller

import (
	"slotshare/core/controller"
	"slotshare/core/errors"
	"slotshare/core/middleware"
	"slotshare/modules/directory/dto"
	"slotshare/modules/directory/mapper"
	"slotshare/modules/directory/service"

	"github.com/labstack/echo/v4"
)

type DirectoryController struct {
	controller.BaseController
	DirectoryService service.DirectoryServiceInterface
}

func NewDirectoryController(svc service.DirectoryServiceInterface) *DirectoryController {
	return &DirectoryController{
		BaseController:   controller.NewBaseController(),
		DirectoryService: svc,
	}
}

// Search handles GET /directory/search
// @Summary Search people in the user's domain directory
// @Description Requests are debounced per user. A request overtaken by a newer one returns superseded=true.
// @Tags Directory
// @Security BearerAuth
// @Produce json
// @Param q query string true "Search text, at least 3 characters"
// @Success 200 {object} dto.SearchResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /private/directory/search [get]
func (c *DirectoryController) Search(ctx echo.Context) error {
	claims, ok := middleware.GetTokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var query dto.SearchQuery
	if err := ctx.Bind(&query); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid query", err.Error())
	}

	result, appErr := c.DirectoryService.Search(ctx.Request().Context(), claims.UserID, query.Query)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, mapper.ToSearchResponse(result), "Success")
}
