package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/services"
	"github.com/yigit/unitime/internal/middleware"
)

// RequestController handles the course request lifecycle endpoints
type RequestController struct {
	requestService *services.RequestService
}

// NewRequestController creates a new request controller
func NewRequestController(requestService *services.RequestService) *RequestController {
	return &RequestController{requestService: requestService}
}

// Accept godoc
// @Summary Accept a pending course request
// @Description Binds the calling instructor to the request; exactly one of two racing instructors wins
// @Tags course-requests
// @Accept json
// @Produce json
// @Param request body dto.AcceptRequest true "Request id"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /course-requests/accept [post]
func (c *RequestController) Accept(ctx *gin.Context) {
	var req dto.AcceptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.requestService.Accept(ctx.Request.Context(), middleware.CallerID(ctx), req.RequestID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Course request accepted"))
}

// UndoAccept godoc
// @Summary Revert an accepted course request to pending
// @Description Clears the instructor binding and releases every slot reservation of the request, atomically
// @Tags course-requests
// @Accept json
// @Produce json
// @Param request body dto.UndoAcceptRequest true "Request id"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /course-requests/undo-accept [post]
func (c *RequestController) UndoAccept(ctx *gin.Context) {
	var req dto.UndoAcceptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.requestService.UndoAccept(ctx.Request.Context(), middleware.CallerID(ctx), middleware.IsAdmin(ctx), req.RequestID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Course request reverted to pending"))
}

// Reassign godoc
// @Summary Reassign an accepted course request to another instructor
// @Description Moves the request and all its live reservations to the new instructor; slots and rooms stay untouched
// @Tags course-requests
// @Accept json
// @Produce json
// @Param request body dto.ReassignRequest true "Request id and new instructor id"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /course-requests/reassign [post]
func (c *RequestController) Reassign(ctx *gin.Context) {
	var req dto.ReassignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.requestService.Reassign(ctx.Request.Context(), req.RequestID, req.InstructorID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Course request reassigned"))
}
