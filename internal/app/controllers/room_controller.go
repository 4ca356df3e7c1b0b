package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/services"
	"github.com/yigit/unitime/internal/middleware"
	"github.com/yigit/unitime/internal/pkg/apperrors"
)

// RoomController handles batch room resolution and manual assignment edits
type RoomController struct {
	roomService *services.RoomService
}

// NewRoomController creates a new room controller
func NewRoomController(roomService *services.RoomService) *RoomController {
	return &RoomController{roomService: roomService}
}

// List godoc
// @Summary List rooms
// @Description Returns the room inventory ordered by capacity
// @Tags rooms
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Security BearerAuth
// @Router /rooms [get]
func (c *RoomController) List(ctx *gin.Context) {
	rooms, err := c.roomService.ListRooms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(rooms, ""))
}

// AutoAssign godoc
// @Summary Assign rooms to all unassigned reservations
// @Description Gives every live reservation without a room the smallest free room of the required type that fits the section
// @Tags rooms
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AutoAssignResponse}
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /rooms/auto-assign [post]
func (c *RoomController) AutoAssign(ctx *gin.Context) {
	resp, err := c.roomService.AutoAssignRooms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, "Batch room assignment completed"))
}

// UpdateAssignment godoc
// @Summary Edit a room assignment
// @Description Moves the assignment to a different room and/or slot after re-validating capacity, type and non-overlap
// @Tags rooms
// @Accept json
// @Produce json
// @Param id path int true "Assignment id"
// @Param request body dto.UpdateAssignmentRequest true "New room and/or slot"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /rooms/assignments/{id} [put]
func (c *RoomController) UpdateAssignment(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("assignment id must be a positive integer"))
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.roomService.UpdateAssignment(ctx.Request.Context(), id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Room assignment updated"))
}

// DeleteAssignment godoc
// @Summary Delete a room assignment
// @Description Removes the assignment; referencing reservations survive without a room
// @Tags rooms
// @Produce json
// @Param id path int true "Assignment id"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /rooms/assignments/{id} [delete]
func (c *RoomController) DeleteAssignment(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("assignment id must be a positive integer"))
		return
	}

	if err := c.roomService.DeleteAssignment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Room assignment deleted"))
}
