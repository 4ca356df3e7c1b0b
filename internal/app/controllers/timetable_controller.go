package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/services"
	"github.com/yigit/unitime/internal/middleware"
	"github.com/yigit/unitime/internal/pkg/apperrors"
)

// TimetableController handles slot selection and timetable reads
type TimetableController struct {
	timetableService *services.TimetableService
}

// NewTimetableController creates a new timetable controller
func NewTimetableController(timetableService *services.TimetableService) *TimetableController {
	return &TimetableController{timetableService: timetableService}
}

// SelectSlots godoc
// @Summary Select time slots for an accepted course request
// @Description Reserves the listed class slots for the caller's accepted request and assigns a room to each, atomically
// @Tags timetable
// @Accept json
// @Produce json
// @Param request body dto.SelectSlotsRequest true "Request id and time slot ids"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /timetable/select-slots [post]
func (c *TimetableController) SelectSlots(ctx *gin.Context) {
	var req dto.SelectSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	reserved, err := c.timetableService.SelectSlots(ctx.Request.Context(), middleware.CallerID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"reservedSlots": reserved}, "Time slots reserved"))
}

// UndoSelection godoc
// @Summary Release the slot reservations of a request
// @Description Cancels every reservation of the request and removes orphaned room assignments; the request stays accepted
// @Tags timetable
// @Accept json
// @Produce json
// @Param request body dto.UndoSelectionRequest true "Request id"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /timetable/undo-acceptance [post]
func (c *TimetableController) UndoSelection(ctx *gin.Context) {
	var req dto.UndoSelectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	released, err := c.timetableService.UndoSelection(ctx.Request.Context(), middleware.CallerID(ctx), middleware.IsAdmin(ctx), req.RequestID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"releasedSlots": released}, "Slot reservations released"))
}

// AvailableSlots godoc
// @Summary List available slots for a request
// @Description Lists the class slots free for both the request's instructor and its section
// @Tags timetable
// @Produce json
// @Param request_id query int true "Course request id"
// @Success 200 {object} dto.APIResponse{data=dto.AvailableSlotsResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /timetable/available-slots [get]
func (c *TimetableController) AvailableSlots(ctx *gin.Context) {
	requestID, err := strconv.ParseInt(ctx.Query("request_id"), 10, 64)
	if err != nil || requestID <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("request_id must be a positive integer"))
		return
	}

	resp, err := c.timetableService.GetAvailableSlots(ctx.Request.Context(), middleware.CallerID(ctx), middleware.IsAdmin(ctx), requestID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, ""))
}

// ListSlots godoc
// @Summary List the slot grid
// @Description Returns every time slot of the given usage (CLASS by default)
// @Tags timetable
// @Produce json
// @Param usage query string false "Slot usage" Enums(CLASS, EXAM)
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /timetable/slots [get]
func (c *TimetableController) ListSlots(ctx *gin.Context) {
	usage := models.SlotUsage(ctx.DefaultQuery("usage", string(models.SlotUsageClass)))
	if usage != models.SlotUsageClass && usage != models.SlotUsageExam {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("usage must be CLASS or EXAM"))
		return
	}

	slots, err := c.timetableService.ListTimeSlots(ctx.Request.Context(), usage)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(slots, ""))
}

// MySchedule godoc
// @Summary Get the caller's timetable
// @Description Returns the instructor's live reservations with slot, course and room context
// @Tags timetable
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.ScheduleEntry}
// @Security BearerAuth
// @Router /timetable/my-schedule [get]
func (c *TimetableController) MySchedule(ctx *gin.Context) {
	entries, err := c.timetableService.GetSchedule(ctx.Request.Context(), middleware.CallerID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(entries, ""))
}
