package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/services"
	"github.com/yigit/unitime/internal/middleware"
)

// ExamController handles exam scheduling endpoints
type ExamController struct {
	examService *services.ExamService
}

// NewExamController creates a new exam controller
func NewExamController(examService *services.ExamService) *ExamController {
	return &ExamController{examService: examService}
}

// GenerateSchedule godoc
// @Summary Generate the exam schedule
// @Description Places an exam for every current-semester offering without one, honoring section and room non-overlap
// @Tags exams
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.GenerateScheduleResponse}
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /exam/generate-schedule [post]
func (c *ExamController) GenerateSchedule(ctx *gin.Context) {
	resp, err := c.examService.GenerateSchedule(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, "Exam schedule generated"))
}

// Reset godoc
// @Summary Rebuild an exam attribute in bulk
// @Description Currently supports type "invigilators": redistributes active instructors round-robin over all exams
// @Tags exams
// @Accept json
// @Produce json
// @Param request body dto.ResetExamsRequest true "What to reset"
// @Success 200 {object} dto.APIResponse{data=dto.ResetExamsResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /exam/reset [post]
func (c *ExamController) Reset(ctx *gin.Context) {
	var req dto.ResetExamsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.examService.ResetInvigilators(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, "Exam invigilators rebalanced"))
}

// List godoc
// @Summary List exams
// @Description Returns every scheduled exam in id order
// @Tags exams
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Security BearerAuth
// @Router /exam [get]
func (c *ExamController) List(ctx *gin.Context) {
	exams, err := c.examService.ListExams(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(exams, ""))
}
