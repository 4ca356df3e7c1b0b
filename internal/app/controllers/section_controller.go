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

// SectionController handles section administration endpoints
type SectionController struct {
	sectionService *services.SectionService
}

// NewSectionController creates a new section controller
func NewSectionController(sectionService *services.SectionService) *SectionController {
	return &SectionController{sectionService: sectionService}
}

// Promote godoc
// @Summary Promote a section to a new semester
// @Description Freezes the current offerings into the section history, optionally recreates them in the new semester and advances the section's semester pointer, atomically
// @Tags sections
// @Accept json
// @Produce json
// @Param id path int true "Section id"
// @Param request body dto.PromoteSectionRequest true "New semester"
// @Success 200 {object} dto.APIResponse{data=dto.PromoteSectionResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/sections/{id}/promote [post]
func (c *SectionController) Promote(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("section id must be a positive integer"))
		return
	}

	var req dto.PromoteSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.sectionService.Promote(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, "Section promoted"))
}
