package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetProgress returns the full progress document for the acting user.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	progress, err := h.progressService.GetProgress(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetDomainRollups returns the per-category aggregation.
func (h *ProgressHandler) GetDomainRollups(c *gin.Context) {
	progress, err := h.progressService.GetProgress(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": h.progressService.DomainRollups(progress)})
}

// GetExamReadiness returns the readiness estimate.
func (h *ProgressHandler) GetExamReadiness(c *gin.Context) {
	progress, err := h.progressService.GetProgress(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.progressService.ComputeExamReadiness(progress))
}

// GetStudyPlan lays out the weakest categories over the requested weeks
// (default 4).
func (h *ProgressHandler) GetStudyPlan(c *gin.Context) {
	weeks := 4
	if parsed, err := strconv.Atoi(c.Query("weeks")); err == nil && parsed > 0 {
		weeks = parsed
	}

	progress, err := h.progressService.GetProgress(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"study_plan": h.progressService.BuildStudyPlan(progress, weeks)})
}
