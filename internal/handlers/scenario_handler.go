package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

type ScenarioHandler struct {
	BaseHandler
	scenarioService services.ScenarioService
	progressService services.ProgressService
}

func NewScenarioHandler(
	scenarioService services.ScenarioService,
	progressService services.ProgressService,
	logger utils.Logger,
) *ScenarioHandler {
	return &ScenarioHandler{
		BaseHandler:     NewBaseHandler(logger),
		scenarioService: scenarioService,
		progressService: progressService,
	}
}

func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	filters := repositories.ScenarioFilters{
		LOCode: c.Query("lo_code"),
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		d := models.ScenarioDifficulty(difficulty)
		filters.Difficulty = &d
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = offset
	}

	scenarios, total, err := h.scenarioService.ListScenarios(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scenarios": scenarios,
		"total":     total,
	})
}

func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	scenario, err := h.scenarioService.GetScenario(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

type startScenarioRequest struct {
	Timed bool `json:"timed"`
}

// StartScenario opens a new attempt. With timed=true the scenario's
// estimated time becomes a hard limit.
func (h *ScenarioHandler) StartScenario(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req startScenarioRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	h.LogRequest(c, "Starting scenario", "scenario_id", id, "timed", req.Timed)

	attempt, err := h.scenarioService.StartScenario(c.Request.Context(), currentUserID(c), id, req.Timed)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

type submitPhaseRequest struct {
	PhaseID string            `json:"phase_id" binding:"required"`
	Answers map[string]string `json:"answers" binding:"required"`
}

// SubmitPhase grades the free-text answers of one phase.
func (h *ScenarioHandler) SubmitPhase(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}

	var req submitPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting scenario phase",
		"attempt_id", attemptID,
		"phase_id", req.PhaseID,
		"answer_count", len(req.Answers))

	graded, err := h.scenarioService.SubmitPhase(c.Request.Context(), currentUserID(c), attemptID, req.PhaseID, req.Answers)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": graded})
}

// CompleteScenario closes the attempt and returns the score analysis.
func (h *ScenarioHandler) CompleteScenario(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}

	userID := currentUserID(c)
	analysis, err := h.scenarioService.CompleteScenario(c.Request.Context(), userID, attemptID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.recordAttempt(c, userID, attemptID)
	c.JSON(http.StatusOK, analysis)
}

func (h *ScenarioHandler) AbandonScenario(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}

	if err := h.scenarioService.AbandonScenario(c.Request.Context(), currentUserID(c), attemptID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "scenario abandoned"})
}

func (h *ScenarioHandler) GetScoreAnalysis(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}

	analysis, err := h.scenarioService.GetScoreAnalysis(c.Request.Context(), attemptID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *ScenarioHandler) ListAttempts(c *gin.Context) {
	filters := repositories.AttemptFilters{
		ScenarioID: c.Query("scenario_id"),
		Status:     models.AttemptStatus(c.Query("status")),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}

	attempts, total, err := h.scenarioService.ListAttempts(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"total":    total,
	})
}

// recordAttempt folds the finished attempt into the progress document.
// Failures are logged, not surfaced.
func (h *ScenarioHandler) recordAttempt(c *gin.Context, userID, attemptID string) {
	attempt, err := h.scenarioService.GetAttempt(c.Request.Context(), attemptID)
	if err != nil {
		h.LogError(c, err, "Failed to load attempt for progress", "attempt_id", attemptID)
		return
	}
	if _, err := h.progressService.RecordScenarioAttempt(c.Request.Context(), userID, attempt); err != nil {
		h.LogError(c, err, "Failed to record scenario attempt", "attempt_id", attemptID)
	}
}
