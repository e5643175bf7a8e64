package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService     services.QuizService
	scoreService    *services.ScoreService
	progressService services.ProgressService
}

func NewQuizHandler(
	quizService services.QuizService,
	scoreService *services.ScoreService,
	progressService services.ProgressService,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:     NewBaseHandler(logger),
		quizService:     quizService,
		scoreService:    scoreService,
		progressService: progressService,
	}
}

// StartQuiz starts a new quiz session for the acting user. The body is the
// quiz configuration; an empty body starts with the default blueprint.
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	h.LogRequest(c, "Starting quiz")

	config := models.DefaultQuizConfig()
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&config); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	state, err := h.quizService.StartQuiz(c.Request.Context(), currentUserID(c), config)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, state)
}

type submitAnswerRequest struct {
	SelectedOptionIDs []string `json:"selected_option_ids" binding:"required"`
}

// SubmitAnswer records the answer for the current question.
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := currentUserID(c)
	h.LogRequest(c, "Submitting answer", "selected_count", len(req.SelectedOptionIDs))

	state, err := h.quizService.SubmitAnswer(c.Request.Context(), userID, req.SelectedOptionIDs)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if state.IsCompleted {
		h.recordCompletion(c, userID, state)
	}
	c.JSON(http.StatusOK, state)
}

// NextQuestion advances past the answer review in immediate-feedback mode.
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	userID := currentUserID(c)
	state, err := h.quizService.NextQuestion(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if state.IsCompleted {
		h.recordCompletion(c, userID, state)
	}
	c.JSON(http.StatusOK, state)
}

func (h *QuizHandler) PauseQuiz(c *gin.Context) {
	state, err := h.quizService.PauseQuiz(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *QuizHandler) ResumeQuiz(c *gin.Context) {
	state, err := h.quizService.ResumeQuiz(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// RetryIncorrect starts a follow-up quiz over the incorrectly answered
// questions of the completed session.
func (h *QuizHandler) RetryIncorrect(c *gin.Context) {
	h.LogRequest(c, "Starting incorrect-answer retry")

	state, err := h.quizService.RetryIncorrect(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// ResumeSavedSession restores an interrupted session from the session store.
func (h *QuizHandler) ResumeSavedSession(c *gin.Context) {
	h.LogRequest(c, "Resuming saved quiz session")

	state, err := h.quizService.ResumeSavedSession(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *QuizHandler) ResetQuiz(c *gin.Context) {
	if err := h.quizService.ResetQuiz(c.Request.Context(), currentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "quiz reset"})
}

func (h *QuizHandler) GetState(c *gin.Context) {
	state, err := h.quizService.GetState(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetScore returns the derived result record for the completed session.
func (h *QuizHandler) GetScore(c *gin.Context) {
	state, err := h.quizService.GetState(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !state.IsCompleted {
		handleServiceError(c, services.ErrQuizNotCompleted)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score":   h.scoreService.CalculateScore(state),
		"points":  h.scoreService.CalculatePoints(state),
		"metrics": h.scoreService.CalculateMetrics(state),
	})
}

// recordCompletion folds the finished quiz into the progress document.
// Failures are logged, not surfaced; the quiz result itself is already
// final.
func (h *QuizHandler) recordCompletion(c *gin.Context, userID string, state *models.QuizState) {
	score := h.scoreService.CalculateScore(state)
	if _, err := h.progressService.RecordQuizResult(c.Request.Context(), userID, state, score); err != nil {
		h.LogError(c, err, "Failed to record quiz result", "quiz_id", state.QuizID)
	}
}
