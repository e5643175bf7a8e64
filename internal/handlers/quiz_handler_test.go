package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

// stubQuizService returns canned values so handler behavior can be tested in
// isolation from the session state machine.
type stubQuizService struct {
	state *models.QuizState
	err   error

	lastUserID string
	lastConfig models.QuizConfig
}

func (s *stubQuizService) StartQuiz(_ context.Context, userID string, config models.QuizConfig) (*models.QuizState, error) {
	s.lastUserID = userID
	s.lastConfig = config
	return s.state, s.err
}

func (s *stubQuizService) SubmitAnswer(_ context.Context, userID string, _ []string) (*models.QuizState, error) {
	s.lastUserID = userID
	return s.state, s.err
}

func (s *stubQuizService) NextQuestion(_ context.Context, userID string) (*models.QuizState, error) {
	s.lastUserID = userID
	return s.state, s.err
}

func (s *stubQuizService) PauseQuiz(_ context.Context, userID string) (*models.QuizState, error) {
	return s.state, s.err
}

func (s *stubQuizService) ResumeQuiz(_ context.Context, userID string) (*models.QuizState, error) {
	return s.state, s.err
}

func (s *stubQuizService) RetryIncorrect(_ context.Context, userID string) (*models.QuizState, error) {
	return s.state, s.err
}

func (s *stubQuizService) ResumeSavedSession(_ context.Context, userID string) (*models.QuizState, error) {
	return s.state, s.err
}

func (s *stubQuizService) ResetQuiz(_ context.Context, userID string) error {
	return s.err
}

func (s *stubQuizService) GetState(_ context.Context, userID string) (*models.QuizState, error) {
	return s.state, s.err
}

type stubProgressService struct {
	recordedQuizzes int
}

func (s *stubProgressService) GetProgress(context.Context, string) (*models.ProgressData, error) {
	return &models.ProgressData{}, nil
}

func (s *stubProgressService) RecordQuizResult(context.Context, string, *models.QuizState, *models.QuizScore) (*models.ProgressData, error) {
	s.recordedQuizzes++
	return &models.ProgressData{}, nil
}

func (s *stubProgressService) RecordScenarioAttempt(context.Context, string, *models.ScenarioAttempt) (*models.ProgressData, error) {
	return &models.ProgressData{}, nil
}

func (s *stubProgressService) DomainRollups(*models.ProgressData) []models.DomainProgress {
	return nil
}

func (s *stubProgressService) ComputeExamReadiness(*models.ProgressData) models.ExamReadiness {
	return models.ExamReadiness{}
}

func (s *stubProgressService) BuildStudyPlan(*models.ProgressData, int) []models.StudyPlanWeek {
	return nil
}

func newQuizRouter(quiz *stubQuizService, progress *stubProgressService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := NewQuizHandler(quiz, services.NewScoreService(), progress, logger)
	router.GET("/health", HealthCheck)
	router.POST("/quiz/start", handler.StartQuiz)
	router.POST("/quiz/answer", handler.SubmitAnswer)
	router.GET("/quiz/score", handler.GetScore)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := newQuizRouter(&stubQuizService{}, &stubProgressService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestStartQuizEmptyBodyUsesDefaults(t *testing.T) {
	quiz := &stubQuizService{state: &models.QuizState{QuizID: "quiz-1"}}
	router := newQuizRouter(quiz, &stubProgressService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quiz/start", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.DefaultQuizConfig(), quiz.lastConfig)
	assert.Equal(t, "local", quiz.lastUserID)
}

func TestStartQuizHeaderIdentity(t *testing.T) {
	quiz := &stubQuizService{state: &models.QuizState{QuizID: "quiz-1"}}
	router := newQuizRouter(quiz, &stubProgressService{})

	req := httptest.NewRequest(http.MethodPost, "/quiz/start", nil)
	req.Header.Set("X-User-ID", "alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice", quiz.lastUserID)
}

func TestStartQuizNoMatchingQuestionsMapsTo422(t *testing.T) {
	quiz := &stubQuizService{err: services.ErrNoMatchingQuestions}
	router := newQuizRouter(quiz, &stubProgressService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quiz/start", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmitAnswerRejectsBadPayload(t *testing.T) {
	router := newQuizRouter(&stubQuizService{}, &stubProgressService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quiz/answer", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAnswerConflictMapsTo409(t *testing.T) {
	quiz := &stubQuizService{err: services.ErrQuizNotActive}
	router := newQuizRouter(quiz, &stubProgressService{})

	body := strings.NewReader(`{"selected_option_ids":["a"]}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quiz/answer", body))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmitAnswerOnCompletionRecordsProgress(t *testing.T) {
	end := models.QuizState{
		QuizID:      "quiz-1",
		Phase:       models.PhaseCompleted,
		IsCompleted: true,
	}
	quiz := &stubQuizService{state: &end}
	progress := &stubProgressService{}
	router := newQuizRouter(quiz, progress)

	body := strings.NewReader(`{"selected_option_ids":["a"]}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quiz/answer", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, progress.recordedQuizzes)
}

func TestGetScoreRequiresCompletedQuiz(t *testing.T) {
	quiz := &stubQuizService{state: &models.QuizState{Phase: models.PhaseInProgress}}
	router := newQuizRouter(quiz, &stubProgressService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quiz/score", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetScoreForCompletedQuiz(t *testing.T) {
	quiz := &stubQuizService{state: &models.QuizState{
		Phase:       models.PhaseCompleted,
		IsCompleted: true,
		Questions: []models.Question{
			{ID: "q1", Domain: models.DomainConcepts, Difficulty: models.DifficultyEasy},
		},
		Answers: []models.UserAnswer{{QuestionID: "q1", IsCorrect: true, TimeSpent: 20}},
	}}
	router := newQuizRouter(quiz, &stubProgressService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quiz/score", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"scaled_score":900`)
	assert.Contains(t, w.Body.String(), `"points":`)
	assert.Contains(t, w.Body.String(), `"metrics":`)
}
