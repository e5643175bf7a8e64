package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netplus-prep/assessment-service/internal/events"
	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

// QuizService drives the quiz session state machine. Exactly one session is
// live per user; starting a new quiz or a retry replaces it. Every mutation
// of an in-progress session is written to the session store so an interrupted
// session can be resumed.
type QuizService interface {
	StartQuiz(ctx context.Context, userID string, config models.QuizConfig) (*models.QuizState, error)
	SubmitAnswer(ctx context.Context, userID string, selectedOptionIDs []string) (*models.QuizState, error)
	NextQuestion(ctx context.Context, userID string) (*models.QuizState, error)
	PauseQuiz(ctx context.Context, userID string) (*models.QuizState, error)
	ResumeQuiz(ctx context.Context, userID string) (*models.QuizState, error)
	RetryIncorrect(ctx context.Context, userID string) (*models.QuizState, error)
	ResumeSavedSession(ctx context.Context, userID string) (*models.QuizState, error)
	ResetQuiz(ctx context.Context, userID string) error
	GetState(ctx context.Context, userID string) (*models.QuizState, error)
}

type quizService struct {
	repo      repositories.Repository
	store     repositories.SessionStore
	selector  *QuizSelector
	scores    *ScoreService
	publisher events.EventPublisher
	clock     Clock
	logger    *slog.Logger
	validator *utils.Validator

	mu       sync.RWMutex
	sessions map[string]*models.QuizState
}

func NewQuizService(
	repo repositories.Repository,
	store repositories.SessionStore,
	selector *QuizSelector,
	scores *ScoreService,
	publisher events.EventPublisher,
	clock Clock,
	logger *slog.Logger,
	validator *utils.Validator,
) QuizService {
	return &quizService{
		repo:      repo,
		store:     store,
		selector:  selector,
		scores:    scores,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		validator: validator,
		sessions:  make(map[string]*models.QuizState),
	}
}

func (s *quizService) StartQuiz(ctx context.Context, userID string, config models.QuizConfig) (*models.QuizState, error) {
	if err := s.validator.Validate(config); err != nil {
		return nil, err
	}

	pool, _, err := s.repo.Question().List(ctx, repositories.QuestionFilters{
		Domains:      config.Domains,
		Difficulties: config.Difficulties,
	})
	if err != nil {
		return nil, err
	}

	questions, err := s.selector.Select(pool, config)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	state := &models.QuizState{
		QuizID:            "quiz-" + uuid.NewString(),
		Phase:             models.PhaseInProgress,
		StartTime:         now,
		Questions:         questions,
		Answers:           []models.UserAnswer{},
		Config:            config,
		QuestionStartTime: now,
	}

	s.mu.Lock()
	s.sessions[userID] = state
	s.mu.Unlock()

	s.persist(ctx, userID, state)
	s.logger.Info("quiz started",
		"user_id", userID,
		"quiz_id", state.QuizID,
		"question_count", len(questions),
		"feedback_mode", config.FeedbackMode)

	return snapshot(state), nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, userID string, selectedOptionIDs []string) (*models.QuizState, error) {
	if len(selectedOptionIDs) == 0 {
		return nil, ErrEmptySelection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.activeSession(userID)
	if err != nil {
		return nil, err
	}
	if state.Phase != models.PhaseInProgress {
		return nil, ErrQuizNotActive
	}
	if state.IsPaused {
		return nil, ErrQuizPaused
	}
	if len(state.Answers) > state.CurrentQuestionIndex {
		return nil, ErrAnswerAlreadyGiven
	}

	question := state.CurrentQuestion()
	if question == nil {
		return nil, ErrQuizNotActive
	}

	now := s.clock.Now()
	answer := models.UserAnswer{
		QuestionID:        question.ID,
		SelectedOptionIDs: selectedOptionIDs,
		IsCorrect:         gradeSelection(question, selectedOptionIDs),
		TimeSpent:         int(now.Sub(state.QuestionStartTime).Seconds()),
		Timestamp:         now,
	}
	state.Answers = append(state.Answers, answer)

	if state.Config.FeedbackMode == models.FeedbackImmediate {
		state.Phase = models.PhaseReviewing
	} else {
		s.advance(state, now)
	}

	s.checkpoint(ctx, userID, state)
	return snapshot(state), nil
}

// NextQuestion leaves the reviewing pause of immediate-feedback mode and
// advances to the next question, or completes the quiz after the last one.
func (s *quizService) NextQuestion(ctx context.Context, userID string) (*models.QuizState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.activeSession(userID)
	if err != nil {
		return nil, err
	}
	if state.Phase != models.PhaseReviewing {
		return nil, ErrQuizNotActive
	}

	s.advance(state, s.clock.Now())
	s.checkpoint(ctx, userID, state)
	return snapshot(state), nil
}

func (s *quizService) PauseQuiz(ctx context.Context, userID string) (*models.QuizState, error) {
	return s.setPaused(ctx, userID, true)
}

func (s *quizService) ResumeQuiz(ctx context.Context, userID string) (*models.QuizState, error) {
	return s.setPaused(ctx, userID, false)
}

func (s *quizService) setPaused(ctx context.Context, userID string, paused bool) (*models.QuizState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.activeSession(userID)
	if err != nil {
		return nil, err
	}
	if state.Phase != models.PhaseInProgress && state.Phase != models.PhaseReviewing {
		return nil, ErrQuizNotActive
	}

	state.IsPaused = paused
	if !paused {
		// The per-question timer restarts; pause time is not charged to
		// the question.
		state.QuestionStartTime = s.clock.Now()
	}

	s.persist(ctx, userID, state)
	return snapshot(state), nil
}

// RetryIncorrect starts a follow-up quiz over the questions answered
// incorrectly in the completed session.
func (s *quizService) RetryIncorrect(ctx context.Context, userID string) (*models.QuizState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.activeSession(userID)
	if err != nil {
		return nil, err
	}
	if !state.IsCompleted {
		return nil, ErrQuizNotCompleted
	}

	incorrect := state.IncorrectQuestions()
	if len(incorrect) == 0 {
		return nil, ErrNoIncorrectAnswers
	}

	config := state.Config
	config.NumberOfQuestions = len(incorrect)
	config.RetryIncorrectOnly = true

	questions, err := s.selector.Select(incorrect, config)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	retry := &models.QuizState{
		QuizID:            "quiz-retry-" + uuid.NewString(),
		Phase:             models.PhaseInProgress,
		StartTime:         now,
		Questions:         questions,
		Answers:           []models.UserAnswer{},
		Config:            config,
		QuestionStartTime: now,
	}
	s.sessions[userID] = retry

	s.persist(ctx, userID, retry)
	s.logger.Info("retry quiz started",
		"user_id", userID,
		"quiz_id", retry.QuizID,
		"question_count", len(questions))

	return snapshot(retry), nil
}

// ResumeSavedSession restores an interrupted session from the session store.
// The per-question timer restarts at resume.
func (s *quizService) ResumeSavedSession(ctx context.Context, userID string) (*models.QuizState, error) {
	envelope, err := s.store.LoadQuizProgress(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoSavedSession
		}
		return nil, err
	}

	state := envelope.QuizState
	if state.IsCompleted {
		return nil, ErrQuizAlreadyCompleted
	}

	state.QuestionStartTime = s.clock.Now()
	state.IsPaused = false

	s.mu.Lock()
	s.sessions[userID] = state
	s.mu.Unlock()

	s.logger.Info("quiz session resumed",
		"user_id", userID,
		"quiz_id", state.QuizID,
		"current_question", state.CurrentQuestionIndex)

	return snapshot(state), nil
}

func (s *quizService) ResetQuiz(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	if err := s.store.ClearQuizProgress(ctx, userID); err != nil {
		s.logger.Warn("failed to clear saved quiz session", "user_id", userID, "error", err)
	}
	return nil
}

func (s *quizService) GetState(_ context.Context, userID string) (*models.QuizState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.activeSession(userID)
	if err != nil {
		return nil, err
	}
	return snapshot(state), nil
}

// ===== INTERNALS =====

// activeSession must be called with s.mu held.
func (s *quizService) activeSession(userID string) (*models.QuizState, error) {
	state, ok := s.sessions[userID]
	if !ok {
		return nil, ErrQuizNotActive
	}
	return state, nil
}

// advance moves to the next question, or completes the quiz after the last
// answer. Must be called with s.mu held.
func (s *quizService) advance(state *models.QuizState, now time.Time) {
	if state.CurrentQuestionIndex >= len(state.Questions)-1 {
		state.Phase = models.PhaseCompleted
		state.IsCompleted = true
		end := now
		state.EndTime = &end
		return
	}
	state.CurrentQuestionIndex++
	state.Phase = models.PhaseInProgress
	state.QuestionStartTime = now
}

// announceCompletion publishes the completion event with the derived score.
// Must be called with s.mu held.
func (s *quizService) announceCompletion(ctx context.Context, userID string, state *models.QuizState) {
	score := s.scores.CalculateScore(state)
	s.logger.Info("quiz completed",
		"user_id", userID,
		"quiz_id", state.QuizID,
		"percentage", score.Percentage,
		"scaled_score", score.ScaledScore,
		"passed", score.Passed)

	if s.publisher == nil {
		return
	}
	event := events.NewQuizCompletedEvent(userID, score, state.QuizID, *state.EndTime)
	if err := s.publisher.PublishAssessmentEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish quiz completion", "quiz_id", state.QuizID, "error", err)
	}
}

func snapshot(state *models.QuizState) *models.QuizState {
	copied := *state
	return &copied
}

// checkpoint persists the session while it is still incomplete; completion
// drops the saved envelope and publishes the result. Must be called with
// s.mu held.
func (s *quizService) checkpoint(ctx context.Context, userID string, state *models.QuizState) {
	if !state.IsCompleted {
		s.persist(ctx, userID, state)
		return
	}
	if err := s.store.ClearQuizProgress(ctx, userID); err != nil {
		s.logger.Warn("failed to clear saved quiz session", "user_id", userID, "error", err)
	}
	s.announceCompletion(ctx, userID, state)
}

// persist writes the session best effort; a store failure never fails the
// quiz operation.
func (s *quizService) persist(ctx context.Context, userID string, state *models.QuizState) {
	envelope := &models.QuizProgressEnvelope{QuizState: state}
	if err := s.store.SaveQuizProgress(ctx, userID, envelope); err != nil {
		s.logger.Warn("failed to save quiz progress", "user_id", userID, "quiz_id", state.QuizID, "error", err)
	}
}

// gradeSelection compares the selection against the question's correct
// option set. Correct means exact set equality; order and duplicates in the
// selection do not matter.
func gradeSelection(question *models.Question, selectedOptionIDs []string) bool {
	correct := question.CorrectOptionIDs()
	selected := make(map[string]bool, len(selectedOptionIDs))
	for _, id := range selectedOptionIDs {
		selected[id] = true
	}

	if len(selected) != len(correct) {
		return false
	}
	for id := range selected {
		if !correct[id] {
			return false
		}
	}
	return true
}
