package services

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netplus-prep/assessment-service/internal/events"
	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/repositories/memory"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

type quizFixture struct {
	service   QuizService
	store     *memory.SessionStore
	clock     *fakeClock
	publisher *events.MockEventPublisher
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()

	repo := newFakeRepo()
	questions := []*models.Question{}
	for _, q := range []models.Question{
		singleChoiceQuestion("q1", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q2", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q3", models.DomainSecurity, models.DifficultyEasy),
		multiSelectQuestion("q4", models.DomainSecurity, models.DifficultyMedium),
		singleChoiceQuestion("q5", models.DomainTroubleshooting, models.DifficultyHard),
	} {
		copied := q
		questions = append(questions, &copied)
	}
	require.NoError(t, repo.Question().CreateBatch(context.Background(), questions))

	store := memory.NewSessionStore()
	clock := newFakeClock()
	publisher := events.NewMockEventPublisher(testLogger())

	service := NewQuizService(
		repo,
		store,
		NewQuizSelector(rand.New(rand.NewSource(1))),
		NewScoreService(),
		publisher,
		clock,
		testLogger(),
		utils.NewValidator(),
	)
	return &quizFixture{service: service, store: store, clock: clock, publisher: publisher}
}

// dropSession simulates a process restart losing the in-memory session map.
func (s *quizService) dropSession(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

func quizConfig(mode models.FeedbackMode) models.QuizConfig {
	return models.QuizConfig{
		NumberOfQuestions: 5,
		Domains: []models.Domain{
			models.DomainConcepts, models.DomainSecurity, models.DomainTroubleshooting,
		},
		Difficulties: []models.DifficultyLevel{
			models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard,
		},
		FeedbackMode: mode,
	}
}

func TestStartQuiz(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	state, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(state.QuizID, "quiz-"))
	assert.Equal(t, models.PhaseInProgress, state.Phase)
	assert.Len(t, state.Questions, 5)
	assert.Empty(t, state.Answers)
	assert.Zero(t, state.CurrentQuestionIndex)
	assert.False(t, state.IsCompleted)

	// The session is persisted for later resume.
	envelope, err := f.store.LoadQuizProgress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, state.QuizID, envelope.QuizState.QuizID)
}

func TestStartQuizRejectsInvalidConfig(t *testing.T) {
	f := newQuizFixture(t)

	config := quizConfig(models.FeedbackReviewAtEnd)
	config.NumberOfQuestions = 2

	_, err := f.service.StartQuiz(context.Background(), "user-1", config)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestStartQuizNoMatchingQuestions(t *testing.T) {
	f := newQuizFixture(t)

	config := quizConfig(models.FeedbackReviewAtEnd)
	config.Domains = []models.Domain{models.DomainOperations}

	_, err := f.service.StartQuiz(context.Background(), "user-1", config)
	assert.ErrorIs(t, err, ErrNoMatchingQuestions)
}

func TestSubmitAnswerImmediateFeedbackPausesForReview(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackImmediate))
	require.NoError(t, err)

	f.clock.Advance(42 * time.Second)

	state, err := f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
	require.NoError(t, err)

	assert.Equal(t, models.PhaseReviewing, state.Phase)
	assert.Zero(t, state.CurrentQuestionIndex)
	require.Len(t, state.Answers, 1)
	assert.True(t, state.Answers[0].IsCorrect)
	assert.Equal(t, 42, state.Answers[0].TimeSpent)

	// A second submission for the same question is rejected.
	_, err = f.service.SubmitAnswer(ctx, "user-1", []string{"b"})
	assert.ErrorIs(t, err, ErrAnswerAlreadyGiven)

	// NextQuestion leaves the review and advances.
	state, err = f.service.NextQuestion(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseInProgress, state.Phase)
	assert.Equal(t, 1, state.CurrentQuestionIndex)
}

func TestSubmitAnswerReviewAtEndAdvancesImmediately(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	state, err := f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
	require.NoError(t, err)

	assert.Equal(t, models.PhaseInProgress, state.Phase)
	assert.Equal(t, 1, state.CurrentQuestionIndex)

	// NextQuestion is only valid while reviewing.
	_, err = f.service.NextQuestion(ctx, "user-1")
	assert.ErrorIs(t, err, ErrQuizNotActive)
}

func TestSubmitAnswerGradesBySetEquality(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	// Walk to the multi-select question (q4, fourth in unshuffled order).
	for i := 0; i < 3; i++ {
		_, err = f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
		require.NoError(t, err)
	}

	state, err := f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
	require.NoError(t, err)
	// Partial selection of a multi-select is incorrect.
	assert.False(t, state.Answers[3].IsCorrect)
}

func TestSubmitAnswerEmptySelection(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	_, err = f.service.SubmitAnswer(ctx, "user-1", nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestQuizCompletionPublishesEvent(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	var state *models.QuizState
	for i := 0; i < 5; i++ {
		state, err = f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
		require.NoError(t, err)
	}

	assert.True(t, state.IsCompleted)
	assert.Equal(t, models.PhaseCompleted, state.Phase)
	require.NotNil(t, state.EndTime)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventQuizCompleted, f.publisher.Events[0].Type)
}

func TestPauseAndResume(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	state, err := f.service.PauseQuiz(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, state.IsPaused)

	_, err = f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
	assert.ErrorIs(t, err, ErrQuizPaused)

	// Time spent paused is not charged to the question.
	f.clock.Advance(10 * time.Minute)
	_, err = f.service.ResumeQuiz(ctx, "user-1")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Second)
	state, err = f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 10, state.Answers[0].TimeSpent)
}

func TestRetryIncorrect(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	_, err = f.service.RetryIncorrect(ctx, "user-1")
	assert.ErrorIs(t, err, ErrQuizNotCompleted)

	// Miss q2 and q4, answer the rest correctly.
	answers := [][]string{{"a"}, {"b"}, {"a"}, {"b"}, {"a"}}
	for _, selection := range answers {
		_, err = f.service.SubmitAnswer(ctx, "user-1", selection)
		require.NoError(t, err)
	}

	retry, err := f.service.RetryIncorrect(ctx, "user-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(retry.QuizID, "quiz-retry-"))
	assert.Len(t, retry.Questions, 2)
	assert.True(t, retry.Config.RetryIncorrectOnly)
	assert.Equal(t, models.PhaseInProgress, retry.Phase)

	ids := []string{retry.Questions[0].ID, retry.Questions[1].ID}
	assert.ElementsMatch(t, []string{"q2", "q4"}, ids)
}

func TestRetryIncorrectWithPerfectScore(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		selection := []string{"a"}
		if i == 3 { // the multi-select question
			selection = []string{"a", "c"}
		}
		_, err = f.service.SubmitAnswer(ctx, "user-1", selection)
		require.NoError(t, err)
	}

	_, err = f.service.RetryIncorrect(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNoIncorrectAnswers)
}

func TestResumeSavedSession(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	started, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)
	_, err = f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
	require.NoError(t, err)

	// Simulate a restart by dropping the in-memory session.
	f.service.(*quizService).dropSession("user-1")

	_, err = f.service.GetState(ctx, "user-1")
	assert.ErrorIs(t, err, ErrQuizNotActive)

	resumed, err := f.service.ResumeSavedSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, started.QuizID, resumed.QuizID)
	assert.Equal(t, 1, resumed.CurrentQuestionIndex)
	assert.Len(t, resumed.Answers, 1)
	assert.False(t, resumed.IsPaused)
}

func TestResumeSavedSessionMissing(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.service.ResumeSavedSession(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoSavedSession)
}

func TestCompletionClearsSavedSession(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.service.SubmitAnswer(ctx, "user-1", []string{"a"})
		require.NoError(t, err)
	}

	// Only incomplete sessions are persisted; completion drops the envelope
	// so a restart cannot reopen the final question.
	_, err = f.store.LoadQuizProgress(ctx, "user-1")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)

	_, err = f.service.ResumeSavedSession(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNoSavedSession)
}

func TestResumeSavedSessionCompleted(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	// A completed envelope left behind by an older writer is still rejected.
	envelope := &models.QuizProgressEnvelope{QuizState: &models.QuizState{
		QuizID:      "quiz-stale",
		Phase:       models.PhaseCompleted,
		IsCompleted: true,
	}}
	require.NoError(t, f.store.SaveQuizProgress(ctx, "user-1", envelope))

	_, err := f.service.ResumeSavedSession(ctx, "user-1")
	assert.ErrorIs(t, err, ErrQuizAlreadyCompleted)
}

func TestResetQuiz(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.service.StartQuiz(ctx, "user-1", quizConfig(models.FeedbackReviewAtEnd))
	require.NoError(t, err)

	require.NoError(t, f.service.ResetQuiz(ctx, "user-1"))

	_, err = f.service.GetState(ctx, "user-1")
	assert.ErrorIs(t, err, ErrQuizNotActive)

	_, err = f.store.LoadQuizProgress(ctx, "user-1")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}
