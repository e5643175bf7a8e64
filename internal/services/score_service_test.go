package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netplus-prep/assessment-service/internal/models"
)

func completedState(questions []models.Question, answers []models.UserAnswer) *models.QuizState {
	return &models.QuizState{
		Phase:       models.PhaseCompleted,
		Questions:   questions,
		Answers:     answers,
		IsCompleted: true,
	}
}

func TestCalculateScoreScaledAndPassing(t *testing.T) {
	questions := make([]models.Question, 10)
	answers := make([]models.UserAnswer, 10)
	for i := range questions {
		questions[i] = singleChoiceQuestion("q", models.DomainConcepts, models.DifficultyEasy)
		answers[i] = models.UserAnswer{IsCorrect: i < 8, TimeSpent: 30}
	}

	score := NewScoreService().CalculateScore(completedState(questions, answers))

	assert.Equal(t, 10, score.TotalQuestions)
	assert.Equal(t, 8, score.CorrectAnswers)
	assert.Equal(t, 2, score.IncorrectAnswers)
	assert.Equal(t, 0, score.SkippedQuestions)
	assert.InDelta(t, 80.0, score.Percentage, 0.001)
	assert.Equal(t, 720, score.ScaledScore)
	assert.Equal(t, PassingScore, score.PassingScore)
	assert.True(t, score.Passed)
	assert.Equal(t, "B-", score.LetterGrade)
	assert.Equal(t, 300, score.TimeSpent)
}

func TestCalculateScoreBelowPassingMark(t *testing.T) {
	questions := make([]models.Question, 10)
	answers := make([]models.UserAnswer, 10)
	for i := range questions {
		questions[i] = singleChoiceQuestion("q", models.DomainConcepts, models.DifficultyEasy)
		answers[i] = models.UserAnswer{IsCorrect: i < 7}
	}

	score := NewScoreService().CalculateScore(completedState(questions, answers))

	assert.Equal(t, 630, score.ScaledScore)
	assert.False(t, score.Passed)
}

func TestCalculateScorePassBarUsesExactScaledValue(t *testing.T) {
	// 1439/1800 is 79.94%: the exact scaled value 719.5 rounds up to 720 for
	// display but sits below the passing mark.
	questions := make([]models.Question, 1800)
	answers := make([]models.UserAnswer, 1800)
	for i := range questions {
		questions[i] = singleChoiceQuestion("q", models.DomainConcepts, models.DifficultyEasy)
		answers[i] = models.UserAnswer{IsCorrect: i < 1439}
	}

	score := NewScoreService().CalculateScore(completedState(questions, answers))

	assert.Equal(t, 720, score.ScaledScore)
	assert.False(t, score.Passed)
}

func TestCalculateScoreCountsUnansweredAsSkipped(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion("q1", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q2", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q3", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q4", models.DomainConcepts, models.DifficultyEasy),
	}
	answers := []models.UserAnswer{
		{IsCorrect: true},
		{IsCorrect: false},
	}

	score := NewScoreService().CalculateScore(completedState(questions, answers))

	assert.Equal(t, 2, score.SkippedQuestions)
	assert.Equal(t, 1, score.CorrectAnswers)
	assert.InDelta(t, 25.0, score.Percentage, 0.001)
}

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   string
	}{
		{100, "A+"},
		{97, "A+"},
		{95, "A"},
		{90, "A-"},
		{85, "B"},
		{80, "B-"},
		{75, "C"},
		{70, "C-"},
		{65, "D"},
		{60, "D-"},
		{59.9, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, LetterGrade(tt.percentage), "percentage %.1f", tt.percentage)
	}
}

func TestCalculatePointsDifficultyAndSpeed(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion("q1", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q2", models.DomainConcepts, models.DifficultyMedium),
		singleChoiceQuestion("q3", models.DomainConcepts, models.DifficultyHard),
	}
	answers := []models.UserAnswer{
		{IsCorrect: true, TimeSpent: 20}, // 10 * 1.0 * 1.10        = 11
		{IsCorrect: true, TimeSpent: 45}, // 10 * 1.5 * 1.05        = 15.75
		{IsCorrect: true, TimeSpent: 90}, // 10 * 2.0 * 1.05 streak = 21
	}

	points := NewScoreService().CalculatePoints(completedState(questions, answers))
	assert.Equal(t, 48, points)
}

func TestCalculatePointsIncorrectResetsStreak(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion("q1", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q2", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q3", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q4", models.DomainConcepts, models.DifficultyEasy),
	}
	answers := []models.UserAnswer{
		{IsCorrect: true, TimeSpent: 100},
		{IsCorrect: true, TimeSpent: 100},
		{IsCorrect: false, TimeSpent: 100},
		{IsCorrect: true, TimeSpent: 100},
	}

	// Streak never reaches three, so no streak multiplier applies.
	points := NewScoreService().CalculatePoints(completedState(questions, answers))
	assert.Equal(t, 30, points)
}

func TestCalculatePointsStreakMultiplier(t *testing.T) {
	questions := make([]models.Question, 5)
	answers := make([]models.UserAnswer, 5)
	for i := range questions {
		questions[i] = singleChoiceQuestion("q", models.DomainConcepts, models.DifficultyEasy)
		answers[i] = models.UserAnswer{IsCorrect: true, TimeSpent: 100}
	}

	// 10 + 10 + 10*1.05 + 10*1.05 + 10*1.15 = 52.5
	points := NewScoreService().CalculatePoints(completedState(questions, answers))
	assert.Equal(t, 53, points)
}

func TestCalculateMetrics(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion("q1", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q2", models.DomainConcepts, models.DifficultyEasy),
	}
	answers := []models.UserAnswer{
		{IsCorrect: true, TimeSpent: 30},
		{IsCorrect: false, TimeSpent: 30},
	}

	metrics := NewScoreService().CalculateMetrics(completedState(questions, answers))

	assert.InDelta(t, 30.0, metrics.AvgTimePerQuestion, 0.001)
	assert.Equal(t, 30, metrics.FastestResponse)
	assert.Equal(t, 30, metrics.SlowestResponse)
	assert.InDelta(t, 1.0, metrics.Consistency, 0.001)
	assert.InDelta(t, 0.5, metrics.Accuracy, 0.001)
}

func TestCalculateMetricsNoAnswers(t *testing.T) {
	metrics := NewScoreService().CalculateMetrics(&models.QuizState{})
	assert.Zero(t, metrics.AvgTimePerQuestion)
	assert.Zero(t, metrics.Accuracy)
}

func TestDomainAndDifficultyBreakdown(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion("q1", models.DomainConcepts, models.DifficultyEasy),
		singleChoiceQuestion("q2", models.DomainConcepts, models.DifficultyHard),
		singleChoiceQuestion("q3", models.DomainSecurity, models.DifficultyEasy),
	}
	answers := []models.UserAnswer{
		{IsCorrect: true},
		{IsCorrect: false},
		{IsCorrect: true},
	}

	score := NewScoreService().CalculateScore(completedState(questions, answers))

	require.Len(t, score.DomainBreakdown, 2)
	concepts := score.DomainBreakdown[0]
	assert.Equal(t, models.DomainConcepts, concepts.Domain)
	assert.Equal(t, "Networking Concepts", concepts.DomainName)
	assert.Equal(t, 2, concepts.TotalQuestions)
	assert.Equal(t, 1, concepts.CorrectAnswers)
	assert.InDelta(t, 50.0, concepts.Percentage, 0.001)

	security := score.DomainBreakdown[1]
	assert.Equal(t, models.DomainSecurity, security.Domain)
	assert.InDelta(t, 100.0, security.Percentage, 0.001)

	require.Len(t, score.DifficultyBreakdown, 2)
	assert.Equal(t, models.DifficultyEasy, score.DifficultyBreakdown[0].Difficulty)
	assert.Equal(t, 2, score.DifficultyBreakdown[0].TotalQuestions)
	assert.Equal(t, models.DifficultyHard, score.DifficultyBreakdown[1].Difficulty)
	assert.Equal(t, 0, score.DifficultyBreakdown[1].CorrectAnswers)
}
