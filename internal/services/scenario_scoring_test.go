package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netplus-prep/assessment-service/internal/models"
)

func TestScoreAnswerAllCriteriaAddressed(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())
	point := models.AssessmentPoint{
		LOID:     "lo-2.1",
		MaxScore: 10,
		Criteria: []string{
			"separate subnet per department",
			"VLAN assigned per subnet",
		},
	}

	result, err := engine.ScoreAnswer(
		"I would give each department its own subnet and assign a dedicated VLAN to every subnet.",
		point,
	)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 10, result.MaxScore)
	assert.Len(t, result.Matched, 2)
	assert.Empty(t, result.Missed)
}

func TestScoreAnswerPartialMatchRounds(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())
	point := models.AssessmentPoint{
		MaxScore: 5,
		Criteria: []string{
			"configure redundant uplinks",
			"document the topology",
		},
	}

	// Only the first criterion is addressed: 1/2 of 5 rounds to 3.
	result, err := engine.ScoreAnswer("set up redundant uplinks between the switches", point)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Score)
	assert.Equal(t, []string{"configure redundant uplinks"}, result.Matched)
	assert.Equal(t, []string{"document the topology"}, result.Missed)
}

func TestScoreAnswerNoMatch(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())
	point := models.AssessmentPoint{
		MaxScore: 10,
		Criteria: []string{"enable spanning tree protection"},
	}

	result, err := engine.ScoreAnswer("reboot the router", point)
	require.NoError(t, err)

	assert.Zero(t, result.Score)
	assert.Empty(t, result.Matched)
	assert.Len(t, result.Missed, 1)
}

func TestScoreAnswerMatchingIsCaseInsensitive(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())
	point := models.AssessmentPoint{
		MaxScore: 4,
		Criteria: []string{"WPA3 enterprise authentication"},
	}

	result, err := engine.ScoreAnswer("Deploy wpa3 with ENTERPRISE authentication via RADIUS.", point)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Score)
}

func TestScoreAnswerEmptyCriteria(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())

	_, err := engine.ScoreAnswer("anything", models.AssessmentPoint{MaxScore: 5})
	assert.ErrorIs(t, err, ErrAssessmentPointEmpty)
}

func TestScoreAnswerShortTokensAreNotKeywords(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())
	point := models.AssessmentPoint{
		MaxScore: 5,
		// Every token is three characters or fewer, so the criterion has no
		// keywords and can never be addressed.
		Criteria: []string{"use a vpn"},
	}

	result, err := engine.ScoreAnswer("use a vpn", point)
	require.NoError(t, err)
	assert.Zero(t, result.Score)
}

func TestScoreAnswerSingleKeywordIsEnough(t *testing.T) {
	// With the default 0.3 threshold a three-keyword criterion needs
	// max(1, 0.9) = 1 match.
	engine := NewScoringEngine(DefaultScoringConfig())
	point := models.AssessmentPoint{
		MaxScore: 6,
		Criteria: []string{"implement segmentation firewalls"},
	}

	result, err := engine.ScoreAnswer("add firewalls at the perimeter", point)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Score)
}

func TestScoreAnswerFeedbackFormat(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())
	point := models.AssessmentPoint{
		MaxScore: 4,
		Criteria: []string{
			"configure port security",
			"disable unused interfaces",
		},
	}

	result, err := engine.ScoreAnswer("turn on port security everywhere", point)
	require.NoError(t, err)

	assert.Contains(t, result.Feedback, "Score: 2/4")
	assert.Contains(t, result.Feedback, "✓ Addressed points:")
	assert.Contains(t, result.Feedback, "- configure port security")
	assert.Contains(t, result.Feedback, "✗ Consider adding:")
	assert.Contains(t, result.Feedback, "- disable unused interfaces")
}

func TestPassStatusThresholds(t *testing.T) {
	engine := NewScoringEngine(DefaultScoringConfig())

	tests := []struct {
		percentage float64
		expected   models.PassStatus
	}{
		{0, models.PassFail},
		{69.9, models.PassFail},
		{70, models.Pass},
		{79.9, models.Pass},
		{80, models.PassWithDistinction},
		{100, models.PassWithDistinction},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, engine.PassStatus(tt.percentage), "percentage %.1f", tt.percentage)
	}
}

func TestPassStatusCustomThresholds(t *testing.T) {
	config := DefaultScoringConfig()
	config.PassPercentage = 60
	config.DistinctionPercentage = 90
	engine := NewScoringEngine(config)

	assert.Equal(t, models.Pass, engine.PassStatus(65))
	assert.Equal(t, models.Pass, engine.PassStatus(85))
	assert.Equal(t, models.PassWithDistinction, engine.PassStatus(90))
}
