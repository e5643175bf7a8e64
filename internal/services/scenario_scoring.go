package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/netplus-prep/assessment-service/internal/models"
)

// ScoringConfig tunes the free-text grading engine. The defaults match the
// calibrated values the question authors write criteria against; changing
// them shifts every scenario's difficulty.
type ScoringConfig struct {
	// MinKeywordLength filters criterion tokens; only tokens longer than
	// this count as keywords.
	MinKeywordLength int
	// MatchThreshold is the fraction of a criterion's keywords that must
	// appear in the answer for the criterion to count as addressed. At
	// least one keyword must always match.
	MatchThreshold float64
	// PassPercentage and DistinctionPercentage split results into
	// fail / pass / pass-with-distinction.
	PassPercentage        float64
	DistinctionPercentage float64
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		MinKeywordLength:      3,
		MatchThreshold:        0.3,
		PassPercentage:        70,
		DistinctionPercentage: 80,
	}
}

// PointResult is the graded outcome for one assessment point.
type PointResult struct {
	Score    int
	MaxScore int
	Matched  []string
	Missed   []string
	Feedback string
}

// ScoringEngine grades free-text answers by keyword overlap against each
// assessment point's criteria list.
type ScoringEngine struct {
	config ScoringConfig
}

func NewScoringEngine(config ScoringConfig) *ScoringEngine {
	return &ScoringEngine{config: config}
}

// ScoreAnswer grades one answer against one assessment point. A criterion is
// addressed when enough of its keywords appear as substrings of the
// lowercased answer; the point's score is the addressed fraction of its
// maximum, rounded.
func (e *ScoringEngine) ScoreAnswer(answer string, point models.AssessmentPoint) (PointResult, error) {
	if len(point.Criteria) == 0 {
		return PointResult{}, ErrAssessmentPointEmpty
	}

	lower := strings.ToLower(answer)
	var matched, missed []string

	for _, criterion := range point.Criteria {
		if e.criterionAddressed(lower, criterion) {
			matched = append(matched, criterion)
		} else {
			missed = append(missed, criterion)
		}
	}

	score := int(math.Round(float64(len(matched)) / float64(len(point.Criteria)) * float64(point.MaxScore)))

	return PointResult{
		Score:    score,
		MaxScore: point.MaxScore,
		Matched:  matched,
		Missed:   missed,
		Feedback: e.buildFeedback(score, point.MaxScore, matched, missed),
	}, nil
}

// PassStatus maps an overall percentage onto the three-way outcome.
func (e *ScoringEngine) PassStatus(percentage float64) models.PassStatus {
	switch {
	case percentage >= e.config.DistinctionPercentage:
		return models.PassWithDistinction
	case percentage >= e.config.PassPercentage:
		return models.Pass
	default:
		return models.PassFail
	}
}

func (e *ScoringEngine) criterionAddressed(lowerAnswer, criterion string) bool {
	keywords := e.keywords(criterion)
	if len(keywords) == 0 {
		return false
	}

	matchCount := 0
	for _, keyword := range keywords {
		if strings.Contains(lowerAnswer, keyword) {
			matchCount++
		}
	}

	required := float64(len(keywords)) * e.config.MatchThreshold
	if required < 1 {
		required = 1
	}
	return float64(matchCount) >= required
}

func (e *ScoringEngine) keywords(criterion string) []string {
	var keywords []string
	for _, token := range strings.Split(strings.ToLower(criterion), " ") {
		if len(token) > e.config.MinKeywordLength {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

func (e *ScoringEngine) buildFeedback(score, maxScore int, matched, missed []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d/%d\n", score, maxScore)

	if len(matched) > 0 {
		b.WriteString("\n✓ Addressed points:\n")
		for _, criterion := range matched {
			fmt.Fprintf(&b, "- %s\n", criterion)
		}
	}
	if len(missed) > 0 {
		b.WriteString("\n✗ Consider adding:\n")
		for _, criterion := range missed {
			fmt.Fprintf(&b, "- %s\n", criterion)
		}
	}
	return b.String()
}
