package services

import (
	"math"

	"github.com/netplus-prep/assessment-service/internal/models"
)

// Exam scoring constants. The scaled score mirrors the real exam's 100-900
// band with its published 720 passing mark.
const (
	ScaledScoreMax = 900
	PassingScore   = 720
	basePoints     = 10.0
)

var difficultyMultipliers = map[models.DifficultyLevel]float64{
	models.DifficultyEasy:   1.0,
	models.DifficultyMedium: 1.5,
	models.DifficultyHard:   2.0,
}

// ScoreService derives results from a completed quiz session. It holds no
// state; every calculation is a pure function of the QuizState.
type ScoreService struct{}

func NewScoreService() *ScoreService {
	return &ScoreService{}
}

// CalculateScore builds the full result record for a quiz session. Questions
// without a recorded answer count as skipped and score zero.
func (s *ScoreService) CalculateScore(state *models.QuizState) *models.QuizScore {
	total := len(state.Questions)
	correct := 0
	timeSpent := 0
	for _, answer := range state.Answers {
		if answer.IsCorrect {
			correct++
		}
		timeSpent += answer.TimeSpent
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(correct) / float64(total) * 100
	}
	// Rounding is display only; the pass bar compares the exact value.
	exactScaled := percentage / 100 * ScaledScoreMax
	scaled := int(math.Round(exactScaled))

	return &models.QuizScore{
		TotalQuestions:      total,
		CorrectAnswers:      correct,
		IncorrectAnswers:    len(state.Answers) - correct,
		SkippedQuestions:    total - len(state.Answers),
		Percentage:          percentage,
		ScaledScore:         scaled,
		PassingScore:        PassingScore,
		Passed:              exactScaled >= PassingScore,
		LetterGrade:         LetterGrade(percentage),
		TimeSpent:           timeSpent,
		DomainBreakdown:     s.domainBreakdown(state),
		DifficultyBreakdown: s.difficultyBreakdown(state),
	}
}

// LetterGrade maps a percentage to the standard A+..F scale.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 97:
		return "A+"
	case percentage >= 93:
		return "A"
	case percentage >= 90:
		return "A-"
	case percentage >= 87:
		return "B+"
	case percentage >= 83:
		return "B"
	case percentage >= 80:
		return "B-"
	case percentage >= 77:
		return "C+"
	case percentage >= 73:
		return "C"
	case percentage >= 70:
		return "C-"
	case percentage >= 67:
		return "D+"
	case percentage >= 63:
		return "D"
	case percentage >= 60:
		return "D-"
	default:
		return "F"
	}
}

// CalculatePoints totals the gamified points for a session: a 10-point base
// per correct answer scaled by difficulty, a speed bonus for answers under a
// minute, and a streak multiplier for consecutive correct answers.
func (s *ScoreService) CalculatePoints(state *models.QuizState) int {
	totalPoints := 0.0
	streak := 0

	for i, answer := range state.Answers {
		if !answer.IsCorrect {
			streak = 0
			continue
		}
		streak++

		if i >= len(state.Questions) {
			break
		}
		points := basePoints * difficultyMultiplier(state.Questions[i].Difficulty)

		switch {
		case answer.TimeSpent < 30:
			points *= 1.10
		case answer.TimeSpent < 60:
			points *= 1.05
		}

		points *= streakMultiplier(streak)
		totalPoints += points
	}

	return int(math.Round(totalPoints))
}

func difficultyMultiplier(level models.DifficultyLevel) float64 {
	if m, ok := difficultyMultipliers[level]; ok {
		return m
	}
	return 1.0
}

func streakMultiplier(streak int) float64 {
	switch {
	case streak >= 10:
		return 1.25
	case streak >= 5:
		return 1.15
	case streak >= 3:
		return 1.05
	default:
		return 1.0
	}
}

// CalculateMetrics summarizes answer timing and accuracy for one session.
func (s *ScoreService) CalculateMetrics(state *models.QuizState) *models.PerformanceMetrics {
	if len(state.Answers) == 0 {
		return &models.PerformanceMetrics{}
	}

	totalTime := 0
	fastest := state.Answers[0].TimeSpent
	slowest := state.Answers[0].TimeSpent
	correct := 0
	for _, answer := range state.Answers {
		totalTime += answer.TimeSpent
		if answer.TimeSpent < fastest {
			fastest = answer.TimeSpent
		}
		if answer.TimeSpent > slowest {
			slowest = answer.TimeSpent
		}
		if answer.IsCorrect {
			correct++
		}
	}

	avg := float64(totalTime) / float64(len(state.Answers))

	variance := 0.0
	for _, answer := range state.Answers {
		diff := float64(answer.TimeSpent) - avg
		variance += diff * diff
	}
	variance /= float64(len(state.Answers))

	consistency := 0.0
	if avg > 0 {
		consistency = 1 - math.Sqrt(variance)/avg
		if consistency < 0 {
			consistency = 0
		}
	}

	return &models.PerformanceMetrics{
		AvgTimePerQuestion: avg,
		FastestResponse:    fastest,
		SlowestResponse:    slowest,
		Consistency:        consistency,
		Accuracy:           float64(correct) / float64(len(state.Answers)),
	}
}

func (s *ScoreService) domainBreakdown(state *models.QuizState) []models.DomainScore {
	type bucket struct {
		total   int
		correct int
	}
	buckets := make(map[models.Domain]*bucket)
	var order []models.Domain

	for i, q := range state.Questions {
		b, ok := buckets[q.Domain]
		if !ok {
			b = &bucket{}
			buckets[q.Domain] = b
			order = append(order, q.Domain)
		}
		b.total++
		if i < len(state.Answers) && state.Answers[i].IsCorrect {
			b.correct++
		}
	}

	scores := make([]models.DomainScore, 0, len(order))
	for _, domain := range order {
		b := buckets[domain]
		scores = append(scores, models.DomainScore{
			Domain:         domain,
			DomainName:     models.DomainNames[domain],
			TotalQuestions: b.total,
			CorrectAnswers: b.correct,
			Percentage:     float64(b.correct) / float64(b.total) * 100,
		})
	}
	return scores
}

func (s *ScoreService) difficultyBreakdown(state *models.QuizState) []models.DifficultyScore {
	type bucket struct {
		total   int
		correct int
	}
	buckets := make(map[models.DifficultyLevel]*bucket)
	var order []models.DifficultyLevel

	for i, q := range state.Questions {
		b, ok := buckets[q.Difficulty]
		if !ok {
			b = &bucket{}
			buckets[q.Difficulty] = b
			order = append(order, q.Difficulty)
		}
		b.total++
		if i < len(state.Answers) && state.Answers[i].IsCorrect {
			b.correct++
		}
	}

	scores := make([]models.DifficultyScore, 0, len(order))
	for _, difficulty := range order {
		b := buckets[difficulty]
		scores = append(scores, models.DifficultyScore{
			Difficulty:     difficulty,
			TotalQuestions: b.total,
			CorrectAnswers: b.correct,
			Percentage:     float64(b.correct) / float64(b.total) * 100,
		})
	}
	return scores
}
