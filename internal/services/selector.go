package services

import (
	"math/rand"

	"github.com/netplus-prep/assessment-service/internal/models"
)

// QuizSelector assembles the question list for a quiz session: filter the
// pool by the config's domains and difficulties, optionally shuffle, then
// take up to the configured count. Selection never mutates the input pool.
type QuizSelector struct {
	rng *rand.Rand
}

// NewQuizSelector builds a selector around the given random source. Tests
// pass a seeded source for reproducible ordering.
func NewQuizSelector(rng *rand.Rand) *QuizSelector {
	return &QuizSelector{rng: rng}
}

// Select returns the questions for one quiz run. The result is shorter than
// config.NumberOfQuestions when the filtered pool is smaller; an empty
// filtered pool is ErrNoMatchingQuestions.
func (s *QuizSelector) Select(pool []models.Question, config models.QuizConfig) ([]models.Question, error) {
	filtered := s.filter(pool, config)
	if len(filtered) == 0 {
		return nil, ErrNoMatchingQuestions
	}

	if config.Randomize {
		s.rng.Shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})
	}

	count := config.NumberOfQuestions
	if count > len(filtered) {
		count = len(filtered)
	}
	return filtered[:count], nil
}

func (s *QuizSelector) filter(pool []models.Question, config models.QuizConfig) []models.Question {
	domains := make(map[models.Domain]bool, len(config.Domains))
	for _, d := range config.Domains {
		domains[d] = true
	}
	difficulties := make(map[models.DifficultyLevel]bool, len(config.Difficulties))
	for _, d := range config.Difficulties {
		difficulties[d] = true
	}

	// An empty filter set means no restriction on that axis.
	filtered := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if len(domains) > 0 && !domains[q.Domain] {
			continue
		}
		if len(difficulties) > 0 && !difficulties[q.Difficulty] {
			continue
		}
		filtered = append(filtered, q)
	}
	return filtered
}
