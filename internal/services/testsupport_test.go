package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/repositories/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock lets tests drive elapsed time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeRepo is an in-memory Repository aggregate backed by the memory question
// repository plus simple maps for scenarios and attempts.
type fakeRepo struct {
	questions *memory.QuestionRepository

	mu        sync.Mutex
	scenarios map[string]models.IntegratedScenario
	attempts  map[string]models.ScenarioAttempt
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		questions: memory.NewQuestionRepository(),
		scenarios: make(map[string]models.IntegratedScenario),
		attempts:  make(map[string]models.ScenarioAttempt),
	}
}

var _ repositories.Repository = (*fakeRepo)(nil)

func (r *fakeRepo) Question() repositories.QuestionRepository { return r.questions }
func (r *fakeRepo) Scenario() repositories.ScenarioRepository { return &fakeScenarioRepo{r} }
func (r *fakeRepo) Attempt() repositories.AttemptRepository   { return &fakeAttemptRepo{r} }

func (r *fakeRepo) WithTx(_ context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

type fakeScenarioRepo struct{ r *fakeRepo }

func (s *fakeScenarioRepo) Create(_ context.Context, scenario *models.IntegratedScenario) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.scenarios[scenario.ID] = *scenario
	return nil
}

func (s *fakeScenarioRepo) GetByID(_ context.Context, id string) (*models.IntegratedScenario, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	scenario, ok := s.r.scenarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &scenario, nil
}

func (s *fakeScenarioRepo) List(_ context.Context, filters repositories.ScenarioFilters) ([]models.IntegratedScenario, int64, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var out []models.IntegratedScenario
	for _, scenario := range s.r.scenarios {
		if filters.Difficulty != nil && scenario.Difficulty != *filters.Difficulty {
			continue
		}
		out = append(out, scenario)
	}
	return out, int64(len(out)), nil
}

type fakeAttemptRepo struct{ r *fakeRepo }

func (a *fakeAttemptRepo) Create(_ context.Context, attempt *models.ScenarioAttempt) error {
	a.r.mu.Lock()
	defer a.r.mu.Unlock()
	a.r.attempts[attempt.ID] = *attempt
	return nil
}

func (a *fakeAttemptRepo) Update(_ context.Context, attempt *models.ScenarioAttempt) error {
	a.r.mu.Lock()
	defer a.r.mu.Unlock()
	if _, ok := a.r.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	a.r.attempts[attempt.ID] = *attempt
	return nil
}

func (a *fakeAttemptRepo) GetByID(_ context.Context, id string) (*models.ScenarioAttempt, error) {
	a.r.mu.Lock()
	defer a.r.mu.Unlock()
	attempt, ok := a.r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &attempt, nil
}

func (a *fakeAttemptRepo) List(_ context.Context, filters repositories.AttemptFilters) ([]models.ScenarioAttempt, int64, error) {
	a.r.mu.Lock()
	defer a.r.mu.Unlock()
	var out []models.ScenarioAttempt
	for _, attempt := range a.r.attempts {
		if filters.ScenarioID != "" && attempt.ScenarioID != filters.ScenarioID {
			continue
		}
		if filters.Status != "" && attempt.Status != filters.Status {
			continue
		}
		out = append(out, attempt)
	}
	return out, int64(len(out)), nil
}

// ===== FIXTURES =====

func singleChoiceQuestion(id string, domain models.Domain, difficulty models.DifficultyLevel) models.Question {
	return models.Question{
		ID:         id,
		Type:       models.SingleChoice,
		Domain:     domain,
		DomainName: models.DomainNames[domain],
		Difficulty: difficulty,
		Question:   "question " + id,
		Options: []models.Option{
			{ID: "a", Text: "right", IsCorrect: true},
			{ID: "b", Text: "wrong"},
		},
	}
}

func multiSelectQuestion(id string, domain models.Domain, difficulty models.DifficultyLevel) models.Question {
	return models.Question{
		ID:         id,
		Type:       models.MultiSelect,
		Domain:     domain,
		DomainName: models.DomainNames[domain],
		Difficulty: difficulty,
		Question:   "question " + id,
		Options: []models.Option{
			{ID: "a", Text: "right one", IsCorrect: true},
			{ID: "b", Text: "wrong"},
			{ID: "c", Text: "right two", IsCorrect: true},
			{ID: "d", Text: "wrong"},
		},
	}
}
