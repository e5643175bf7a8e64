package memory

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

// QuestionRepository is an in-memory question catalog for the CLI demo mode
// and for tests. It honors the same filter semantics as the PostgreSQL
// implementation.
type QuestionRepository struct {
	mu        sync.RWMutex
	questions map[string]models.Question
	order     []string
}

func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{questions: make(map[string]models.Question)}
}

var _ repositories.QuestionRepository = (*QuestionRepository)(nil)

func (r *QuestionRepository) Create(_ context.Context, question *models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.questions[question.ID]; !exists {
		r.order = append(r.order, question.ID)
	}
	r.questions[question.ID] = *question
	return nil
}

func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	for _, q := range questions {
		if err := r.Create(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *QuestionRepository) GetByID(_ context.Context, id string) (*models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	question, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &question, nil
}

func (r *QuestionRepository) Update(_ context.Context, question *models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.questions[question.ID] = *question
	return nil
}

func (r *QuestionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.questions, id)
	for i, qid := range r.order {
		if qid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *QuestionRepository) List(_ context.Context, filters repositories.QuestionFilters) ([]models.Question, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Question
	for _, id := range r.order {
		question := r.questions[id]
		if matchesFilters(&question, filters) {
			matched = append(matched, question)
		}
	}
	total := int64(len(matched))

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (r *QuestionRepository) CountByDomain(_ context.Context) (map[models.Domain]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.Domain]int64)
	for _, question := range r.questions {
		counts[question.Domain]++
	}
	return counts, nil
}

func matchesFilters(q *models.Question, filters repositories.QuestionFilters) bool {
	if len(filters.Domains) > 0 && !containsDomain(filters.Domains, q.Domain) {
		return false
	}
	if len(filters.Difficulties) > 0 && !containsDifficulty(filters.Difficulties, q.Difficulty) {
		return false
	}
	if len(filters.Types) > 0 && !containsType(filters.Types, q.Type) {
		return false
	}
	for _, excluded := range filters.ExcludeIDs {
		if q.ID == excluded {
			return false
		}
	}
	for _, tag := range filters.Tags {
		if !containsString(q.Tags, tag) {
			return false
		}
	}
	return true
}

func containsDomain(domains []models.Domain, d models.Domain) bool {
	for _, candidate := range domains {
		if candidate == d {
			return true
		}
	}
	return false
}

func containsDifficulty(levels []models.DifficultyLevel, d models.DifficultyLevel) bool {
	for _, candidate := range levels {
		if candidate == d {
			return true
		}
	}
	return false
}

func containsType(types []models.QuestionType, t models.QuestionType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
