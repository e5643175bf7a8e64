package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/netplus-prep/assessment-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Domains      []models.Domain          `json:"domains"`
	Difficulties []models.DifficultyLevel `json:"difficulties"`
	Types        []models.QuestionType    `json:"types"`
	Tags         []string                 `json:"tags"`
	ExcludeIDs   []string                 `json:"exclude_ids"`
	Limit        int                      `json:"limit"`
	Offset       int                      `json:"offset"`
	SortBy       string                   `json:"sort_by"`    // "created_at", "domain", "difficulty"
	SortOrder    string                   `json:"sort_order"` // "asc", "desc"
}

type ScenarioFilters struct {
	Difficulty *models.ScenarioDifficulty `json:"difficulty"`
	LOCode     string                     `json:"lo_code"`
	Limit      int                        `json:"limit"`
	Offset     int                        `json:"offset"`
}

type AttemptFilters struct {
	ScenarioID string               `json:"scenario_id"`
	Status     models.AttemptStatus `json:"status"`
	DateFrom   *time.Time           `json:"date_from"`
	DateTo     *time.Time           `json:"date_to"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters QuestionFilters) ([]models.Question, int64, error)
	CountByDomain(ctx context.Context) (map[models.Domain]int64, error)
}

type ScenarioRepository interface {
	Create(ctx context.Context, scenario *models.IntegratedScenario) error
	GetByID(ctx context.Context, id string) (*models.IntegratedScenario, error)
	List(ctx context.Context, filters ScenarioFilters) ([]models.IntegratedScenario, int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.ScenarioAttempt) error
	Update(ctx context.Context, attempt *models.ScenarioAttempt) error
	GetByID(ctx context.Context, id string) (*models.ScenarioAttempt, error)
	List(ctx context.Context, filters AttemptFilters) ([]models.ScenarioAttempt, int64, error)
}

// Repository is the aggregate access point handed to services.
type Repository interface {
	Question() QuestionRepository
	Scenario() ScenarioRepository
	Attempt() AttemptRepository

	// WithTx runs fn inside a transaction; the Repository passed to fn is
	// bound to that transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// ===== SESSION / PROGRESS STORES =====

// SessionStore persists the live quiz session under a per-user key so an
// interrupted session can be resumed. Writes are best effort; callers log
// failures and continue.
type SessionStore interface {
	SaveQuizProgress(ctx context.Context, userID string, envelope *models.QuizProgressEnvelope) error
	LoadQuizProgress(ctx context.Context, userID string) (*models.QuizProgressEnvelope, error)
	ClearQuizProgress(ctx context.Context, userID string) error
}

// ProgressStore persists the cross-session progress document.
type ProgressStore interface {
	SaveProgress(ctx context.Context, userID string, data *models.ProgressData) error
	LoadProgress(ctx context.Context, userID string) (*models.ProgressData, error)
}

// ErrSessionNotFound is returned by LoadQuizProgress and LoadProgress when no
// document exists for the user.
var ErrSessionNotFound = errors.New("session not found")

// IsNotFoundError reports whether err is a record-missing condition from any
// backing store.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrSessionNotFound)
}
