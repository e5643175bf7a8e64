package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/netplus-prep/assessment-service/internal/repositories"
)

type repository struct {
	db       *gorm.DB
	question repositories.QuestionRepository
	scenario repositories.ScenarioRepository
	attempt  repositories.AttemptRepository
}

// NewRepository wires the PostgreSQL-backed repository set around one gorm
// connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		scenario: NewScenarioPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Scenario() repositories.ScenarioRepository { return r.scenario }
func (r *repository) Attempt() repositories.AttemptRepository   { return r.attempt }

func (r *repository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
