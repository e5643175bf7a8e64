package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

type ScenarioPostgreSQL struct {
	db *gorm.DB
}

func NewScenarioPostgreSQL(db *gorm.DB) repositories.ScenarioRepository {
	return &ScenarioPostgreSQL{db: db}
}

func (s ScenarioPostgreSQL) Create(ctx context.Context, scenario *models.IntegratedScenario) error {
	return s.db.WithContext(ctx).Create(scenario).Error
}

func (s ScenarioPostgreSQL) GetByID(ctx context.Context, id string) (*models.IntegratedScenario, error) {
	var scenario models.IntegratedScenario
	if err := s.db.WithContext(ctx).First(&scenario, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s ScenarioPostgreSQL) List(ctx context.Context, filters repositories.ScenarioFilters) ([]models.IntegratedScenario, int64, error) {
	var scenarios []models.IntegratedScenario
	var total int64

	query := s.db.WithContext(ctx).Model(&models.IntegratedScenario{})
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.LOCode != "" {
		query = query.Where("learning_objectives @> ?", `["`+filters.LOCode+`"]`)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at asc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&scenarios).Error; err != nil {
		return nil, 0, err
	}

	return scenarios, total, nil
}
