package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.ScenarioAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) Update(ctx context.Context, attempt *models.ScenarioAttempt) error {
	return a.db.WithContext(ctx).Save(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id string) (*models.ScenarioAttempt, error) {
	var attempt models.ScenarioAttempt
	if err := a.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]models.ScenarioAttempt, int64, error) {
	var attempts []models.ScenarioAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.ScenarioAttempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("start_time desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.ScenarioID != "" {
		query = query.Where("scenario_id = ?", filters.ScenarioID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("start_time >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_time <= ?", *filters.DateTo)
	}
	return query
}
