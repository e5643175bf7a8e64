package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).CreateInBatches(questions, 100).Error
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Save(question).Error
}

func (q QuestionPostgreSQL) Delete(ctx context.Context, id string) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, "id = ?", id).Error
}

func (q QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]models.Question, int64, error) {
	var questions []models.Question
	var total int64

	// apply filter first
	query := q.db.WithContext(ctx).Model(&models.Question{})
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = q.applyPaginationAndSort(query, filters)

	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (q QuestionPostgreSQL) CountByDomain(ctx context.Context) (map[models.Domain]int64, error) {
	type row struct {
		Domain models.Domain
		Count  int64
	}
	var rows []row
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("domain, count(*) as count").
		Group("domain").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.Domain]int64, len(rows))
	for _, r := range rows {
		counts[r.Domain] = r.Count
	}
	return counts, nil
}

func (q QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if len(filters.Domains) > 0 {
		query = query.Where("domain IN ?", filters.Domains)
	}
	if len(filters.Difficulties) > 0 {
		query = query.Where("difficulty IN ?", filters.Difficulties)
	}
	if len(filters.Types) > 0 {
		query = query.Where("type IN ?", filters.Types)
	}
	if len(filters.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", filters.ExcludeIDs)
	}
	for _, tag := range filters.Tags {
		query = query.Where("tags @> ?", `["`+tag+`"]`)
	}
	return query
}

func (q QuestionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "domain", "difficulty", "created_at":
	default:
		sortBy = "created_at"
	}
	order := "asc"
	if filters.SortOrder == "desc" {
		order = "desc"
	}
	query = query.Order(sortBy + " " + order)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
