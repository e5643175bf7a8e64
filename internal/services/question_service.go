package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

// QuestionService manages the question catalog.
type QuestionService interface {
	CreateQuestion(ctx context.Context, question *models.Question) error
	CreateQuestionBatch(ctx context.Context, questions []*models.Question) error
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id string) error
	ListQuestions(ctx context.Context, filters repositories.QuestionFilters) ([]models.Question, int64, error)
	CountByDomain(ctx context.Context) (map[models.Domain]int64, error)
}

type questionService struct {
	repo      repositories.Repository
	ops       *ServiceLogger
	validator *utils.Validator
	content   *utils.QuestionValidator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) QuestionService {
	return &questionService{
		repo: repo,
		ops: NewServiceLogger(logger, LogConfig{
			Service:   "assessment-service",
			Component: "question-catalog",
		}),
		validator: validator,
		content:   utils.NewQuestionValidator(),
	}
}

func (s *questionService) CreateQuestion(ctx context.Context, question *models.Question) (err error) {
	started := time.Now()
	defer func() {
		s.ops.LogOperation(ctx, "create_question", "", question.ID, "question", time.Since(started), err)
	}()

	s.prepare(question)
	if err = s.validator.Validate(question); err != nil {
		return err
	}
	if contentErr := s.content.ValidateQuestion(question); contentErr != nil {
		err = NewValidationError("question", contentErr.Error(), question.ID)
		return err
	}

	return s.repo.Question().Create(ctx, question)
}

// CreateQuestionBatch validates the whole batch up front and writes it in
// one transaction; either every question lands or none do.
func (s *questionService) CreateQuestionBatch(ctx context.Context, questions []*models.Question) error {
	for _, question := range questions {
		s.prepare(question)
	}
	if err := s.content.ValidateQuestionBatch(questions); err != nil {
		return NewValidationError("questions", err.Error(), len(questions))
	}

	return s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		return tx.Question().CreateBatch(ctx, questions)
	})
}

func (s *questionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, question *models.Question) (err error) {
	started := time.Now()
	defer func() {
		s.ops.LogOperation(ctx, "update_question", "", question.ID, "question", time.Since(started), err)
	}()

	s.prepare(question)
	if contentErr := s.content.ValidateQuestion(question); contentErr != nil {
		err = NewValidationError("question", contentErr.Error(), question.ID)
		return err
	}
	return s.repo.Question().Update(ctx, question)
}

func (s *questionService) DeleteQuestion(ctx context.Context, id string) (err error) {
	started := time.Now()
	defer func() {
		s.ops.LogOperation(ctx, "delete_question", "", id, "question", time.Since(started), err)
	}()

	if _, err = s.GetQuestion(ctx, id); err != nil {
		return err
	}
	return s.repo.Question().Delete(ctx, id)
}

func (s *questionService) ListQuestions(ctx context.Context, filters repositories.QuestionFilters) ([]models.Question, int64, error) {
	return s.repo.Question().List(ctx, filters)
}

func (s *questionService) CountByDomain(ctx context.Context) (map[models.Domain]int64, error) {
	return s.repo.Question().CountByDomain(ctx)
}

func (s *questionService) prepare(question *models.Question) {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.DomainName == "" {
		question.DomainName = models.DomainNames[question.Domain]
	}
}
