package utils

import (
	"fmt"

	"github.com/netplus-prep/assessment-service/internal/models"
)

// QuestionValidator handles content validation for catalog questions.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object against the
// catalog invariants.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Question == "" {
		return fmt.Errorf("question text is required")
	}

	if len(question.Options) < 2 {
		return fmt.Errorf("questions must have at least 2 options")
	}
	if len(question.Options) > 10 {
		return fmt.Errorf("questions cannot have more than 10 options")
	}

	seen := make(map[string]bool)
	correctCount := 0
	for _, opt := range question.Options {
		if opt.ID == "" || opt.Text == "" {
			return fmt.Errorf("options must have both ID and text")
		}
		if seen[opt.ID] {
			return fmt.Errorf("duplicate option ID: %s", opt.ID)
		}
		seen[opt.ID] = true
		if opt.IsCorrect {
			correctCount++
		}
	}

	if correctCount == 0 {
		return fmt.Errorf("questions must have at least 1 correct option")
	}

	switch question.Type {
	case models.SingleChoice, models.TrueFalse:
		if correctCount != 1 {
			return fmt.Errorf("%s questions must have exactly 1 correct option, got %d", question.Type, correctCount)
		}
		if question.Type == models.TrueFalse && len(question.Options) != 2 {
			return fmt.Errorf("true-false questions must have exactly 2 options")
		}
	case models.MultiSelect:
		// Any number of correct options >= 1 is valid.
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}

	if _, ok := models.DomainNames[question.Domain]; !ok {
		return fmt.Errorf("unknown exam domain: %s", question.Domain)
	}

	return nil
}

// ValidateQuestionBatch validates a batch of questions, reporting the first
// failing row.
func (v *QuestionValidator) ValidateQuestionBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}
