package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netplus-prep/assessment-service/internal/models"
)

func validQuestion() *models.Question {
	return &models.Question{
		ID:         "q1",
		Type:       models.SingleChoice,
		Domain:     models.DomainConcepts,
		Difficulty: models.DifficultyEasy,
		Question:   "Which layer routes packets?",
		Options: []models.Option{
			{ID: "a", Text: "Layer 2"},
			{ID: "b", Text: "Layer 3", IsCorrect: true},
		},
	}
}

func TestValidateQuestion(t *testing.T) {
	validator := NewQuestionValidator()

	tests := []struct {
		name    string
		mutate  func(*models.Question)
		wantErr string
	}{
		{
			name:   "valid single choice",
			mutate: func(q *models.Question) {},
		},
		{
			name:    "empty question text",
			mutate:  func(q *models.Question) { q.Question = "" },
			wantErr: "question text is required",
		},
		{
			name: "too few options",
			mutate: func(q *models.Question) {
				q.Options = q.Options[:1]
			},
			wantErr: "at least 2 options",
		},
		{
			name: "duplicate option ids",
			mutate: func(q *models.Question) {
				q.Options[1].ID = "a"
			},
			wantErr: "duplicate option ID",
		},
		{
			name: "option without text",
			mutate: func(q *models.Question) {
				q.Options[0].Text = ""
			},
			wantErr: "options must have both ID and text",
		},
		{
			name: "no correct option",
			mutate: func(q *models.Question) {
				q.Options[1].IsCorrect = false
			},
			wantErr: "at least 1 correct option",
		},
		{
			name: "single choice with two correct options",
			mutate: func(q *models.Question) {
				q.Options[0].IsCorrect = true
			},
			wantErr: "exactly 1 correct option",
		},
		{
			name: "true-false with three options",
			mutate: func(q *models.Question) {
				q.Type = models.TrueFalse
				q.Options = append(q.Options, models.Option{ID: "c", Text: "Maybe"})
			},
			wantErr: "exactly 2 options",
		},
		{
			name: "multi select with several correct options",
			mutate: func(q *models.Question) {
				q.Type = models.MultiSelect
				q.Options[0].IsCorrect = true
			},
		},
		{
			name: "unsupported type",
			mutate: func(q *models.Question) {
				q.Type = "essay"
			},
			wantErr: "unsupported question type",
		},
		{
			name: "unknown domain",
			mutate: func(q *models.Question) {
				q.Domain = "9.9"
			},
			wantErr: "unknown exam domain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question := validQuestion()
			tt.mutate(question)

			err := validator.ValidateQuestion(question)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuestionBatch(t *testing.T) {
	validator := NewQuestionValidator()

	assert.ErrorContains(t, validator.ValidateQuestionBatch(nil), "cannot be empty")

	bad := validQuestion()
	bad.Question = ""
	err := validator.ValidateQuestionBatch([]*models.Question{validQuestion(), bad})
	assert.ErrorContains(t, err, "question 2")

	assert.NoError(t, validator.ValidateQuestionBatch([]*models.Question{validQuestion()}))
}
