package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiSelect  QuestionType = "multi-select"
	TrueFalse    QuestionType = "true-false"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Domain is one of the five fixed Network+ exam domains ("1.0".."5.0").
type Domain string

const (
	DomainConcepts        Domain = "1.0"
	DomainImplementation  Domain = "2.0"
	DomainOperations      Domain = "3.0"
	DomainSecurity        Domain = "4.0"
	DomainTroubleshooting Domain = "5.0"
)

// DomainNames maps domain codes to their display names.
var DomainNames = map[Domain]string{
	DomainConcepts:        "Networking Concepts",
	DomainImplementation:  "Network Implementation",
	DomainOperations:      "Network Operations",
	DomainSecurity:        "Network Security",
	DomainTroubleshooting: "Network Troubleshooting",
}

// Option is a single answer choice within a question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is an immutable catalog entry. At least one option is correct;
// single-choice and true-false questions have exactly one correct option.
type Question struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	Type       QuestionType    `json:"type" gorm:"not null;size:20" validate:"required,question_type"`
	Domain     Domain          `json:"domain" gorm:"not null;size:4;index" validate:"required,exam_domain"`
	DomainName string          `json:"domain_name" gorm:"size:100"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"not null;size:10;index" validate:"required,difficulty_level"`
	Question   string          `json:"question" gorm:"type:text;not null" validate:"required"`

	Options     datatypes.JSONSlice[Option] `json:"options" gorm:"type:jsonb" validate:"required,min=2"`
	Explanation string                      `json:"explanation" gorm:"type:text"`
	ExamTip     string                      `json:"exam_tip" gorm:"type:text"`
	Tags        datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionIDs returns the set of correct option ids for the question.
func (q *Question) CorrectOptionIDs() map[string]bool {
	correct := make(map[string]bool)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct[opt.ID] = true
		}
	}
	return correct
}
