package services

import (
	"errors"
	"fmt"

	apperrors "github.com/netplus-prep/assessment-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Quiz session errors
	ErrNoMatchingQuestions  = errors.New("no questions match the quiz configuration")
	ErrQuizNotActive        = errors.New("quiz session is not active")
	ErrQuizAlreadyCompleted = errors.New("quiz session already completed")
	ErrQuizNotCompleted     = errors.New("quiz session is not completed")
	ErrQuizPaused           = errors.New("quiz session is paused")
	ErrNoIncorrectAnswers   = errors.New("no incorrect answers to retry")
	ErrNoSavedSession       = errors.New("no saved quiz session to resume")
	ErrAnswerAlreadyGiven   = errors.New("current question already answered")
	ErrEmptySelection       = errors.New("answer must select at least one option")

	// Scenario errors
	ErrScenarioNotFound     = errors.New("scenario not found")
	ErrScenarioCompleted    = errors.New("scenario attempt already completed")
	ErrPhaseNotFound        = errors.New("scenario phase not found")
	ErrPhaseLocked          = errors.New("previous phase must be completed first")
	ErrAssessmentPointEmpty = errors.New("assessment point has no criteria")

	// Question catalog errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionInvalidContent = errors.New("invalid question content")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrScenarioNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrPhaseNotFound) ||
		errors.Is(err, ErrNoSavedSession)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrEmptySelection) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrQuizNotActive) ||
		errors.Is(err, ErrQuizAlreadyCompleted) ||
		errors.Is(err, ErrQuizNotCompleted) ||
		errors.Is(err, ErrScenarioCompleted) ||
		errors.Is(err, ErrPhaseLocked) ||
		errors.Is(err, ErrAnswerAlreadyGiven)
}
