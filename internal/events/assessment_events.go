package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/netplus-prep/assessment-service/internal/models"
)

// EventType represents different types of assessment events
type EventType string

const (
	// Quiz events
	EventQuizStarted   EventType = "quiz.started"
	EventQuizCompleted EventType = "quiz.completed"

	// Scenario events
	EventScenarioStarted   EventType = "scenario.started"
	EventScenarioCompleted EventType = "scenario.completed"

	// Progress events
	EventBadgeEarned EventType = "progress.badge_earned"
)

// AssessmentEvent is the base event structure for all assessment events
type AssessmentEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Quiz event payloads

type QuizStartedEvent struct {
	QuizID        string    `json:"quiz_id"`
	UserID        string    `json:"user_id"`
	QuestionCount int       `json:"question_count"`
	FeedbackMode  string    `json:"feedback_mode"`
	StartedAt     time.Time `json:"started_at"`
}

type QuizCompletedEvent struct {
	QuizID         string    `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	CompletedAt    time.Time `json:"completed_at"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Percentage     float64   `json:"percentage"`
	ScaledScore    int       `json:"scaled_score"`
	Passed         bool      `json:"passed"`
	TimeSpent      int       `json:"time_spent"` // seconds
}

// Scenario event payloads

type ScenarioStartedEvent struct {
	AttemptID     string    `json:"attempt_id"`
	ScenarioID    string    `json:"scenario_id"`
	ScenarioTitle string    `json:"scenario_title"`
	UserID        string    `json:"user_id"`
	StartedAt     time.Time `json:"started_at"`
	TimeLimit     *int      `json:"time_limit,omitempty"` // minutes
}

type ScenarioCompletedEvent struct {
	AttemptID     string            `json:"attempt_id"`
	ScenarioID    string            `json:"scenario_id"`
	ScenarioTitle string            `json:"scenario_title"`
	UserID        string            `json:"user_id"`
	CompletedAt   time.Time         `json:"completed_at"`
	TotalScore    int               `json:"total_score"`
	MaxScore      int               `json:"max_score"`
	Percentage    float64           `json:"percentage"`
	PassStatus    models.PassStatus `json:"pass_status"`
}

// Progress event payload

type BadgeEarnedEvent struct {
	UserID    string    `json:"user_id"`
	BadgeID   string    `json:"badge_id"`
	BadgeName string    `json:"badge_name"`
	EarnedAt  time.Time `json:"earned_at"`
}

// Event factory functions

func NewQuizCompletedEvent(userID string, score *models.QuizScore, quizID string, completedAt time.Time) *AssessmentEvent {
	return &AssessmentEvent{
		ID:        GenerateEventID(),
		Type:      EventQuizCompleted,
		Timestamp: time.Now(),
		Source:    "assessment-service",
		Version:   "1.0",
		Data: QuizCompletedEvent{
			QuizID:         quizID,
			UserID:         userID,
			CompletedAt:    completedAt,
			TotalQuestions: score.TotalQuestions,
			CorrectAnswers: score.CorrectAnswers,
			Percentage:     score.Percentage,
			ScaledScore:    score.ScaledScore,
			Passed:         score.Passed,
			TimeSpent:      score.TimeSpent,
		},
	}
}

func NewScenarioStartedEvent(attemptID, scenarioID, title, userID string, startedAt time.Time, timeLimit *int) *AssessmentEvent {
	return &AssessmentEvent{
		ID:        GenerateEventID(),
		Type:      EventScenarioStarted,
		Timestamp: time.Now(),
		Source:    "assessment-service",
		Version:   "1.0",
		Data: ScenarioStartedEvent{
			AttemptID:     attemptID,
			ScenarioID:    scenarioID,
			ScenarioTitle: title,
			UserID:        userID,
			StartedAt:     startedAt,
			TimeLimit:     timeLimit,
		},
	}
}

func NewScenarioCompletedEvent(attemptID, scenarioID, title, userID string, completedAt time.Time, analysis *models.ScoreAnalysis) *AssessmentEvent {
	return &AssessmentEvent{
		ID:        GenerateEventID(),
		Type:      EventScenarioCompleted,
		Timestamp: time.Now(),
		Source:    "assessment-service",
		Version:   "1.0",
		Data: ScenarioCompletedEvent{
			AttemptID:     attemptID,
			ScenarioID:    scenarioID,
			ScenarioTitle: title,
			UserID:        userID,
			CompletedAt:   completedAt,
			TotalScore:    analysis.TotalScore,
			MaxScore:      analysis.MaxScore,
			Percentage:    analysis.Percentage,
			PassStatus:    analysis.PassStatus,
		},
	}
}

func NewBadgeEarnedEvent(userID string, badge models.Badge, earnedAt time.Time) *AssessmentEvent {
	return &AssessmentEvent{
		ID:        GenerateEventID(),
		Type:      EventBadgeEarned,
		Timestamp: time.Now(),
		Source:    "assessment-service",
		Version:   "1.0",
		Data: BadgeEarnedEvent{
			UserID:    userID,
			BadgeID:   badge.ID,
			BadgeName: badge.Name,
			EarnedAt:  earnedAt,
		},
	}
}

// GenerateEventID returns a unique event identifier
func GenerateEventID() string {
	return uuid.NewString()
}
