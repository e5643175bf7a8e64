package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScenarioDifficulty string

const (
	ScenarioIntermediate ScenarioDifficulty = "intermediate"
	ScenarioAdvanced     ScenarioDifficulty = "advanced"
	ScenarioExpert       ScenarioDifficulty = "expert"
)

// AssessmentPoint is a single gradable sub-question within a scenario phase.
// MaxScore is positive and the criteria list is non-empty; scoring divides by
// the criteria count.
type AssessmentPoint struct {
	LOID        string   `json:"lo_id"`
	LOCode      string   `json:"lo_code"`
	Description string   `json:"description"`
	MaxScore    int      `json:"max_score"`
	Criteria    []string `json:"criteria"`
}

type ScenarioPhase struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	AssessmentPoints []AssessmentPoint `json:"assessment_points"`
	Hints            []string          `json:"hints,omitempty"`
	RequiredForNext  bool              `json:"required_for_next"`
}

// MaxScore sums the phase's assessment-point maximums.
func (p *ScenarioPhase) MaxScore() int {
	total := 0
	for _, ap := range p.AssessmentPoints {
		total += ap.MaxScore
	}
	return total
}

// ScenarioContext is the business framing shown before the first phase.
type ScenarioContext struct {
	Company      string   `json:"company"`
	Locations    int      `json:"locations"`
	Users        int      `json:"users"`
	Requirements []string `json:"requirements"`
	Constraints  []string `json:"constraints"`
}

// IntegratedScenario is an immutable catalog entry; TotalPoints equals the
// sum of all phases' assessment-point max scores.
type IntegratedScenario struct {
	ID            string             `json:"id" gorm:"primaryKey;size:36"`
	Title         string             `json:"title" gorm:"not null;size:200" validate:"required"`
	Description   string             `json:"description" gorm:"type:text"`
	Difficulty    ScenarioDifficulty `json:"difficulty" gorm:"not null;size:15;index" validate:"required,oneof=intermediate advanced expert"`
	EstimatedTime int                `json:"estimated_time"` // minutes

	LearningObjectives datatypes.JSONSlice[string]         `json:"learning_objectives" gorm:"type:jsonb"`
	Phases             datatypes.JSONSlice[ScenarioPhase]  `json:"phases" gorm:"type:jsonb" validate:"required,min=1"`
	Context            datatypes.JSONType[ScenarioContext] `json:"context" gorm:"type:jsonb"`
	TotalPoints        int                                 `json:"total_points" gorm:"not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (IntegratedScenario) TableName() string {
	return "scenarios"
}

// ScenarioAnswer is one graded free-text answer for an assessment point.
type ScenarioAnswer struct {
	PhaseID           string `json:"phase_id"`
	AssessmentPointID string `json:"assessment_point_id"`
	Answer            string `json:"answer"`
	Score             int    `json:"score"`
	Feedback          string `json:"feedback"`
}

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in-progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// ScenarioAttempt is the terminal summary of one scenario run. It is emitted
// through the completion publisher and recorded for attempt history.
type ScenarioAttempt struct {
	ID           string                              `json:"id" gorm:"primaryKey;size:36"`
	ScenarioID   string                              `json:"scenario_id" gorm:"not null;size:36;index"`
	UserID       string                              `json:"user_id" gorm:"not null;size:64;index"`
	StartTime    time.Time                           `json:"start_time"`
	EndTime      *time.Time                          `json:"end_time,omitempty"`
	CurrentPhase int                                 `json:"current_phase"`
	Answers      datatypes.JSONSlice[ScenarioAnswer] `json:"answers" gorm:"type:jsonb"`
	TotalScore   int                                 `json:"total_score"`
	MaxScore     int                                 `json:"max_score"`
	Status       AttemptStatus                       `json:"status" gorm:"size:15;index"`
	TimedMode    bool                                `json:"timed_mode"`
}

func (ScenarioAttempt) TableName() string {
	return "scenario_attempts"
}

type PassStatus string

const (
	PassFail            PassStatus = "fail"
	Pass                PassStatus = "pass"
	PassWithDistinction PassStatus = "pass-with-distinction"
)

// PhaseScore is one row of the per-phase score breakdown. MaxScore is the
// phase's own maximum regardless of how many points were answered.
type PhaseScore struct {
	PhaseID  string `json:"phase_id"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
}

// TypeScore is the per-question-type breakdown. The simulator only grades
// free-text points today, so every bucket stays zero; the shape is kept for
// the analysis consumers.
type TypeScore struct {
	Type     string `json:"type"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
}

// ScoreAnalysis is the derived result record for a completed scenario.
type ScoreAnalysis struct {
	TotalScore int          `json:"total_score"`
	MaxScore   int          `json:"max_score"`
	Percentage float64      `json:"percentage"`
	ByPhase    []PhaseScore `json:"by_phase"`
	ByType     []TypeScore  `json:"by_type"`
	PassStatus PassStatus   `json:"pass_status"`
}
