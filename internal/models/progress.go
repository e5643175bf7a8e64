package models

import "time"

type MasteryLevel string

const (
	MasteryNovice     MasteryLevel = "novice"
	MasteryCompetent  MasteryLevel = "competent"
	MasteryProficient MasteryLevel = "proficient"
	MasteryExpert     MasteryLevel = "expert"
)

// DomainCategory is one of the five fixed rollup categories learning
// objectives are tagged with.
type DomainCategory string

const (
	CategoryFundamentals    DomainCategory = "fundamentals"
	CategoryInfrastructure  DomainCategory = "infrastructure"
	CategoryOperations      DomainCategory = "operations"
	CategorySecurity        DomainCategory = "security"
	CategoryTroubleshooting DomainCategory = "troubleshooting"
)

// DomainCategories lists all rollup categories in display order. Empty
// categories still appear in rollups with zeroed metrics.
var DomainCategories = []DomainCategory{
	CategoryFundamentals,
	CategoryInfrastructure,
	CategoryOperations,
	CategorySecurity,
	CategoryTroubleshooting,
}

var categoryByExamDomain = map[Domain]DomainCategory{
	DomainConcepts:        CategoryFundamentals,
	DomainImplementation:  CategoryInfrastructure,
	DomainOperations:      CategoryOperations,
	DomainSecurity:        CategorySecurity,
	DomainTroubleshooting: CategoryTroubleshooting,
}

// CategoryForDomain maps an exam domain code to its rollup category.
func CategoryForDomain(d Domain) DomainCategory {
	return categoryByExamDomain[d]
}

// CategoryForLOCode maps a learning-objective code like "1.4" to its rollup
// category via the leading domain digit. Unknown codes land in fundamentals.
func CategoryForLOCode(code string) DomainCategory {
	if len(code) > 0 {
		switch code[0] {
		case '1':
			return CategoryFundamentals
		case '2':
			return CategoryInfrastructure
		case '3':
			return CategoryOperations
		case '4':
			return CategorySecurity
		case '5':
			return CategoryTroubleshooting
		}
	}
	return CategoryFundamentals
}

// LearningObjective is a fine-grained syllabus topic (e.g. "1.4").
type LearningObjective struct {
	ID       string         `json:"id"`
	Code     string         `json:"code"`
	Title    string         `json:"title"`
	Category DomainCategory `json:"category"`
}

// LOProgress is the accumulated progress record for one learning objective.
type LOProgress struct {
	LOCode               string       `json:"lo_code"`
	CompletionPercentage float64      `json:"completion_percentage"`
	MasteryLevel         MasteryLevel `json:"mastery_level"`
	TimeSpent            int          `json:"time_spent"` // minutes
	AttemptsCount        int          `json:"attempts_count"`
	AverageScore         float64      `json:"average_score"`
	LastPracticed        *time.Time   `json:"last_practiced,omitempty"`
	CommonMistakes       []string     `json:"common_mistakes"`
	SuggestedActivities  []string     `json:"suggested_activities"`
}

// DomainProgress is the rollup of LOProgress records for one category.
type DomainProgress struct {
	Domain       DomainCategory `json:"domain"`
	Completion   float64        `json:"completion"`
	AverageScore float64        `json:"average_score"`
	LOCount      int            `json:"lo_count"`
}

type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Category    string     `json:"category"`
	Requirement string     `json:"requirement"`
	Earned      bool       `json:"earned"`
	EarnedDate  *time.Time `json:"earned_date,omitempty"`
	Progress    float64    `json:"progress"` // 0-100
}

type PerformanceTrend struct {
	Date     time.Time `json:"date"`
	LOCode   string    `json:"lo_code"`
	Score    float64   `json:"score"`
	Activity string    `json:"activity"`
}

type ActivityPriority string

const (
	PriorityHigh   ActivityPriority = "high"
	PriorityMedium ActivityPriority = "medium"
	PriorityLow    ActivityPriority = "low"
)

type StudyActivity struct {
	LOCode        string           `json:"lo_code"`
	Component     string           `json:"component"`
	EstimatedTime int              `json:"estimated_time"` // minutes
	Priority      ActivityPriority `json:"priority"`
}

type StudyPlanWeek struct {
	WeekNumber int             `json:"week_number"`
	Focus      []string        `json:"focus"`
	Activities []StudyActivity `json:"activities"`
	Goals      []string        `json:"goals"`
}

type ConfidenceTier string

const (
	ConfidenceLow    ConfidenceTier = "low"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceHigh   ConfidenceTier = "high"
)

type ExamReadiness struct {
	OverallScore         float64            `json:"overall_score"` // 0-100
	DomainScores         map[string]float64 `json:"domain_scores"`
	Strengths            []string           `json:"strengths"`
	Weaknesses           []string           `json:"weaknesses"`
	RecommendedStudyTime int                `json:"recommended_study_time"` // hours
	ReadyForExam         bool               `json:"ready_for_exam"`
	Confidence           ConfidenceTier     `json:"confidence"`
}

// ProgressData is the cross-session progress contract consumed by the
// dashboard. The service populates the derived numeric fields; the textual
// study guidance is presentation-layer material.
type ProgressData struct {
	UserID            string             `json:"user_id"`
	LOProgress        []LOProgress       `json:"lo_progress"`
	Badges            []Badge            `json:"badges"`
	PerformanceTrends []PerformanceTrend `json:"performance_trends"`
	ScenarioAttempts  []ScenarioAttempt  `json:"scenario_attempts"`
	TotalTimeSpent    int                `json:"total_time_spent"` // minutes
	StudyStreak       int                `json:"study_streak"`     // days
	LastActivity      time.Time          `json:"last_activity"`
	ExamReadiness     ExamReadiness      `json:"exam_readiness"`
	StudyPlan         []StudyPlanWeek    `json:"study_plan"`
}

// PerformanceMetrics summarizes answer timing and accuracy for one quiz.
type PerformanceMetrics struct {
	AvgTimePerQuestion float64 `json:"avg_time_per_question"` // seconds
	FastestResponse    int     `json:"fastest_response"`
	SlowestResponse    int     `json:"slowest_response"`
	Consistency        float64 `json:"consistency"` // 0-1
	Accuracy           float64 `json:"accuracy"`    // 0-1
}
