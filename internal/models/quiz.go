package models

import "time"

type FeedbackMode string

const (
	FeedbackImmediate   FeedbackMode = "immediate"
	FeedbackReviewAtEnd FeedbackMode = "review-at-end"
)

// QuizPhase is the explicit state of the quiz session state machine.
// Reviewing only occurs in immediate-feedback mode, between an answer
// submission and the advance to the next question.
type QuizPhase string

const (
	PhaseSetup      QuizPhase = "setup"
	PhaseInProgress QuizPhase = "in-progress"
	PhaseReviewing  QuizPhase = "reviewing"
	PhaseCompleted  QuizPhase = "completed"
)

// QuizConfig is mutable only at setup time; the state machine embeds a
// snapshot of it when a quiz starts.
type QuizConfig struct {
	NumberOfQuestions  int               `json:"number_of_questions" validate:"required,min=5,max=50"`
	Domains            []Domain          `json:"domains" validate:"required,min=1,dive,exam_domain"`
	Difficulties       []DifficultyLevel `json:"difficulties" validate:"required,min=1,dive,difficulty_level"`
	FeedbackMode       FeedbackMode      `json:"feedback_mode" validate:"required,feedback_mode"`
	Randomize          bool              `json:"randomize"`
	RetryIncorrectOnly bool              `json:"retry_incorrect_only"`
}

// DefaultQuizConfig mirrors the exam blueprint: 20 questions across all
// domains and difficulties, exam-simulation feedback.
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		NumberOfQuestions: 20,
		Domains: []Domain{
			DomainConcepts, DomainImplementation, DomainOperations,
			DomainSecurity, DomainTroubleshooting,
		},
		Difficulties: []DifficultyLevel{DifficultyEasy, DifficultyMedium, DifficultyHard},
		FeedbackMode: FeedbackReviewAtEnd,
		Randomize:    true,
	}
}

// UserAnswer records one submitted answer. Immutable once created.
type UserAnswer struct {
	QuestionID        string    `json:"question_id"`
	SelectedOptionIDs []string  `json:"selected_option_ids"`
	IsCorrect         bool      `json:"is_correct"`
	TimeSpent         int       `json:"time_spent"` // seconds on this question
	Timestamp         time.Time `json:"timestamp"`
}

// QuizState is the live session aggregate. Exactly one is live per session;
// starting a new quiz or a retry replaces it wholesale.
type QuizState struct {
	QuizID               string       `json:"quiz_id"`
	Phase                QuizPhase    `json:"phase"`
	StartTime            time.Time    `json:"start_time"`
	EndTime              *time.Time   `json:"end_time,omitempty"`
	CurrentQuestionIndex int          `json:"current_question_index"`
	Questions            []Question   `json:"questions"`
	Answers              []UserAnswer `json:"answers"`
	Config               QuizConfig   `json:"config"`
	QuestionStartTime    time.Time    `json:"question_start_time"`
	IsPaused             bool         `json:"is_paused"`
	IsCompleted          bool         `json:"is_completed"`
}

// CurrentQuestion returns the question at the current index, or nil once the
// quiz has completed.
func (s *QuizState) CurrentQuestion() *Question {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentQuestionIndex]
}

// IncorrectQuestions returns the questions whose recorded answer was wrong.
// Questions without a recorded answer are excluded.
func (s *QuizState) IncorrectQuestions() []Question {
	var incorrect []Question
	for i, q := range s.Questions {
		if i < len(s.Answers) && !s.Answers[i].IsCorrect {
			incorrect = append(incorrect, q)
		}
	}
	return incorrect
}

// QuizProgressEnvelope is the JSON document written to the session store on
// every in-progress mutation.
type QuizProgressEnvelope struct {
	QuizState *QuizState `json:"quiz_state"`
}

// DomainScore is one row of the per-domain results breakdown.
type DomainScore struct {
	Domain         Domain  `json:"domain"`
	DomainName     string  `json:"domain_name"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Percentage     float64 `json:"percentage"`
}

// DifficultyScore is one row of the per-difficulty results breakdown.
type DifficultyScore struct {
	Difficulty     DifficultyLevel `json:"difficulty"`
	TotalQuestions int             `json:"total_questions"`
	CorrectAnswers int             `json:"correct_answers"`
	Percentage     float64         `json:"percentage"`
}

// QuizScore is derived from a completed QuizState; it is never stored
// independently of its source state.
type QuizScore struct {
	TotalQuestions      int               `json:"total_questions"`
	CorrectAnswers      int               `json:"correct_answers"`
	IncorrectAnswers    int               `json:"incorrect_answers"`
	SkippedQuestions    int               `json:"skipped_questions"`
	Percentage          float64           `json:"percentage"`
	ScaledScore         int               `json:"scaled_score"`  // 0-900
	PassingScore        int               `json:"passing_score"` // fixed 720
	Passed              bool              `json:"passed"`
	LetterGrade         string            `json:"letter_grade"`
	TimeSpent           int               `json:"time_spent"` // seconds
	DomainBreakdown     []DomainScore     `json:"domain_breakdown"`
	DifficultyBreakdown []DifficultyScore `json:"difficulty_breakdown"`
}
