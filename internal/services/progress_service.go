package services

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/netplus-prep/assessment-service/internal/events"
	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

// Mastery thresholds on the 0-100 average-score scale.
const (
	masteryExpertThreshold     = 90
	masteryProficientThreshold = 75
	masteryCompetentThreshold  = 50
)

// Exam-readiness weighting: the average domain score dominates but the
// weakest domain drags the total down so one neglected domain cannot be
// papered over.
const (
	readinessAvgWeight = 0.6
	readinessMinWeight = 0.4
	readinessPassMark  = 75
)

// ProgressService maintains the cross-session progress document: per-LO
// accumulation, domain rollups, badges, and the exam readiness estimate.
type ProgressService interface {
	GetProgress(ctx context.Context, userID string) (*models.ProgressData, error)
	RecordQuizResult(ctx context.Context, userID string, state *models.QuizState, score *models.QuizScore) (*models.ProgressData, error)
	RecordScenarioAttempt(ctx context.Context, userID string, attempt *models.ScenarioAttempt) (*models.ProgressData, error)
	DomainRollups(progress *models.ProgressData) []models.DomainProgress
	ComputeExamReadiness(progress *models.ProgressData) models.ExamReadiness
	BuildStudyPlan(progress *models.ProgressData, weeks int) []models.StudyPlanWeek
}

type progressService struct {
	store     repositories.ProgressStore
	publisher events.EventPublisher
	clock     Clock
	logger    *slog.Logger
}

func NewProgressService(
	store repositories.ProgressStore,
	publisher events.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) ProgressService {
	return &progressService{
		store:     store,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// GetProgress loads the user's progress document, initializing an empty one
// on first access.
func (s *progressService) GetProgress(ctx context.Context, userID string) (*models.ProgressData, error) {
	progress, err := s.store.LoadProgress(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return s.emptyProgress(userID), nil
		}
		return nil, err
	}

	progress.ExamReadiness = s.ComputeExamReadiness(progress)
	return progress, nil
}

// RecordQuizResult folds one completed quiz into the progress document. Each
// exam domain touched by the quiz updates the matching LO record's running
// average and attempt count.
func (s *progressService) RecordQuizResult(ctx context.Context, userID string, state *models.QuizState, score *models.QuizScore) (*models.ProgressData, error) {
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for _, domainScore := range score.DomainBreakdown {
		s.updateLO(progress, string(domainScore.Domain), domainScore.Percentage, score.TimeSpent/60, now)
	}

	progress.TotalTimeSpent += score.TimeSpent / 60
	progress.LastActivity = now
	progress.PerformanceTrends = append(progress.PerformanceTrends, models.PerformanceTrend{
		Date:     now,
		Score:    score.Percentage,
		Activity: "quiz",
	})

	s.awardBadges(ctx, userID, progress, score)
	progress.ExamReadiness = s.ComputeExamReadiness(progress)

	if err := s.store.SaveProgress(ctx, userID, progress); err != nil {
		return nil, err
	}

	s.logger.Info("quiz result recorded",
		"user_id", userID,
		"percentage", score.Percentage,
		"overall_readiness", progress.ExamReadiness.OverallScore)

	return progress, nil
}

// RecordScenarioAttempt folds one finished scenario attempt into the
// progress document and keeps the attempt in the history list.
func (s *progressService) RecordScenarioAttempt(ctx context.Context, userID string, attempt *models.ScenarioAttempt) (*models.ProgressData, error) {
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	percentage := 0.0
	if attempt.MaxScore > 0 {
		percentage = float64(attempt.TotalScore) / float64(attempt.MaxScore) * 100
	}

	minutes := 0
	if attempt.EndTime != nil {
		minutes = int(attempt.EndTime.Sub(attempt.StartTime).Minutes())
	}

	progress.ScenarioAttempts = append(progress.ScenarioAttempts, *attempt)
	progress.TotalTimeSpent += minutes
	progress.LastActivity = now
	progress.PerformanceTrends = append(progress.PerformanceTrends, models.PerformanceTrend{
		Date:     now,
		Score:    percentage,
		Activity: "scenario",
	})

	progress.ExamReadiness = s.ComputeExamReadiness(progress)

	if err := s.store.SaveProgress(ctx, userID, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// DomainRollups aggregates LO records into the five fixed categories. Every
// category appears even when no LO has been practiced in it.
func (s *progressService) DomainRollups(progress *models.ProgressData) []models.DomainProgress {
	type bucket struct {
		completion float64
		score      float64
		count      int
	}
	buckets := make(map[models.DomainCategory]*bucket, len(models.DomainCategories))
	for _, category := range models.DomainCategories {
		buckets[category] = &bucket{}
	}

	for _, lo := range progress.LOProgress {
		b := buckets[models.CategoryForLOCode(lo.LOCode)]
		b.completion += lo.CompletionPercentage
		b.score += lo.AverageScore
		b.count++
	}

	rollups := make([]models.DomainProgress, 0, len(models.DomainCategories))
	for _, category := range models.DomainCategories {
		b := buckets[category]
		rollup := models.DomainProgress{Domain: category, LOCount: b.count}
		if b.count > 0 {
			rollup.Completion = b.completion / float64(b.count)
			rollup.AverageScore = b.score / float64(b.count)
		}
		rollups = append(rollups, rollup)
	}
	return rollups
}

// ComputeExamReadiness blends the average and the weakest domain scores.
func (s *progressService) ComputeExamReadiness(progress *models.ProgressData) models.ExamReadiness {
	rollups := s.DomainRollups(progress)

	domainScores := make(map[string]float64, len(rollups))
	sum := 0.0
	minScore := math.MaxFloat64
	var strengths, weaknesses []string

	for _, rollup := range rollups {
		domainScores[string(rollup.Domain)] = rollup.AverageScore
		sum += rollup.AverageScore
		if rollup.AverageScore < minScore {
			minScore = rollup.AverageScore
		}
		if rollup.AverageScore >= masteryProficientThreshold {
			strengths = append(strengths, string(rollup.Domain))
		} else if rollup.AverageScore < masteryCompetentThreshold {
			weaknesses = append(weaknesses, string(rollup.Domain))
		}
	}

	avg := sum / float64(len(rollups))
	overall := readinessAvgWeight*avg + readinessMinWeight*minScore

	confidence := models.ConfidenceLow
	switch {
	case overall >= 80:
		confidence = models.ConfidenceHigh
	case overall >= 60:
		confidence = models.ConfidenceMedium
	}

	return models.ExamReadiness{
		OverallScore:         overall,
		DomainScores:         domainScores,
		Strengths:            strengths,
		Weaknesses:           weaknesses,
		RecommendedStudyTime: recommendedStudyHours(overall),
		ReadyForExam:         overall >= readinessPassMark,
		Confidence:           confidence,
	}
}

// BuildStudyPlan lays the weakest categories out over the requested number
// of weeks, weakest first.
func (s *progressService) BuildStudyPlan(progress *models.ProgressData, weeks int) []models.StudyPlanWeek {
	if weeks <= 0 {
		return nil
	}

	rollups := s.DomainRollups(progress)
	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].AverageScore < rollups[j].AverageScore
	})

	plan := make([]models.StudyPlanWeek, 0, weeks)
	for week := 0; week < weeks; week++ {
		rollup := rollups[week%len(rollups)]
		priority := models.PriorityLow
		switch {
		case rollup.AverageScore < masteryCompetentThreshold:
			priority = models.PriorityHigh
		case rollup.AverageScore < masteryProficientThreshold:
			priority = models.PriorityMedium
		}

		plan = append(plan, models.StudyPlanWeek{
			WeekNumber: week + 1,
			Focus:      []string{string(rollup.Domain)},
			Activities: []models.StudyActivity{
				{
					Component:     "quiz",
					EstimatedTime: 60,
					Priority:      priority,
				},
				{
					Component:     "scenario",
					EstimatedTime: 45,
					Priority:      priority,
				},
			},
			Goals: []string{"raise " + string(rollup.Domain) + " above " + masteryGoal(rollup.AverageScore)},
		})
	}
	return plan
}

// ===== INTERNALS =====

func (s *progressService) emptyProgress(userID string) *models.ProgressData {
	progress := &models.ProgressData{
		UserID:            userID,
		LOProgress:        []models.LOProgress{},
		Badges:            []models.Badge{},
		PerformanceTrends: []models.PerformanceTrend{},
		ScenarioAttempts:  []models.ScenarioAttempt{},
	}
	progress.ExamReadiness = s.ComputeExamReadiness(progress)
	return progress
}

// updateLO folds one activity score into the LO record's running average,
// creating the record on first contact.
func (s *progressService) updateLO(progress *models.ProgressData, loCode string, score float64, minutes int, now time.Time) {
	for i := range progress.LOProgress {
		lo := &progress.LOProgress[i]
		if lo.LOCode != loCode {
			continue
		}
		total := lo.AverageScore*float64(lo.AttemptsCount) + score
		lo.AttemptsCount++
		lo.AverageScore = total / float64(lo.AttemptsCount)
		lo.TimeSpent += minutes
		lo.MasteryLevel = ClassifyMastery(lo.AverageScore)
		lo.CompletionPercentage = completionFromAttempts(lo.AttemptsCount)
		practiced := now
		lo.LastPracticed = &practiced
		return
	}

	practiced := now
	progress.LOProgress = append(progress.LOProgress, models.LOProgress{
		LOCode:               loCode,
		CompletionPercentage: completionFromAttempts(1),
		MasteryLevel:         ClassifyMastery(score),
		TimeSpent:            minutes,
		AttemptsCount:        1,
		AverageScore:         score,
		LastPracticed:        &practiced,
	})
}

// completionFromAttempts treats five practiced attempts as full coverage of
// an objective.
func completionFromAttempts(attempts int) float64 {
	completion := float64(attempts) / 5 * 100
	if completion > 100 {
		return 100
	}
	return completion
}

// awardBadges grants any newly earned badges and announces them. A badge is
// granted at most once.
func (s *progressService) awardBadges(ctx context.Context, userID string, progress *models.ProgressData, score *models.QuizScore) {
	now := s.clock.Now()
	candidates := []models.Badge{
		{
			ID:          "first-quiz",
			Name:        "First Steps",
			Description: "Complete your first quiz",
			Icon:        "🎯",
			Category:    "milestone",
			Requirement: "complete 1 quiz",
		},
	}
	if score.Percentage == 100 {
		candidates = append(candidates, models.Badge{
			ID:          "perfect-score",
			Name:        "Perfectionist",
			Description: "Score 100% on a quiz",
			Icon:        "🏆",
			Category:    "performance",
			Requirement: "score 100% on any quiz",
		})
	}
	if score.Passed {
		candidates = append(candidates, models.Badge{
			ID:          "exam-pass",
			Name:        "Exam Ready",
			Description: "Reach a passing scaled score",
			Icon:        "✅",
			Category:    "performance",
			Requirement: "score 720 or higher on a quiz",
		})
	}

	earned := make(map[string]bool, len(progress.Badges))
	for _, badge := range progress.Badges {
		earned[badge.ID] = true
	}

	for _, badge := range candidates {
		if earned[badge.ID] {
			continue
		}
		badge.Earned = true
		badge.Progress = 100
		earnedAt := now
		badge.EarnedDate = &earnedAt
		progress.Badges = append(progress.Badges, badge)

		if s.publisher != nil {
			if err := s.publisher.PublishAssessmentEvent(ctx, events.NewBadgeEarnedEvent(userID, badge, now)); err != nil {
				s.logger.Warn("failed to publish badge event", "badge_id", badge.ID, "error", err)
			}
		}
	}
}

func recommendedStudyHours(overall float64) int {
	if overall >= 100 {
		return 0
	}
	return int(math.Ceil((100 - overall) / 2))
}

func masteryGoal(score float64) string {
	switch {
	case score < masteryCompetentThreshold:
		return "competent"
	case score < masteryProficientThreshold:
		return "proficient"
	default:
		return "expert"
	}
}

// ClassifyMastery maps an average score onto the four mastery levels.
func ClassifyMastery(averageScore float64) models.MasteryLevel {
	switch {
	case averageScore >= masteryExpertThreshold:
		return models.MasteryExpert
	case averageScore >= masteryProficientThreshold:
		return models.MasteryProficient
	case averageScore >= masteryCompetentThreshold:
		return models.MasteryCompetent
	default:
		return models.MasteryNovice
	}
}
