package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/netplus-prep/assessment-service/internal/cache"
	"github.com/netplus-prep/assessment-service/internal/events"
	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

const scenarioCacheTTL = time.Hour

// ScenarioService runs the scenario simulator: phase-ordered free-text
// assessment with keyword-overlap grading. Attempts are persisted on every
// phase submission so partial work survives a restart.
type ScenarioService interface {
	ListScenarios(ctx context.Context, filters repositories.ScenarioFilters) ([]models.IntegratedScenario, int64, error)
	GetScenario(ctx context.Context, scenarioID string) (*models.IntegratedScenario, error)
	StartScenario(ctx context.Context, userID, scenarioID string, timed bool) (*models.ScenarioAttempt, error)
	SubmitPhase(ctx context.Context, userID, attemptID, phaseID string, answers map[string]string) ([]models.ScenarioAnswer, error)
	CompleteScenario(ctx context.Context, userID, attemptID string) (*models.ScoreAnalysis, error)
	AbandonScenario(ctx context.Context, userID, attemptID string) error
	GetScoreAnalysis(ctx context.Context, attemptID string) (*models.ScoreAnalysis, error)
	GetAttempt(ctx context.Context, attemptID string) (*models.ScenarioAttempt, error)
	ListAttempts(ctx context.Context, filters repositories.AttemptFilters) ([]models.ScenarioAttempt, int64, error)
}

type scenarioService struct {
	repo      repositories.Repository
	engine    *ScoringEngine
	cache     cache.CacheService
	publisher events.EventPublisher
	clock     Clock
	logger    *slog.Logger
}

func NewScenarioService(
	repo repositories.Repository,
	engine *ScoringEngine,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) ScenarioService {
	return &scenarioService{
		repo:      repo,
		engine:    engine,
		cache:     cacheService,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

func (s *scenarioService) ListScenarios(ctx context.Context, filters repositories.ScenarioFilters) ([]models.IntegratedScenario, int64, error) {
	return s.repo.Scenario().List(ctx, filters)
}

// GetScenario reads through the cache; scenarios are immutable catalog
// entries so a stale read is harmless.
func (s *scenarioService) GetScenario(ctx context.Context, scenarioID string) (*models.IntegratedScenario, error) {
	if s.cache != nil {
		var cached models.IntegratedScenario
		if err := s.cache.Get(ctx, scenarioCacheKey(scenarioID), &cached); err == nil {
			return &cached, nil
		}
	}

	scenario, err := s.repo.Scenario().GetByID(ctx, scenarioID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrScenarioNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, scenarioCacheKey(scenarioID), scenario, scenarioCacheTTL); err != nil {
			s.logger.Warn("failed to cache scenario", "scenario_id", scenarioID, "error", err)
		}
	}
	return scenario, nil
}

func (s *scenarioService) StartScenario(ctx context.Context, userID, scenarioID string, timed bool) (*models.ScenarioAttempt, error) {
	scenario, err := s.GetScenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	attempt := &models.ScenarioAttempt{
		ID:         uuid.NewString(),
		ScenarioID: scenario.ID,
		UserID:     userID,
		StartTime:  now,
		Answers:    []models.ScenarioAnswer{},
		MaxScore:   scenario.TotalPoints,
		Status:     models.AttemptInProgress,
		TimedMode:  timed,
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, err
	}

	var timeLimit *int
	if timed {
		limit := scenario.EstimatedTime
		timeLimit = &limit
	}
	s.publish(ctx, events.NewScenarioStartedEvent(attempt.ID, scenario.ID, scenario.Title, userID, now, timeLimit))

	s.logger.Info("scenario started",
		"user_id", userID,
		"scenario_id", scenario.ID,
		"attempt_id", attempt.ID,
		"timed", timed)

	return attempt, nil
}

// SubmitPhase grades every answered assessment point of one phase.
// Re-submitting a phase replaces its earlier answers; scores are recomputed,
// never accumulated. Answers keyed by unknown assessment point ids are
// ignored.
func (s *scenarioService) SubmitPhase(ctx context.Context, userID, attemptID, phaseID string, answers map[string]string) ([]models.ScenarioAnswer, error) {
	attempt, scenario, err := s.activeAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	if expired, err := s.enforceTimeLimit(ctx, attempt, scenario); err != nil {
		return nil, err
	} else if expired {
		return nil, ErrScenarioCompleted
	}

	phaseIndex := -1
	for i, phase := range scenario.Phases {
		if phase.ID == phaseID {
			phaseIndex = i
			break
		}
	}
	if phaseIndex == -1 {
		return nil, ErrPhaseNotFound
	}

	submitted := submittedPhases(attempt)
	for i := 0; i < phaseIndex; i++ {
		if scenario.Phases[i].RequiredForNext && !submitted[scenario.Phases[i].ID] {
			return nil, ErrPhaseLocked
		}
	}

	phase := scenario.Phases[phaseIndex]
	var graded []models.ScenarioAnswer
	for _, point := range phase.AssessmentPoints {
		answer, ok := answers[point.LOID]
		if !ok {
			continue
		}
		result, err := s.engine.ScoreAnswer(answer, point)
		if err != nil {
			return nil, err
		}
		graded = append(graded, models.ScenarioAnswer{
			PhaseID:           phase.ID,
			AssessmentPointID: point.LOID,
			Answer:            answer,
			Score:             result.Score,
			Feedback:          result.Feedback,
		})
	}

	kept := attempt.Answers[:0]
	for _, answer := range attempt.Answers {
		if answer.PhaseID != phase.ID {
			kept = append(kept, answer)
		}
	}
	attempt.Answers = append(kept, graded...)
	if phaseIndex >= attempt.CurrentPhase {
		attempt.CurrentPhase = phaseIndex + 1
	}
	attempt.TotalScore = totalScore(attempt)

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, err
	}

	s.logger.Info("phase submitted",
		"attempt_id", attempt.ID,
		"phase_id", phase.ID,
		"graded_points", len(graded),
		"total_score", attempt.TotalScore)

	return graded, nil
}

func (s *scenarioService) CompleteScenario(ctx context.Context, userID, attemptID string) (*models.ScoreAnalysis, error) {
	attempt, scenario, err := s.activeAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	return s.finishAttempt(ctx, attempt, scenario)
}

func (s *scenarioService) AbandonScenario(ctx context.Context, userID, attemptID string) error {
	attempt, _, err := s.activeAttempt(ctx, userID, attemptID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	attempt.Status = models.AttemptAbandoned
	attempt.EndTime = &now
	return s.repo.Attempt().Update(ctx, attempt)
}

func (s *scenarioService) GetScoreAnalysis(ctx context.Context, attemptID string) (*models.ScoreAnalysis, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	scenario, err := s.GetScenario(ctx, attempt.ScenarioID)
	if err != nil {
		return nil, err
	}
	return s.analyze(attempt, scenario), nil
}

func (s *scenarioService) GetAttempt(ctx context.Context, attemptID string) (*models.ScenarioAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return attempt, nil
}

func (s *scenarioService) ListAttempts(ctx context.Context, filters repositories.AttemptFilters) ([]models.ScenarioAttempt, int64, error) {
	return s.repo.Attempt().List(ctx, filters)
}

// ===== INTERNALS =====

func (s *scenarioService) activeAttempt(ctx context.Context, userID, attemptID string) (*models.ScenarioAttempt, *models.IntegratedScenario, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if attempt.UserID != userID {
		return nil, nil, ErrNotFound
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, nil, ErrScenarioCompleted
	}

	scenario, err := s.GetScenario(ctx, attempt.ScenarioID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, scenario, nil
}

// enforceTimeLimit force-completes a timed attempt whose window has elapsed.
// Returns true when the attempt was closed here.
func (s *scenarioService) enforceTimeLimit(ctx context.Context, attempt *models.ScenarioAttempt, scenario *models.IntegratedScenario) (bool, error) {
	if !attempt.TimedMode || scenario.EstimatedTime <= 0 {
		return false, nil
	}
	deadline := attempt.StartTime.Add(time.Duration(scenario.EstimatedTime) * time.Minute)
	if s.clock.Now().Before(deadline) {
		return false, nil
	}

	if _, err := s.finishAttempt(ctx, attempt, scenario); err != nil {
		return false, err
	}
	s.logger.Info("timed scenario force-completed",
		"attempt_id", attempt.ID,
		"scenario_id", scenario.ID)
	return true, nil
}

func (s *scenarioService) finishAttempt(ctx context.Context, attempt *models.ScenarioAttempt, scenario *models.IntegratedScenario) (*models.ScoreAnalysis, error) {
	now := s.clock.Now()
	attempt.Status = models.AttemptCompleted
	attempt.EndTime = &now
	attempt.TotalScore = totalScore(attempt)
	attempt.MaxScore = scenario.TotalPoints

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, err
	}

	analysis := s.analyze(attempt, scenario)
	s.publish(ctx, events.NewScenarioCompletedEvent(attempt.ID, scenario.ID, scenario.Title, attempt.UserID, now, analysis))

	s.logger.Info("scenario completed",
		"attempt_id", attempt.ID,
		"scenario_id", scenario.ID,
		"total_score", analysis.TotalScore,
		"max_score", analysis.MaxScore,
		"pass_status", analysis.PassStatus)

	return analysis, nil
}

// analyze builds the score breakdown. Every phase contributes a row with its
// full maximum even when nothing was submitted for it; the by-type buckets
// stay zeroed because only free-text points are graded.
func (s *scenarioService) analyze(attempt *models.ScenarioAttempt, scenario *models.IntegratedScenario) *models.ScoreAnalysis {
	phaseScores := make(map[string]int)
	for _, answer := range attempt.Answers {
		phaseScores[answer.PhaseID] += answer.Score
	}

	byPhase := make([]models.PhaseScore, 0, len(scenario.Phases))
	for i := range scenario.Phases {
		phase := &scenario.Phases[i]
		byPhase = append(byPhase, models.PhaseScore{
			PhaseID:  phase.ID,
			Score:    phaseScores[phase.ID],
			MaxScore: phase.MaxScore(),
		})
	}

	byType := []models.TypeScore{
		{Type: string(models.SingleChoice)},
		{Type: string(models.MultiSelect)},
		{Type: string(models.TrueFalse)},
	}

	total := totalScore(attempt)
	percentage := 0.0
	if scenario.TotalPoints > 0 {
		percentage = float64(total) / float64(scenario.TotalPoints) * 100
	}

	return &models.ScoreAnalysis{
		TotalScore: total,
		MaxScore:   scenario.TotalPoints,
		Percentage: percentage,
		ByPhase:    byPhase,
		ByType:     byType,
		PassStatus: s.engine.PassStatus(percentage),
	}
}

func (s *scenarioService) publish(ctx context.Context, event *events.AssessmentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAssessmentEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.Type, "error", err)
	}
}

func submittedPhases(attempt *models.ScenarioAttempt) map[string]bool {
	submitted := make(map[string]bool)
	for _, answer := range attempt.Answers {
		submitted[answer.PhaseID] = true
	}
	return submitted
}

func totalScore(attempt *models.ScenarioAttempt) int {
	total := 0
	for _, answer := range attempt.Answers {
		total += answer.Score
	}
	return total
}

func scenarioCacheKey(scenarioID string) string {
	return "scenario:" + scenarioID
}
