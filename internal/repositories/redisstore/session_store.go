package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

const (
	quizProgressKeyPrefix = "quiz:progress:"
	progressKeyPrefix     = "progress:"
)

// SessionStore keeps the live quiz session and the cross-session progress
// document in Redis, keyed per user. Quiz sessions expire; progress documents
// do not.
type SessionStore struct {
	client     *redis.Client
	sessionTTL time.Duration
}

func NewSessionStore(client *redis.Client, sessionTTL time.Duration) *SessionStore {
	return &SessionStore{
		client:     client,
		sessionTTL: sessionTTL,
	}
}

var _ repositories.SessionStore = (*SessionStore)(nil)
var _ repositories.ProgressStore = (*SessionStore)(nil)

func (s *SessionStore) SaveQuizProgress(ctx context.Context, userID string, envelope *models.QuizProgressEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal quiz progress: %w", err)
	}
	if err := s.client.Set(ctx, quizProgressKey(userID), data, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("save quiz progress: %w", err)
	}
	return nil
}

func (s *SessionStore) LoadQuizProgress(ctx context.Context, userID string) (*models.QuizProgressEnvelope, error) {
	data, err := s.client.Get(ctx, quizProgressKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repositories.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load quiz progress: %w", err)
	}

	var envelope models.QuizProgressEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		// A corrupt document is unrecoverable; treat it as absent so the
		// caller can start fresh.
		return nil, repositories.ErrSessionNotFound
	}
	if envelope.QuizState == nil {
		return nil, repositories.ErrSessionNotFound
	}
	return &envelope, nil
}

func (s *SessionStore) ClearQuizProgress(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, quizProgressKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear quiz progress: %w", err)
	}
	return nil
}

func (s *SessionStore) SaveProgress(ctx context.Context, userID string, progress *models.ProgressData) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.client.Set(ctx, progressKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *SessionStore) LoadProgress(ctx context.Context, userID string) (*models.ProgressData, error) {
	data, err := s.client.Get(ctx, progressKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repositories.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}

	var progress models.ProgressData
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &progress, nil
}

func quizProgressKey(userID string) string {
	return quizProgressKeyPrefix + userID
}

func progressKey(userID string) string {
	return progressKeyPrefix + userID
}
