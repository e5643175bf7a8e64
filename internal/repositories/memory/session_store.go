package memory

import (
	"context"
	"sync"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

// SessionStore is the in-memory fallback used by the CLI and by tests when
// Redis is not configured. Envelopes are copied on the way in and out so
// callers never share state with the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.QuizProgressEnvelope
	progress map[string]models.ProgressData
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]models.QuizProgressEnvelope),
		progress: make(map[string]models.ProgressData),
	}
}

var _ repositories.SessionStore = (*SessionStore)(nil)
var _ repositories.ProgressStore = (*SessionStore)(nil)

func (s *SessionStore) SaveQuizProgress(_ context.Context, userID string, envelope *models.QuizProgressEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := models.QuizProgressEnvelope{}
	if envelope.QuizState != nil {
		state := *envelope.QuizState
		stored.QuizState = &state
	}
	s.sessions[userID] = stored
	return nil
}

func (s *SessionStore) LoadQuizProgress(_ context.Context, userID string) (*models.QuizProgressEnvelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[userID]
	if !ok || stored.QuizState == nil {
		return nil, repositories.ErrSessionNotFound
	}
	state := *stored.QuizState
	return &models.QuizProgressEnvelope{QuizState: &state}, nil
}

func (s *SessionStore) ClearQuizProgress(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) SaveProgress(_ context.Context, userID string, progress *models.ProgressData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[userID] = *progress
	return nil
}

func (s *SessionStore) LoadProgress(_ context.Context, userID string) (*models.ProgressData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.progress[userID]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	progress := stored
	return &progress, nil
}
