package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSessionStore(client, 24*time.Hour), mr
}

func sampleEnvelope() *models.QuizProgressEnvelope {
	return &models.QuizProgressEnvelope{
		QuizState: &models.QuizState{
			QuizID:               "quiz-123",
			Phase:                models.PhaseInProgress,
			CurrentQuestionIndex: 2,
		},
	}
}

func TestSaveAndLoadQuizProgress(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveQuizProgress(ctx, "user-1", sampleEnvelope()))

	loaded, err := store.LoadQuizProgress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "quiz-123", loaded.QuizState.QuizID)
	assert.Equal(t, 2, loaded.QuizState.CurrentQuestionIndex)
}

func TestQuizProgressHasTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveQuizProgress(ctx, "user-1", sampleEnvelope()))
	assert.Equal(t, 24*time.Hour, mr.TTL("quiz:progress:user-1"))

	// The session expires with the TTL.
	mr.FastForward(25 * time.Hour)
	_, err := store.LoadQuizProgress(ctx, "user-1")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestLoadQuizProgressMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LoadQuizProgress(context.Background(), "nobody")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestLoadQuizProgressCorruptDocument(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set("quiz:progress:user-1", "{not json"))

	_, err := store.LoadQuizProgress(context.Background(), "user-1")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestLoadQuizProgressEmptyState(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set("quiz:progress:user-1", "{}"))

	_, err := store.LoadQuizProgress(context.Background(), "user-1")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestClearQuizProgress(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveQuizProgress(ctx, "user-1", sampleEnvelope()))
	require.NoError(t, store.ClearQuizProgress(ctx, "user-1"))

	_, err := store.LoadQuizProgress(ctx, "user-1")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestSaveAndLoadProgressDocument(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	progress := &models.ProgressData{
		UserID: "user-1",
		LOProgress: []models.LOProgress{
			{LOCode: "1.0", AverageScore: 82.5, AttemptsCount: 3},
		},
		TotalTimeSpent: 120,
	}
	require.NoError(t, store.SaveProgress(ctx, "user-1", progress))

	// Progress documents never expire.
	assert.Zero(t, mr.TTL("progress:user-1"))

	loaded, err := store.LoadProgress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.UserID)
	require.Len(t, loaded.LOProgress, 1)
	assert.InDelta(t, 82.5, loaded.LOProgress[0].AverageScore, 0.001)
	assert.Equal(t, 120, loaded.TotalTimeSpent)
}

func TestLoadProgressMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LoadProgress(context.Background(), "nobody")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}
