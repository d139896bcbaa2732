package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/repository"
)

func openTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "sessions.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &domain.Session{ID: "s1", UserID: "u1", CreatedAt: created}))
	require.NoError(t, store.Save(ctx, &domain.Session{ID: "s2", UserID: "u1", CreatedAt: created}))
	require.NoError(t, store.Save(ctx, &domain.Session{ID: "s3", UserID: "u2", CreatedAt: created}))

	t.Run("FindByID", func(t *testing.T) {
		got, err := store.Find(ctx, repository.SessionFilter{ID: "s1"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "u1", got[0].UserID)
		assert.True(t, created.Equal(got[0].CreatedAt))
	})

	t.Run("FindByUser", func(t *testing.T) {
		got, err := store.Find(ctx, repository.SessionFilter{UserID: "u1"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("FindMismatch", func(t *testing.T) {
		got, err := store.Find(ctx, repository.SessionFilter{ID: "s1", UserID: "u2"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("EmptyFilterMatchesNothing", func(t *testing.T) {
		got, err := store.Find(ctx, repository.SessionFilter{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Count", func(t *testing.T) {
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "s3"))
		got, err := store.Find(ctx, repository.SessionFilter{ID: "s3"})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.ErrorIs(t, store.Delete(ctx, "s3"), domain.ErrSessionNotFound)
	})

	t.Run("SaveRejectsIncompleteRecord", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, &domain.Session{ID: "x"}), domain.ErrInvalidPayload)
	})
}

func TestSessionStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := Open(path, "")
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, &domain.Session{ID: "keep", UserID: "u1"}))
	require.NoError(t, first.Close())

	second, err := Open(path, "")
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Find(ctx, repository.SessionFilter{ID: "keep"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestClosedStore(t *testing.T) {
	var store *SessionStore
	_, err := store.Count(context.Background())
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
