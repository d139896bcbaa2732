package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/repository"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &domain.User{Email: "bob@example.com", HashedPassword: []byte("digest")}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{Email: "bob@example.com"}), domain.ErrEmailTaken)

	ok, err := repo.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.Find(ctx, repository.UserFilter{Email: "bob@example.com"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, user.ID, found[0].ID)

	found[0].HashedPassword[0] = 'X'
	again, _ := repo.Find(ctx, repository.UserFilter{ID: user.ID})
	assert.Equal(t, "digest", string(again[0].HashedPassword))

	none, err := repo.Find(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	user.ResetToken = "tok"
	require.NoError(t, repo.Update(ctx, user))
	found, _ = repo.Find(ctx, repository.UserFilter{ResetToken: "tok"})
	assert.Len(t, found, 1)

	assert.ErrorIs(t, repo.Update(ctx, &domain.User{ID: "missing"}), domain.ErrUserNotFound)

	n, _ := repo.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "a", UserID: "u1"}))
	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "b", UserID: "u1"}))

	got, err := repo.Find(ctx, repository.SessionFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, _ = repo.Find(ctx, repository.SessionFilter{ID: "a", UserID: "u2"})
	assert.Empty(t, got)

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), domain.ErrSessionNotFound)

	n, _ := repo.Count(ctx)
	assert.Equal(t, 1, n)
}
