package repository

import (
	"context"

	"github.com/fastygo/sessionauth/domain"
)

// UserFilter selects users by equality on the non-empty fields.
// An empty filter matches nothing.
type UserFilter struct {
	ID         string
	Email      string
	ResetToken string
}

// IsEmpty reports whether no criteria are set.
func (f UserFilter) IsEmpty() bool {
	return f.ID == "" && f.Email == "" && f.ResetToken == ""
}

// Matches reports whether u satisfies every criterion of f.
func (f UserFilter) Matches(u domain.User) bool {
	if f.IsEmpty() {
		return false
	}
	if f.ID != "" && u.ID != f.ID {
		return false
	}
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.ResetToken != "" && u.ResetToken != f.ResetToken {
		return false
	}
	return true
}

type UserRepository interface {
	Find(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Count(ctx context.Context) (int, error)
}
