package repository

import (
	"context"

	"github.com/fastygo/sessionauth/domain"
)

// SessionFilter selects session records by equality on the non-empty fields.
// An empty filter matches nothing.
type SessionFilter struct {
	ID     string
	UserID string
}

// IsEmpty reports whether no criteria are set.
func (f SessionFilter) IsEmpty() bool {
	return f.ID == "" && f.UserID == ""
}

// Matches reports whether s satisfies every criterion of f.
func (f SessionFilter) Matches(s domain.Session) bool {
	if f.IsEmpty() {
		return false
	}
	if f.ID != "" && s.ID != f.ID {
		return false
	}
	if f.UserID != "" && s.UserID != f.UserID {
		return false
	}
	return true
}

// SessionRepository persists session records. Records are immutable: Save
// inserts a new record and Delete removes one; there is no update.
type SessionRepository interface {
	Find(ctx context.Context, filter SessionFilter) ([]domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
