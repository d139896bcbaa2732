package session

import (
	"context"
	"time"

	"github.com/fastygo/sessionauth/domain"
)

// ExpiringStore keeps records in memory and stops resolving them once they
// are older than duration. A non-positive duration never expires.
type ExpiringStore struct {
	records  *MemoryStore
	duration time.Duration
}

var _ Store = (*ExpiringStore)(nil)

func NewExpiringStore(duration time.Duration, opts ...Option) *ExpiringStore {
	return &ExpiringStore{
		records:  NewMemoryStore(opts...),
		duration: duration,
	}
}

func (s *ExpiringStore) CreateSession(ctx context.Context, userID string) (string, bool) {
	return s.records.CreateSession(ctx, userID)
}

func (s *ExpiringStore) Resolve(ctx context.Context, sessionID string) (string, bool) {
	record, ok := s.records.lookup(sessionID)
	if !ok {
		return "", false
	}
	if domain.SessionExpired(record.CreatedAt, s.records.opts.now(), s.duration) {
		return "", false
	}
	return record.UserID, true
}

// Destroy removes a live session. Expired records report false and are left
// in place.
func (s *ExpiringStore) Destroy(ctx context.Context, sessionID string) bool {
	if _, ok := s.Resolve(ctx, sessionID); !ok {
		return false
	}
	return s.records.Destroy(ctx, sessionID)
}

// Duration returns the configured session lifetime.
func (s *ExpiringStore) Duration() time.Duration {
	return s.duration
}

// Len returns the number of retained records, expired ones included.
func (s *ExpiringStore) Len() int {
	return s.records.Len()
}

func (s *ExpiringStore) Count(ctx context.Context) (int, error) {
	return s.records.Len(), nil
}
