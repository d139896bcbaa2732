package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/repository"
)

// PersistentStore keeps session records in a repository so they survive
// restarts. Lifetime rules match ExpiringStore. Repository failures are
// logged and read as "no session".
type PersistentStore struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	duration time.Duration
	opts     options
}

var _ Store = (*PersistentStore)(nil)

func NewPersistentStore(users repository.UserRepository, sessions repository.SessionRepository, duration time.Duration, opts ...Option) *PersistentStore {
	return &PersistentStore{
		users:    users,
		sessions: sessions,
		duration: duration,
		opts:     buildOptions(opts),
	}
}

// CreateSession requires userID to name an existing user.
func (s *PersistentStore) CreateSession(ctx context.Context, userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		s.opts.logger.Warn("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return "", false
	}
	if !exists {
		return "", false
	}

	id, err := s.opts.newID()
	if err != nil {
		s.opts.logger.Error("session id generation failed", zap.Error(err))
		return "", false
	}

	record := &domain.Session{ID: id, UserID: userID, CreatedAt: s.opts.now()}
	if err := s.sessions.Save(ctx, record); err != nil {
		s.opts.logger.Warn("session save failed", zap.String("user_id", userID), zap.Error(err))
		return "", false
	}
	return id, true
}

func (s *PersistentStore) Resolve(ctx context.Context, sessionID string) (string, bool) {
	record, ok := s.live(ctx, sessionID)
	if !ok {
		return "", false
	}
	return record.UserID, true
}

// Destroy removes a live session. Expired or unknown sessions report false.
func (s *PersistentStore) Destroy(ctx context.Context, sessionID string) bool {
	if _, ok := s.live(ctx, sessionID); !ok {
		return false
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.opts.logger.Warn("session delete failed", zap.Error(err))
		return false
	}
	return true
}

// Duration returns the configured session lifetime.
func (s *PersistentStore) Duration() time.Duration {
	return s.duration
}

func (s *PersistentStore) live(ctx context.Context, sessionID string) (domain.Session, bool) {
	if sessionID == "" {
		return domain.Session{}, false
	}
	records, err := s.sessions.Find(ctx, repository.SessionFilter{ID: sessionID})
	if err != nil {
		s.opts.logger.Warn("session lookup failed", zap.Error(err))
		return domain.Session{}, false
	}
	if len(records) != 1 {
		return domain.Session{}, false
	}
	record := records[0]
	if domain.SessionExpired(record.CreatedAt, s.opts.now(), s.duration) {
		return domain.Session{}, false
	}
	return record, true
}

// Count returns the number of stored records, expired ones included.
func (s *PersistentStore) Count(ctx context.Context) (int, error) {
	return s.sessions.Count(ctx)
}
