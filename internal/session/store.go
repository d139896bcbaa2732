// Package session maps opaque session identifiers to user ids.
//
// Three Store implementations share one contract: MemoryStore keeps records
// for the life of the process, ExpiringStore adds a lifetime checked when a
// record is read, and PersistentStore applies the same lifetime to records
// kept in a repository.SessionRepository. Expired records are not swept; they
// simply stop resolving.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/repository"
)

// Store is the session backend used by the authenticator. No method returns
// an error: every failure reads as "no session".
type Store interface {
	// CreateSession issues a new session id for userID.
	CreateSession(ctx context.Context, userID string) (string, bool)
	// Resolve returns the user id bound to a live session.
	Resolve(ctx context.Context, sessionID string) (string, bool)
	// Destroy removes a session and reports whether one was removed.
	Destroy(ctx context.Context, sessionID string) bool
}

// Kind names a Store implementation; values match the AUTH_TYPE setting.
type Kind string

const (
	KindMemory     Kind = "session_auth"
	KindExpiring   Kind = "session_exp_auth"
	KindPersistent Kind = "session_db_auth"
)

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a fresh session identifier.
type IDGenerator func() (string, error)

type options struct {
	now    Clock
	newID  IDGenerator
	logger *zap.Logger
}

// Option customizes a Store.
type Option func(*options)

// WithClock overrides the time source used for created_at and expiry.
func WithClock(now Clock) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  NewID,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewID returns a random (version 4) UUID read from crypto/rand.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("session: generating id: %w", err)
	}
	return id.String(), nil
}

// Config selects and parameterizes a Store.
type Config struct {
	Kind     Kind
	Duration time.Duration
}

// Deps carries the collaborators of the persistent backend.
type Deps struct {
	Users    repository.UserRepository
	Sessions repository.SessionRepository
}

// New builds the Store named by cfg.Kind.
func New(cfg Config, deps Deps, opts ...Option) (Store, error) {
	switch cfg.Kind {
	case KindMemory:
		return NewMemoryStore(opts...), nil
	case KindExpiring:
		return NewExpiringStore(cfg.Duration, opts...), nil
	case KindPersistent:
		if deps.Users == nil || deps.Sessions == nil {
			return nil, fmt.Errorf("session: %s requires user and session repositories", cfg.Kind)
		}
		return NewPersistentStore(deps.Users, deps.Sessions, cfg.Duration, opts...), nil
	default:
		return nil, fmt.Errorf("session: unknown store kind %q", cfg.Kind)
	}
}

// Counter is implemented by every Store in this package.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Count returns the number of records held by store, or 0 when store is nil
// or cannot count.
func Count(ctx context.Context, store Store) (int, error) {
	c, ok := store.(Counter)
	if !ok {
		return 0, nil
	}
	return c.Count(ctx)
}
