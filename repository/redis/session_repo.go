package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/repository"
)

type sessionRepository struct {
	client redislib.UniversalClient
	prefix string
}

// NewSessionRepository creates a Redis-backed session repository.
//
// Each record lives under "<prefix><id>" as JSON without a Redis TTL; expiry
// is decided by the session store when a record is read. Two sets index the
// records: "<prefix>all" for counting and "<prefix>user:<user_id>" for
// lookups by user.
func NewSessionRepository(client redislib.UniversalClient, prefix string) repository.SessionRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &sessionRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *sessionRepository) Find(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	if filter.IsEmpty() {
		return nil, nil
	}

	ids := []string{filter.ID}
	if filter.ID == "" {
		members, err := r.client.SMembers(ctx, r.userKey(filter.UserID)).Result()
		if err != nil {
			return nil, fmt.Errorf("listing user sessions: %w", err)
		}
		ids = members
	}

	var sessions []domain.Session
	for _, id := range ids {
		session, err := r.get(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter.Matches(*session) {
			sessions = append(sessions, *session)
		}
	}
	return sessions, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Set(ctx, r.key(session.ID), payload, 0)
		pipe.SAdd(ctx, r.indexKey(), session.ID)
		pipe.SAdd(ctx, r.userKey(session.UserID), session.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, r.key(id))
		pipe.SRem(ctx, r.indexKey(), id)
		pipe.SRem(ctx, r.userKey(session.UserID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return int(n), nil
}

func (r *sessionRepository) get(ctx context.Context, id string) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}

func (r *sessionRepository) indexKey() string {
	return r.prefix + "all"
}

func (r *sessionRepository) userKey(userID string) string {
	return fmt.Sprintf("%suser:%s", r.prefix, userID)
}
