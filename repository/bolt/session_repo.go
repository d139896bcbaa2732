// Package bolt keeps session records in an embedded BoltDB file so the
// persistent session backend can run without external services.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/repository"
)

const defaultBucket = "user_sessions"

// SessionStore wraps BoltDB and implements repository.SessionRepository.
// Records are keyed by session id.
type SessionStore struct {
	db     *bolt.DB
	bucket []byte
}

var _ repository.SessionRepository = (*SessionStore)(nil)

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*SessionStore, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (s *SessionStore) Find(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if filter.IsEmpty() {
		return nil, nil
	}

	var sessions []domain.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if filter.ID != "" {
			v := b.Get([]byte(filter.ID))
			if v == nil {
				return nil
			}
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return err
			}
			if filter.Matches(session) {
				sessions = append(sessions, session)
			}
			return nil
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				continue
			}
			if filter.Matches(session) {
				sessions = append(sessions, session)
			}
		}
		return nil
	})
	return sessions, err
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(session.ID), payload)
	})
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b.Get([]byte(id)) == nil {
			return domain.ErrSessionNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Count returns the number of stored records, expired ones included.
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *SessionStore) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}
