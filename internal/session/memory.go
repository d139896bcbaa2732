package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/domain"
)

// MemoryStore is a thread-safe, process-local Store whose sessions never
// expire. Sessions are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.Session
	opts    options
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.Session),
		opts:    buildOptions(opts),
	}
}

func (s *MemoryStore) CreateSession(ctx context.Context, userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	id, err := s.opts.newID()
	if err != nil {
		s.opts.logger.Error("session id generation failed", zap.Error(err))
		return "", false
	}

	s.mu.Lock()
	s.records[id] = domain.Session{ID: id, UserID: userID, CreatedAt: s.opts.now()}
	s.mu.Unlock()
	return id, true
}

func (s *MemoryStore) Resolve(ctx context.Context, sessionID string) (string, bool) {
	record, ok := s.lookup(sessionID)
	if !ok {
		return "", false
	}
	return record.UserID, true
}

// Destroy removes any physically present record.
func (s *MemoryStore) Destroy(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[sessionID]; !ok {
		return false
	}
	delete(s.records, sessionID)
	return true
}

// Len returns the number of retained records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) lookup(sessionID string) (domain.Session, bool) {
	if sessionID == "" {
		return domain.Session{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	return record, ok
}

// Count reports Len through the Counter interface.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	return s.Len(), nil
}
