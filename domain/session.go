package domain

import "time"

// Session binds an opaque session identifier to the user that logged in.
// Records are never mutated after creation.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session is past its lifetime at reference.
func (s *Session) IsExpired(reference time.Time, duration time.Duration) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return SessionExpired(s.CreatedAt, reference, duration)
}

// SessionExpired is the single expiry rule used by every expiring backend.
// A non-positive duration never expires; otherwise a session is expired once
// now is strictly after createdAt+duration.
func SessionExpired(createdAt, now time.Time, duration time.Duration) bool {
	if duration <= 0 {
		return false
	}
	return now.After(createdAt.Add(duration))
}
