package domain

import "time"

// User represents a registered identity. The password digest and reset
// token never leave the service.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword []byte    `json:"-"`
	ResetToken     string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) Touch() {
	if u == nil {
		return
	}
	u.UpdatedAt = time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = u.UpdatedAt
	}
}
