package transport

import (
	"time"

	"github.com/fastygo/sessionauth/domain"
)

// UserResponse is the public view of a user; password digests and reset
// tokens never leave the service.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type ResetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type StatsResponse struct {
	Users    int `json:"users"`
	Sessions int `json:"sessions"`
}
