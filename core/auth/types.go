package auth

import (
	"time"

	"mdip/core/store"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO is what leaves the service. The password hash never does.
type UserDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toDTO(u *store.User) *UserDTO {
	return &UserDTO{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

type contextKey string

// SessionContextKey carries the authenticated *store.SessionRecord through a
// request's context.
const SessionContextKey contextKey = "session"
