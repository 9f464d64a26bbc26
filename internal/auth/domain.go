package auth

import "time"

// User is an application account able to sign in to the administration API.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Roles recognized by the API. There is no permission matrix beyond this
// split: admins manage reference data and tariffs, operators run the counter.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)
