package models

import "time"

// Roles and account states.
const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents a registered account. The hardcoded editor account never appears in the users list.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"` // bcrypt hash; stripped before leaving the service layer
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	RegisteredAt time.Time  `json:"registeredAt"`
	LastLogin    *time.Time `json:"lastLogin"`
}

// Public returns a copy safe to hand to clients.
func (u User) Public() User {
	u.Password = ""
	return u
}

// ResetToken is a pending password reset.
type ResetToken struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
