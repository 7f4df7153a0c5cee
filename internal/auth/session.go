package auth

import (
	"context"

	"github.com/awakenedyouth/awakened-be/internal/models"
)

// Session is the identity a request acts as. The zero value is an anonymous visitor.
// It is created by login and discarded by logout; nothing global holds it.
type Session struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// NewSession builds a session for u.
func NewSession(u models.User) Session {
	return Session{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// IsLoggedIn reports whether the session belongs to someone.
func (s Session) IsLoggedIn() bool { return s.UserID != "" }

// IsAdmin reports whether the session holds the admin role.
func (s Session) IsAdmin() bool { return s.IsLoggedIn() && s.Role == models.RoleAdmin }

// IsContributor reports whether the session holds the contributor role.
func (s Session) IsContributor() bool { return s.IsLoggedIn() && s.Role == models.RoleContributor }

// Owns reports whether the session is the given author.
func (s Session) Owns(authorID string) bool { return s.IsLoggedIn() && s.UserID == authorID }

type contextKey string

const sessionKey = contextKey("session")

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session stored in ctx, or an anonymous one.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey).(Session)
	return s
}
