package auth

import (
	"context"
	"errors"
)

// Role names carried in token claims.
const (
	RoleAuthenticated = "authenticated"
	RoleAdmin         = "admin"
)

// Session carries the authenticated caller through the request: the raw
// bearer token plus the identity and role flags derived from it. It is
// always passed explicitly (via context), never held in package state.
type Session struct {
	Token  string
	UserID string
	Email  string
	Roles  []string
}

// NewSession builds a session from validated claims and the raw token.
func NewSession(token string, claims *Claims) *Session {
	return &Session{
		Token:  token,
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}
}

// HasRole reports whether the session carries the given role.
func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

type contextKey string

const sessionContextKey contextKey = "session"

// SetSessionInContext adds the session to the context.
func SetSessionInContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// GetSessionFromContext extracts the session from the context.
func GetSessionFromContext(ctx context.Context) (*Session, error) {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok || session == nil {
		return nil, errors.New("session not found in context")
	}
	return session, nil
}
