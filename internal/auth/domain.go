// Package auth implements OpenID Connect login and the request extractors
// that resolve the calling user from their session.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the authenticated identity attached to a request.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	IsAdmin        bool      `json:"is_admin"`
	IsBanned       bool      `json:"is_banned"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessTime time.Time `json:"last_access_time"`
}

type contextKey struct{}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok
}

// IsAdmin reports whether the request carries an admin identity.
func IsAdmin(ctx context.Context) bool {
	user, ok := UserFromContext(ctx)
	return ok && user.IsAdmin && !user.IsBanned
}
