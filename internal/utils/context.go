// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, keyed hashing,
// random token generation, HTTP response writing, HTTP client
// initialization and signed OAuth state values.
package utils

import (
	"context"

	"github.com/Rhysmalcolm13/agentity/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user identifier.
var UserIDCtxKey = contextKey("userID")

// SessionCtxKey is the key used to store the validated session.
var SessionCtxKey = contextKey("session")

// GetUserIDFromContext retrieves the user identifier from the context.
// ok is false when the value is missing, empty or of an unexpected type.
//
//	userID, ok := utils.GetUserIDFromContext(ctx)
//	if !ok {
//	    // handle missing user in context
//	}
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// WithSession stores the session and its owner in the context.
func WithSession(ctx context.Context, session models.Session) context.Context {
	ctx = context.WithValue(ctx, SessionCtxKey, session)
	return context.WithValue(ctx, UserIDCtxKey, session.UserID)
}

// GetSessionFromContext retrieves the session stored by [WithSession].
func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(SessionCtxKey).(models.Session)
	return session, ok
}

// UserCtxKey is the key used to store the authenticated user.
var UserCtxKey = contextKey("user")

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserCtxKey, user)
}

// GetUserFromContext retrieves the user stored by [WithUser].
func GetUserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(models.User)
	return user, ok
}
