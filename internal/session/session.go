// Package session manages server-side sessions.
//
// A session is identified by an opaque 32-byte base64url token held by the
// client; the store only sees its keyed digest.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
)

const (
	// DefaultMaxAge is the lifetime of a regular session.
	DefaultMaxAge = 24 * time.Hour
	// RememberMeMaxAge is the lifetime of a "remember me" session.
	RememberMeMaxAge = 30 * 24 * time.Hour
	// UpdateAge is the remaining lifetime under which a session is extended.
	UpdateAge = 24 * time.Hour
)

// Options control the lifetime of a session.
type Options struct {
	RememberMe bool
}

func (o Options) maxAge() time.Duration {
	if o.RememberMe {
		return RememberMeMaxAge
	}
	return DefaultMaxAge
}

// Manager creates, validates and revokes sessions.
type Manager struct {
	sessions store.SessionRepository
	hashKey  string
	now      func() time.Time
}

// NewManager constructs a Manager. hashKey keys the stored token digests.
func NewManager(sessions store.SessionRepository, hashKey string) *Manager {
	return &Manager{sessions: sessions, hashKey: hashKey, now: time.Now}
}

// Create starts a session for userID. The returned session carries the
// opaque token; it is not retrievable later.
func (m *Manager) Create(ctx context.Context, userID string, opts Options) (models.Session, error) {
	token, err := utils.RandomURLSafe(utils.TokenBytes)
	if err != nil {
		return models.Session{}, err
	}

	now := m.now()
	s := models.Session{
		Token:      token,
		TokenHash:  m.digest(token),
		UserID:     userID,
		ExpiresAt:  now.Add(opts.maxAge()),
		RememberMe: opts.RememberMe,
		CreatedAt:  now,
	}
	if err = m.sessions.CreateSession(ctx, s); err != nil {
		return models.Session{}, fmt.Errorf("error creating session: %w", err)
	}
	return s, nil
}

// Validate returns the live session for token. Unknown tokens yield
// SESSION_INVALID; expired sessions are deleted and yield SESSION_EXPIRED.
func (m *Manager) Validate(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, autherr.ErrSessionInvalid
	}

	s, err := m.sessions.FindSession(ctx, m.digest(token))
	if errors.Is(err, store.ErrSessionNotFound) {
		return models.Session{}, autherr.ErrSessionInvalid
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("error finding session: %w", err)
	}

	if s.IsExpired(m.now()) {
		if err = m.sessions.DeleteSession(ctx, s.TokenHash); err != nil {
			logger.FromContext(ctx).Err(err).Str("func", "*Manager.Validate").Msg("error deleting expired session")
		}
		return models.Session{}, autherr.ErrSessionExpired
	}

	s.Token = token
	return s, nil
}

// Update recomputes the expiry of token with the creation rule.
func (m *Manager) Update(ctx context.Context, token string, opts Options) (time.Time, error) {
	expiresAt := m.now().Add(opts.maxAge())
	err := m.sessions.UpdateSessionExpiry(ctx, m.digest(token), expiresAt)
	if errors.Is(err, store.ErrSessionNotFound) {
		return time.Time{}, autherr.ErrSessionInvalid
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("error updating session: %w", err)
	}
	return expiresAt, nil
}

// NeedsRefresh reports whether s has UpdateAge or less left to live.
func (m *Manager) NeedsRefresh(s models.Session) bool {
	return s.ExpiresAt.Sub(m.now()) <= UpdateAge
}

// Refresh extends s when it needs it and returns the session as it now is.
func (m *Manager) Refresh(ctx context.Context, s models.Session) (models.Session, error) {
	if !m.NeedsRefresh(s) {
		return s, nil
	}
	expiresAt, err := m.Update(ctx, s.Token, Options{RememberMe: s.RememberMe})
	if err != nil {
		return s, err
	}
	s.ExpiresAt = expiresAt
	return s, nil
}

// Delete revokes one session. Revoking an unknown token is not an error.
func (m *Manager) Delete(ctx context.Context, token string) error {
	if err := m.sessions.DeleteSession(ctx, m.digest(token)); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// DeleteAllForUser revokes every session of userID.
func (m *Manager) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	n, err := m.sessions.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error deleting user sessions: %w", err)
	}
	return n, nil
}

// PurgeExpired deletes every session that expired before now.
func (m *Manager) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.sessions.DeleteExpiredSessions(ctx, now)
}

func (m *Manager) digest(token string) string {
	return utils.HashString(token, m.hashKey)
}
