// Package lockout tracks consecutive failed sign-in attempts per account and
// temporarily locks accounts that exceed the allowed number of failures.
package lockout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/models"
)

// Config holds the lockout policy.
type Config struct {
	// MaxAttempts is the number of failures that locks the account.
	MaxAttempts int
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration time.Duration
	// AttemptWindow bounds how far apart failures may be to keep counting.
	AttemptWindow time.Duration
}

// DefaultConfig locks after 5 failures within an hour, for 15 minutes.
var DefaultConfig = Config{
	MaxAttempts:     5,
	LockoutDuration: 15 * time.Minute,
	AttemptWindow:   time.Hour,
}

// Tracker maintains the lockout counters stored on the user row.
type Tracker struct {
	users store.UserRepository
	tx    store.Transactor
	cfg   Config
	now   func() time.Time
}

// NewTracker constructs a Tracker.
func NewTracker(users store.UserRepository, tx store.Transactor, cfg Config) *Tracker {
	return &Tracker{users: users, tx: tx, cfg: cfg, now: time.Now}
}

// RecordFailedAttempt counts one failed sign-in for email.
//
// A locked account is not counted again and yields ACCOUNT_LOCKED with the
// remaining lock time. A failure older than the attempt window restarts the
// count at 1. Reaching MaxAttempts locks the account and yields
// ACCOUNT_LOCKED with the full lock duration; the new state is committed
// first. Unknown e-mail addresses are ignored.
func (t *Tracker) RecordFailedAttempt(ctx context.Context, email string) error {
	var lockErr error

	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		lockErr = nil

		state, err := t.users.GetLockoutState(ctx, email)
		if errors.Is(err, store.ErrNoUserWasFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading lockout state: %w", err)
		}

		now := t.now()
		if state.IsLocked(now) {
			lockErr = lockedError(autherr.ErrAccountLocked.Message, state.LockedUntil.Sub(now))
			return nil
		}

		next := t.next(state, now)
		if err = t.users.SaveLockoutState(ctx, email, next); err != nil {
			return fmt.Errorf("error saving lockout state: %w", err)
		}

		if next.LockedUntil != nil {
			logger.FromContext(ctx).Warn().
				Str("func", "*Tracker.RecordFailedAttempt").
				Int("failed_attempts", next.FailedAttempts).
				Time("locked_until", *next.LockedUntil).
				Msg("account locked")
			lockErr = lockedError("Too many failed attempts. Account is temporarily locked.", t.cfg.LockoutDuration)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return lockErr
}

// next computes the state after one more failure at now.
func (t *Tracker) next(state models.LockoutState, now time.Time) models.LockoutState {
	attempts := state.FailedAttempts + 1
	if state.LastFailedAttempt == nil || now.Sub(*state.LastFailedAttempt) > t.cfg.AttemptWindow {
		attempts = 1
	}

	next := models.LockoutState{FailedAttempts: attempts, LastFailedAttempt: &now}
	if attempts >= t.cfg.MaxAttempts {
		until := now.Add(t.cfg.LockoutDuration)
		next.LockedUntil = &until
	}
	return next
}

// ResetAttempts clears the counters after a successful sign-in.
func (t *Tracker) ResetAttempts(ctx context.Context, email string) error {
	err := t.users.SaveLockoutState(ctx, email, models.LockoutState{})
	if err != nil && !errors.Is(err, store.ErrNoUserWasFound) {
		return fmt.Errorf("error resetting lockout state: %w", err)
	}
	return nil
}

// IsAccountLocked reports whether email is currently locked.
func (t *Tracker) IsAccountLocked(ctx context.Context, email string) (bool, error) {
	state, err := t.users.GetLockoutState(ctx, email)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading lockout state: %w", err)
	}
	return state.IsLocked(t.now()), nil
}

// EnsureUnlocked returns ACCOUNT_LOCKED with remainingTime when email is
// currently locked. Unknown e-mail addresses are never locked.
func (t *Tracker) EnsureUnlocked(ctx context.Context, email string) error {
	state, err := t.users.GetLockoutState(ctx, email)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading lockout state: %w", err)
	}
	return t.Check(state)
}

// Check is EnsureUnlocked for a state the caller already loaded.
func (t *Tracker) Check(state models.LockoutState) error {
	now := t.now()
	if !state.IsLocked(now) {
		return nil
	}
	return lockedError(autherr.ErrAccountLocked.Message, state.LockedUntil.Sub(now))
}

func lockedError(message string, remaining time.Duration) error {
	return autherr.New(autherr.CodeAccountLocked, message, map[string]any{
		"remainingTime": int(math.Ceil(remaining.Seconds())),
	})
}
