package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/lockout"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/models"
	"golang.org/x/crypto/bcrypt"
)

// credentialAuthenticator verifies e-mail and password pairs and keeps the
// lockout counters in step with the outcome.
type credentialAuthenticator struct {
	users   store.UserRepository
	lockout *lockout.Tracker
}

func newCredentialAuthenticator(users store.UserRepository, tracker *lockout.Tracker) *credentialAuthenticator {
	return &credentialAuthenticator{users: users, lockout: tracker}
}

// Authenticate returns the user owning email when password matches.
//
// Unknown users and accounts without a password yield INVALID_CREDENTIALS.
// A locked account yields ACCOUNT_LOCKED without the password being checked.
// A wrong password is recorded as a failed attempt, which may itself lock
// the account; otherwise INVALID_CREDENTIALS is returned. A match clears the
// counters.
func (c *credentialAuthenticator) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if email == "" || password == "" {
		return models.User{}, autherr.New(autherr.CodeInvalidCredentials, "Email and password are required")
	}

	user, err := c.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, autherr.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error finding user: %w", err)
	}
	if !user.HasPassword() {
		return models.User{}, autherr.ErrInvalidCredentials
	}

	if err = c.lockout.Check(user.Lockout); err != nil {
		log.Warn().Str("user_id", user.ID).Msg("sign in attempt on locked account")
		return models.User{}, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if lockErr := c.lockout.RecordFailedAttempt(ctx, user.Email); lockErr != nil {
			return models.User{}, lockErr
		}
		return models.User{}, autherr.ErrInvalidCredentials
	}

	if user.Lockout.FailedAttempts > 0 || user.Lockout.LockedUntil != nil {
		if err = c.lockout.ResetAttempts(ctx, user.Email); err != nil {
			return models.User{}, err
		}
		user.Lockout = models.LockoutState{}
	}

	return user, nil
}
