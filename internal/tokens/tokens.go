// Package tokens issues and consumes the single-use verification tokens used
// by e-mail verification, e-mail change and password reset.
//
// Token values are 32 random bytes, hex-encoded, handed to the user by
// e-mail. Only their keyed digest is stored.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Token lifetimes.
const (
	EmailVerificationTTL = 24 * time.Hour
	EmailChangeTTL       = 24 * time.Hour
	PasswordResetTTL     = time.Hour
)

// ApplyFunc runs the purpose-specific side effect of a consumed token inside
// the consuming transaction.
type ApplyFunc func(ctx context.Context, token models.VerificationToken) error

// Issuer issues and consumes verification tokens.
type Issuer struct {
	tokens  store.VerificationTokenRepository
	tx      store.Transactor
	hashKey string
	now     func() time.Time
}

// NewIssuer constructs an Issuer. hashKey keys the stored digests.
func NewIssuer(tokens store.VerificationTokenRepository, tx store.Transactor, hashKey string) *Issuer {
	return &Issuer{tokens: tokens, tx: tx, hashKey: hashKey, now: time.Now}
}

// IssueEmailVerification returns a token confirming email, valid 24 hours.
func (i *Issuer) IssueEmailVerification(ctx context.Context, email string) (string, error) {
	return i.issue(ctx, email, "", models.PurposeEmailVerification, EmailVerificationTTL)
}

// IssueEmailChange returns a token moving userID to newEmail, valid 24 hours.
func (i *Issuer) IssueEmailChange(ctx context.Context, userID, newEmail string) (string, error) {
	return i.issue(ctx, newEmail, userID, models.PurposeEmailChange, EmailChangeTTL)
}

// IssuePasswordReset returns a token resetting the password of email, valid
// one hour. Earlier reset tokens of email are deleted in the same
// transaction, so at most one reset token is live per address.
func (i *Issuer) IssuePasswordReset(ctx context.Context, email string) (string, error) {
	var value string
	err := i.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := i.tokens.DeleteTokensByIdentifier(ctx, email, models.PurposePasswordReset); err != nil {
			return fmt.Errorf("error deleting previous reset tokens: %w", err)
		}
		v, err := i.issue(ctx, email, "", models.PurposePasswordReset, PasswordResetTTL)
		value = v
		return err
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

func (i *Issuer) issue(ctx context.Context, identifier, userID string, purpose models.TokenPurpose, ttl time.Duration) (string, error) {
	value, err := utils.RandomHex(utils.TokenBytes)
	if err != nil {
		return "", err
	}

	now := i.now()
	err = i.tokens.CreateToken(ctx, models.VerificationToken{
		Identifier: identifier,
		TokenHash:  i.digest(value),
		Purpose:    purpose,
		UserID:     userID,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	})
	if err != nil {
		return "", fmt.Errorf("error storing %s token: %w", purpose, err)
	}
	return value, nil
}

// Consume validates value and redeems it.
//
// The token must exist and carry one of purposes, else [ErrTokenInvalid].
// An expired token is deleted (the deletion is committed) and
// [ErrTokenExpired] is returned. Otherwise the token is deleted and apply
// runs in the same transaction; an apply error rolls both back and leaves
// the token usable.
func (i *Issuer) Consume(ctx context.Context, value string, apply ApplyFunc, purposes ...models.TokenPurpose) (models.VerificationToken, error) {
	if value == "" {
		return models.VerificationToken{}, ErrTokenInvalid
	}

	var (
		token   models.VerificationToken
		expired bool
	)
	err := i.tx.WithinTx(ctx, func(ctx context.Context) error {
		expired = false

		t, err := i.tokens.FindToken(ctx, i.digest(value))
		if errors.Is(err, store.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		if err != nil {
			return fmt.Errorf("error looking up token: %w", err)
		}
		if len(purposes) > 0 && !slices.Contains(purposes, t.Purpose) {
			return ErrTokenInvalid
		}

		if err = i.tokens.DeleteToken(ctx, t.TokenHash); err != nil {
			return fmt.Errorf("error deleting token: %w", err)
		}

		if t.IsExpired(i.now()) {
			expired = true
			return nil
		}

		token = t
		if apply == nil {
			return nil
		}
		return apply(ctx, t)
	})
	if err != nil {
		return models.VerificationToken{}, err
	}
	if expired {
		logger.FromContext(ctx).Debug().
			Str("func", "*Issuer.Consume").
			Msg("expired token deleted")
		return models.VerificationToken{}, ErrTokenExpired
	}
	return token, nil
}

// PurgeExpired deletes every token that expired before now.
func (i *Issuer) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return i.tokens.DeleteExpiredTokens(ctx, now)
}

func (i *Issuer) digest(value string) string {
	return utils.HashString(value, i.hashKey)
}
