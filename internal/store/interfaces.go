package store

import (
	"context"
	"time"

	"github.com/Rhysmalcolm13/agentity/models"
)

// ErrorClassificator maps driver errors to retry decisions and detects
// unique-constraint violations.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	IsUniqueViolation(err error) bool
}

// Transactor runs a function inside a database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository persists user accounts. E-mail lookups are case-insensitive.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
	UpdateUser(ctx context.Context, id string, update models.UserUpdate) error
	UpdateUserByEmail(ctx context.Context, email string, update models.UserUpdate) error

	// GetLockoutState reads the failed-login counters, locking the row for
	// the rest of the surrounding transaction on dialects that support it.
	GetLockoutState(ctx context.Context, email string) (models.LockoutState, error)
	SaveLockoutState(ctx context.Context, email string, state models.LockoutState) error
}

// AccountRepository persists OAuth account links.
type AccountRepository interface {
	FindAccount(ctx context.Context, provider models.OAuthProvider, providerAccountID string) (models.Account, error)
	LinkAccount(ctx context.Context, account models.Account) error
}

// SessionRepository persists server-side sessions keyed by token digest.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) error
	FindSession(ctx context.Context, tokenHash string) (models.Session, error)
	UpdateSessionExpiry(ctx context.Context, tokenHash string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteUserSessions(ctx context.Context, userID string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// VerificationTokenRepository persists single-use tokens keyed by digest.
type VerificationTokenRepository interface {
	CreateToken(ctx context.Context, token models.VerificationToken) error
	// FindToken locks the row on dialects that support it.
	FindToken(ctx context.Context, tokenHash string) (models.VerificationToken, error)
	DeleteToken(ctx context.Context, tokenHash string) error
	DeleteTokensByIdentifier(ctx context.Context, identifier string, purpose models.TokenPurpose) (int64, error)
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// ContactRepository persists contact form submissions.
type ContactRepository interface {
	SaveSubmission(ctx context.Context, submission models.ContactSubmission) error
}

// BlogRepository serves the static blog content.
type BlogRepository interface {
	ListPosts(ctx context.Context) ([]models.BlogPost, error)
}
