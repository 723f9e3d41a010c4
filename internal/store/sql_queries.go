package store

import (
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Rhysmalcolm13/agentity/models"
)

const (
	usersTable    = "users"
	accountsTable = "accounts"
	sessionsTable = "sessions"
	tokensTable   = "verification_tokens"
	contactTable  = "contact_submissions"
)

var userColumns = []string{
	"id",
	"email",
	"name",
	"image",
	"password_hash",
	"email_verified",
	"profile_completed",
	"last_sign_in",
	"failed_login_attempts",
	"last_failed_attempt",
	"locked_until",
	"notify_email",
	"notify_push",
	"notify_agent",
	"animations",
	"webhook_url",
	"created_at",
	"updated_at",
}

var sessionColumns = []string{"token_hash", "user_id", "expires_at", "remember_me", "created_at"}

var tokenColumns = []string{"token_hash", "identifier", "purpose", "user_id", "expires_at", "created_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

// ── users ─────────────────────────────────────────────────────────────────────

func buildInsertUserQuery(b sq.StatementBuilderType, user models.User) (string, []any, error) {
	return b.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID,
			normalizeEmail(user.Email),
			user.Name,
			user.Image,
			nullString(user.PasswordHash),
			utcPtr(user.EmailVerified),
			user.ProfileCompleted,
			utcPtr(user.LastSignIn),
			user.Lockout.FailedAttempts,
			utcPtr(user.Lockout.LastFailedAttempt),
			utcPtr(user.Lockout.LockedUntil),
			user.Preferences.NotifyEmail,
			user.Preferences.NotifyPush,
			user.Preferences.NotifyAgent,
			user.Preferences.Animations,
			user.Preferences.WebhookURL,
			user.CreatedAt.UTC(),
			user.UpdatedAt.UTC(),
		).
		ToSql()
}

func buildSelectUserQuery(b sq.StatementBuilderType, where sq.Eq) (string, []any, error) {
	return b.Select(userColumns...).
		From(usersTable).
		Where(where).
		ToSql()
}

// buildUpdateUserQuery builds a partial UPDATE writing only the non-nil
// fields of update. updated_at is always refreshed.
func buildUpdateUserQuery(b sq.StatementBuilderType, where sq.Eq, update models.UserUpdate, now time.Time) (string, []any, error) {
	if update.IsEmpty() {
		return "", nil, ErrNothingToUpdate
	}

	q := b.Update(usersTable).Set("updated_at", now.UTC())

	if update.Name != nil {
		q = q.Set("name", *update.Name)
	}
	if update.Email != nil {
		q = q.Set("email", normalizeEmail(*update.Email))
	}
	if update.Image != nil {
		q = q.Set("image", *update.Image)
	}
	if update.PasswordHash != nil {
		q = q.Set("password_hash", nullString(*update.PasswordHash))
	}
	if update.EmailVerified != nil {
		q = q.Set("email_verified", update.EmailVerified.UTC())
	}
	if update.ProfileCompleted != nil {
		q = q.Set("profile_completed", *update.ProfileCompleted)
	}
	if update.LastSignIn != nil {
		q = q.Set("last_sign_in", update.LastSignIn.UTC())
	}
	if update.NotifyEmail != nil {
		q = q.Set("notify_email", *update.NotifyEmail)
	}
	if update.NotifyPush != nil {
		q = q.Set("notify_push", *update.NotifyPush)
	}
	if update.NotifyAgent != nil {
		q = q.Set("notify_agent", *update.NotifyAgent)
	}
	if update.Animations != nil {
		q = q.Set("animations", *update.Animations)
	}
	if update.WebhookURL != nil {
		q = q.Set("webhook_url", *update.WebhookURL)
	}

	return q.Where(where).ToSql()
}

func buildSelectLockoutQuery(db *DB, email string) (string, []any, error) {
	return db.forUpdate(db.builder.
		Select("failed_login_attempts", "last_failed_attempt", "locked_until").
		From(usersTable).
		Where(sq.Eq{"email": normalizeEmail(email)})).
		ToSql()
}

func buildSaveLockoutQuery(b sq.StatementBuilderType, email string, state models.LockoutState, now time.Time) (string, []any, error) {
	return b.Update(usersTable).
		Set("failed_login_attempts", state.FailedAttempts).
		Set("last_failed_attempt", utcPtr(state.LastFailedAttempt)).
		Set("locked_until", utcPtr(state.LockedUntil)).
		Set("updated_at", now.UTC()).
		Where(sq.Eq{"email": normalizeEmail(email)}).
		ToSql()
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user              models.User
		passwordHash      sql.NullString
		emailVerified     sql.NullTime
		lastSignIn        sql.NullTime
		lastFailedAttempt sql.NullTime
		lockedUntil       sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&passwordHash,
		&emailVerified,
		&user.ProfileCompleted,
		&lastSignIn,
		&user.Lockout.FailedAttempts,
		&lastFailedAttempt,
		&lockedUntil,
		&user.Preferences.NotifyEmail,
		&user.Preferences.NotifyPush,
		&user.Preferences.NotifyAgent,
		&user.Preferences.Animations,
		&user.Preferences.WebhookURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	user.PasswordHash = passwordHash.String
	user.EmailVerified = timePtr(emailVerified)
	user.LastSignIn = timePtr(lastSignIn)
	user.Lockout.LastFailedAttempt = timePtr(lastFailedAttempt)
	user.Lockout.LockedUntil = timePtr(lockedUntil)

	return user, nil
}

// ── accounts ──────────────────────────────────────────────────────────────────

func buildSelectAccountQuery(b sq.StatementBuilderType, provider models.OAuthProvider, providerAccountID string) (string, []any, error) {
	return b.Select("user_id", "provider", "provider_account_id", "created_at").
		From(accountsTable).
		Where(sq.Eq{"provider": string(provider), "provider_account_id": providerAccountID}).
		ToSql()
}

func buildInsertAccountQuery(b sq.StatementBuilderType, account models.Account) (string, []any, error) {
	return b.Insert(accountsTable).
		Columns("user_id", "provider", "provider_account_id", "created_at").
		Values(account.UserID, string(account.Provider), account.ProviderAccountID, account.CreatedAt.UTC()).
		ToSql()
}

// ── sessions ──────────────────────────────────────────────────────────────────

func buildInsertSessionQuery(b sq.StatementBuilderType, session models.Session) (string, []any, error) {
	return b.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(session.TokenHash, session.UserID, session.ExpiresAt.UTC(), session.RememberMe, session.CreatedAt.UTC()).
		ToSql()
}

func buildSelectSessionQuery(b sq.StatementBuilderType, tokenHash string) (string, []any, error) {
	return b.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"token_hash": tokenHash}).
		ToSql()
}

func buildUpdateSessionExpiryQuery(b sq.StatementBuilderType, tokenHash string, expiresAt time.Time) (string, []any, error) {
	return b.Update(sessionsTable).
		Set("expires_at", expiresAt.UTC()).
		Where(sq.Eq{"token_hash": tokenHash}).
		ToSql()
}

func buildDeleteSessionsQuery(b sq.StatementBuilderType, where sq.Sqlizer) (string, []any, error) {
	return b.Delete(sessionsTable).Where(where).ToSql()
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	if err := row.Scan(&s.TokenHash, &s.UserID, &s.ExpiresAt, &s.RememberMe, &s.CreatedAt); err != nil {
		return models.Session{}, err
	}
	return s, nil
}

// ── verification tokens ───────────────────────────────────────────────────────

func buildInsertTokenQuery(b sq.StatementBuilderType, token models.VerificationToken) (string, []any, error) {
	return b.Insert(tokensTable).
		Columns(tokenColumns...).
		Values(
			token.TokenHash,
			normalizeEmail(token.Identifier),
			string(token.Purpose),
			nullString(token.UserID),
			token.ExpiresAt.UTC(),
			token.CreatedAt.UTC(),
		).
		ToSql()
}

func buildSelectTokenQuery(db *DB, tokenHash string) (string, []any, error) {
	return db.forUpdate(db.builder.
		Select(tokenColumns...).
		From(tokensTable).
		Where(sq.Eq{"token_hash": tokenHash})).
		ToSql()
}

func buildDeleteTokensQuery(b sq.StatementBuilderType, where sq.Sqlizer) (string, []any, error) {
	return b.Delete(tokensTable).Where(where).ToSql()
}

func scanToken(row rowScanner) (models.VerificationToken, error) {
	var (
		t       models.VerificationToken
		purpose string
		userID  sql.NullString
	)
	if err := row.Scan(&t.TokenHash, &t.Identifier, &purpose, &userID, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return models.VerificationToken{}, err
	}
	t.Purpose = models.TokenPurpose(purpose)
	t.UserID = userID.String
	return t, nil
}

// ── contact ───────────────────────────────────────────────────────────────────

func buildInsertContactQuery(b sq.StatementBuilderType, s models.ContactSubmission) (string, []any, error) {
	return b.Insert(contactTable).
		Columns("id", "category", "name", "email", "message", "attachment_url", "status", "created_at").
		Values(s.ID, string(s.Category), s.Name, s.Email, s.Message, s.AttachmentURL, s.Status, s.CreatedAt.UTC()).
		ToSql()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
