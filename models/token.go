package models

import "time"

// TokenPurpose distinguishes the flows a verification token may be used for.
// A token issued for one purpose is never accepted by another flow.
type TokenPurpose string

const (
	// PurposeEmailVerification confirms the address given at registration.
	PurposeEmailVerification TokenPurpose = "email_verification"

	// PurposePasswordReset authorizes a password change without a session.
	PurposePasswordReset TokenPurpose = "password_reset"

	// PurposeEmailChange confirms a new address requested from the settings page.
	PurposeEmailChange TokenPurpose = "email_change"
)

// VerificationToken is a single-use, time-limited opaque token.
//
// The opaque value is handed to the user (by e-mail) and only its keyed
// digest is persisted in TokenHash.
type VerificationToken struct {
	// Identifier is the target e-mail address. It is not a foreign key so
	// that tokens can be issued before an address is attached to a user.
	Identifier string

	// TokenHash is the HMAC-SHA256 digest of the opaque token value.
	TokenHash string

	// Purpose is the flow that issued the token.
	Purpose TokenPurpose

	// UserID is set for e-mail change tokens only.
	UserID string

	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token is past its expiry at now.
func (t VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Session is a server-side session record.
type Session struct {
	// Token is the opaque session token. It is only populated on the value
	// returned to the caller and is never persisted.
	Token string `json:"-"`

	// TokenHash is the HMAC-SHA256 digest of Token.
	TokenHash string `json:"-"`

	UserID     string    `json:"userId"`
	ExpiresAt  time.Time `json:"expires"`
	RememberMe bool      `json:"rememberMe"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Account links an external OAuth identity to a local user.
type Account struct {
	UserID            string
	Provider          OAuthProvider
	ProviderAccountID string
	CreatedAt         time.Time
}
