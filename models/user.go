package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes, credential data and the lockout counters
// maintained by the account lockout tracker.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// ID is the unique identifier of the user (UUIDv7).
	ID string `json:"id"`

	// Email is the unique, lower-cased e-mail address of the user.
	Email string `json:"email"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Image is the public URL of the user's avatar.
	Image string `json:"image,omitempty"`

	// PasswordHash stores the bcrypt hash of the password.
	// It is empty for OAuth-only accounts and never serialized.
	PasswordHash string `json:"-"`

	// EmailVerified is the moment the e-mail address was confirmed.
	// Nil means the address has not been verified yet.
	EmailVerified *time.Time `json:"emailVerified"`

	// ProfileCompleted reports whether all mandatory profile fields are set.
	ProfileCompleted bool `json:"profileCompleted"`

	// LastSignIn is the moment of the latest successful OAuth sign-in.
	LastSignIn *time.Time `json:"-"`

	// Lockout holds the failed-login bookkeeping for the account.
	Lockout LockoutState `json:"-"`

	// Preferences holds the notification and appearance settings.
	Preferences Preferences `json:"preferences"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can sign in with credentials.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsVerified reports whether the user's e-mail address has been confirmed.
func (u User) IsVerified() bool {
	return u.EmailVerified != nil
}

// Summary returns the public projection of the user returned by the API.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Image:         u.Image,
		EmailVerified: u.EmailVerified,
	}
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// UserSummary is the public view of a user.
type UserSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Image         string     `json:"image,omitempty"`
	EmailVerified *time.Time `json:"emailVerified"`
}

// LockoutState is the per-account failed-login counter.
type LockoutState struct {
	// FailedAttempts is the number of consecutive failures inside the
	// attempt window.
	FailedAttempts int

	// LastFailedAttempt is the moment of the latest failure.
	LastFailedAttempt *time.Time

	// LockedUntil is set while the account is temporarily locked.
	LockedUntil *time.Time
}

// IsLocked reports whether the lockout is still in effect at now.
func (s LockoutState) IsLocked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// Preferences groups user-controlled dashboard settings.
type Preferences struct {
	NotifyEmail bool   `json:"notifyEmail"`
	NotifyPush  bool   `json:"notifyPush"`
	NotifyAgent bool   `json:"notifyAgent"`
	Animations  bool   `json:"animations"`
	WebhookURL  string `json:"webhookUrl,omitempty"`
}

// UserUpdate describes a partial update of a user row.
// Only non-nil fields are written.
type UserUpdate struct {
	Name             *string
	Email            *string
	Image            *string
	PasswordHash     *string
	EmailVerified    *time.Time
	ProfileCompleted *bool
	LastSignIn       *time.Time

	NotifyEmail *bool
	NotifyPush  *bool
	NotifyAgent *bool
	Animations  *bool
	WebhookURL  *string
}

// IsEmpty reports whether the update carries no field at all.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Image == nil && u.PasswordHash == nil &&
		u.EmailVerified == nil && u.ProfileCompleted == nil && u.LastSignIn == nil &&
		u.NotifyEmail == nil && u.NotifyPush == nil && u.NotifyAgent == nil &&
		u.Animations == nil && u.WebhookURL == nil
}
