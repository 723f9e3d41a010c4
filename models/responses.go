package models

import "time"

// ContactSubmission is a persisted contact form entry.
type ContactSubmission struct {
	ID            string
	Category      ContactCategory
	Name          string
	Email         string
	Message       string
	AttachmentURL string
	Status        string
	CreatedAt     time.Time
}

// ContactStatusPending is the initial status of every submission.
const ContactStatusPending = "PENDING"

// OAuthProvider names an external identity provider.
type OAuthProvider string

const (
	ProviderGitHub OAuthProvider = "github"
	ProviderGoogle OAuthProvider = "google"
)

// OAuthProfile is the identity returned by a provider after a successful
// authorization code exchange.
type OAuthProfile struct {
	ID       string        `json:"id"`
	Email    string        `json:"email,omitempty"`
	Name     string        `json:"name,omitempty"`
	Image    string        `json:"image,omitempty"`
	Provider OAuthProvider `json:"provider"`
}

// OAuthState is carried through the provider redirect in the signed
// `state` query parameter.
type OAuthState struct {
	Provider    OAuthProvider
	CallbackURL string
	RememberMe  bool
}

// Email is an outgoing message handed to the e-mail provider.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// AvatarUpload is a validated avatar file ready for storage.
type AvatarUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     []byte
}
