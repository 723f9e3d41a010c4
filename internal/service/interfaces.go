package service

import (
	"context"

	"github.com/Rhysmalcolm13/agentity/models"
)

// AuthService orchestrates registration, sign-in, sessions and the token
// flows (e-mail verification and password reset).
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	SignInWithCredentials(ctx context.Context, req models.SignInRequest) (models.User, models.Session, error)

	// OAuthAuthorizeURL returns the consent page URL of provider with a
	// signed state carrying callbackURL and rememberMe.
	OAuthAuthorizeURL(ctx context.Context, provider models.OAuthProvider, callbackURL string, rememberMe bool) (string, error)
	// SignInWithOAuth completes the provider callback. providerError is the
	// `error` query parameter sent back by the provider, if any.
	SignInWithOAuth(ctx context.Context, provider models.OAuthProvider, code, state, providerError string) (OAuthSignIn, error)

	SignOut(ctx context.Context, token string) error
	SignOutEverywhere(ctx context.Context, userID string) (int64, error)

	// Authenticate validates token, extends the session when it is close to
	// expiry and returns it together with its owner.
	Authenticate(ctx context.Context, token string) (models.Session, models.User, error)

	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, req models.ResetPasswordRequest) error
	ResetPassword(ctx context.Context, req models.ResetPasswordVerifyRequest) error
}

// AuthServiceWrapper decorates an AuthService with additional behavior.
type AuthServiceWrapper interface {
	Wrap(AuthService) AuthService
}

// ProfileService manages the profile fields and their completion state.
type ProfileService interface {
	UpdateProfile(ctx context.Context, userID string, data models.ProfileData) (models.SettingsResult, error)
	GetProgress(ctx context.Context, userID string) (models.ProfileProgress, error)
	// EnsureComplete returns PROFILE_INCOMPLETE when the profile of userID
	// is missing mandatory fields.
	EnsureComplete(ctx context.Context, userID string) error
}

// SettingsService applies the account settings form.
type SettingsService interface {
	UpdateSettings(ctx context.Context, userID string, req models.SettingsRequest) (models.SettingsResult, error)
}

// UploadService stores user uploads.
type UploadService interface {
	UploadAvatar(ctx context.Context, userID string, upload models.AvatarUpload) (string, error)
}

// ContactService records contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, req models.ContactRequest) error
}

// BlogService serves the blog listing and feed.
type BlogService interface {
	ListPosts(ctx context.Context, query models.BlogQuery) (models.BlogPage, error)
	RSSFeed(ctx context.Context) ([]byte, error)
}

// EmailService renders and sends the transactional e-mails.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// OAuthSignIn is the outcome of a completed OAuth callback.
type OAuthSignIn struct {
	User        models.User
	Session     models.Session
	CallbackURL string
}
