package models

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// SignInRequest is the body of POST /api/auth/login.
type SignInRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordVerifyRequest is the body of POST /api/auth/reset-password/verify.
type ResetPasswordVerifyRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

// SettingsRequest is the body of PUT /api/settings.
// Every field is optional; only provided fields are applied.
type SettingsRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
	NewPassword     *string `json:"newPassword,omitempty" validate:"omitempty,password"`

	Notifications *NotificationSettings `json:"notifications,omitempty"`
	Appearance    *AppearanceSettings   `json:"appearance,omitempty"`
	API           *APISettings          `json:"api,omitempty"`
}

// NotificationSettings toggles the notification channels.
type NotificationSettings struct {
	Email *bool `json:"email,omitempty"`
	Push  *bool `json:"push,omitempty"`
	Agent *bool `json:"agent,omitempty"`
}

// AppearanceSettings toggles dashboard visuals.
type AppearanceSettings struct {
	Animations *bool `json:"animations,omitempty"`
}

// APISettings holds the outgoing webhook configuration.
type APISettings struct {
	WebhookURL *string `json:"webhookUrl,omitempty" validate:"omitempty,url"`
}

// SettingsResult reports the outcome of a settings update.
type SettingsResult struct {
	// EmailChangePending is true when a verification link was sent to a new
	// address and the stored e-mail is left untouched until it is confirmed.
	EmailChangePending bool
}

// ProfileUpdateRequest is the body of POST /api/profile/update.
type ProfileUpdateRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Email string `json:"email" validate:"required,email"`
}

// ProfileData is a partial profile change applied by the profile service.
type ProfileData struct {
	Name  *string
	Email *string
	Image *string
}

// ProfileProgress is the response of GET /api/profile/progress.
type ProfileProgress struct {
	Percentage    int      `json:"percentage"`
	MissingFields []string `json:"missingFields"`
}

// ContactCategory enumerates the contact form topics.
type ContactCategory string

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Category      ContactCategory `json:"category" validate:"required,oneof=general support sales partnership press"`
	Name          string          `json:"name" validate:"required,min=2,max=50"`
	Email         string          `json:"email" validate:"required,email"`
	Message       string          `json:"message" validate:"required,min=10,max=1000"`
	AttachmentURL string          `json:"attachmentUrl,omitempty" validate:"omitempty,url"`
}

// MessageResponse is the generic `{"message": "..."}` body.
type MessageResponse struct {
	Message string `json:"message"`
}

// AvatarResponse is the body returned after a successful avatar upload.
type AvatarResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}
