package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rhysmalcolm13/agentity/internal/validators"
	"github.com/Rhysmalcolm13/agentity/models"
)

// AuthValidationService validates request payloads and normalizes e-mail
// addresses before delegating to the wrapped AuthService.
type AuthValidationService struct {
	inner     AuthService
	validator validators.Validator
}

func NewAuthValidationService(v validators.Validator) AuthServiceWrapper {
	return &AuthValidationService{validator: v}
}

func (v *AuthValidationService) Wrap(inner AuthService) AuthService {
	v.inner = inner
	return v
}

func (v *AuthValidationService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.User{}, fmt.Errorf("invalid registration request: %w", err)
	}
	req.Email = normalizeEmail(req.Email)
	return v.inner.Register(ctx, req)
}

func (v *AuthValidationService) SignInWithCredentials(ctx context.Context, req models.SignInRequest) (models.User, models.Session, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("invalid sign in request: %w", err)
	}
	req.Email = normalizeEmail(req.Email)
	return v.inner.SignInWithCredentials(ctx, req)
}

func (v *AuthValidationService) OAuthAuthorizeURL(ctx context.Context, provider models.OAuthProvider, callbackURL string, rememberMe bool) (string, error) {
	return v.inner.OAuthAuthorizeURL(ctx, provider, callbackURL, rememberMe)
}

func (v *AuthValidationService) SignInWithOAuth(ctx context.Context, provider models.OAuthProvider, code, state, providerError string) (OAuthSignIn, error) {
	return v.inner.SignInWithOAuth(ctx, provider, code, state, providerError)
}

func (v *AuthValidationService) SignOut(ctx context.Context, token string) error {
	return v.inner.SignOut(ctx, token)
}

func (v *AuthValidationService) SignOutEverywhere(ctx context.Context, userID string) (int64, error) {
	return v.inner.SignOutEverywhere(ctx, userID)
}

func (v *AuthValidationService) Authenticate(ctx context.Context, token string) (models.Session, models.User, error) {
	return v.inner.Authenticate(ctx, token)
}

func (v *AuthValidationService) VerifyEmail(ctx context.Context, token string) error {
	return v.inner.VerifyEmail(ctx, token)
}

func (v *AuthValidationService) RequestPasswordReset(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := v.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("invalid password reset request: %w", err)
	}
	req.Email = normalizeEmail(req.Email)
	return v.inner.RequestPasswordReset(ctx, req)
}

func (v *AuthValidationService) ResetPassword(ctx context.Context, req models.ResetPasswordVerifyRequest) error {
	if err := v.validator.Validate(ctx, req); err != nil {
		return fmt.Errorf("invalid password reset: %w", err)
	}
	return v.inner.ResetPassword(ctx, req)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
