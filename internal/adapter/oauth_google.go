package adapter

import (
	"context"
	"fmt"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

type idTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type googleProvider struct {
	oauth    *oauth2.Config
	validate idTokenValidator
}

// NewGoogleProvider returns the Google [OAuthProvider]. The profile is read
// from the ID token returned by the code exchange after its signature and
// audience are verified.
func NewGoogleProvider(client config.OAuthClient, redirectURL string) OAuthProvider {
	return newGoogleProvider(&oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
	}, idtoken.Validate)
}

func newGoogleProvider(cfg *oauth2.Config, validate idTokenValidator) *googleProvider {
	return &googleProvider{oauth: cfg, validate: validate}
}

func (p *googleProvider) Name() models.OAuthProvider { return models.ProviderGoogle }

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *googleProvider) Exchange(ctx context.Context, code string) (models.OAuthProfile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return models.OAuthProfile{}, fmt.Errorf("%w: %w", ErrOAuthExchange, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return models.OAuthProfile{}, fmt.Errorf("%w: id_token missing from token response", ErrOAuthExchange)
	}

	payload, err := p.validate(ctx, rawIDToken, p.oauth.ClientID)
	if err != nil {
		return models.OAuthProfile{}, fmt.Errorf("validate id token: %w", err)
	}

	email := claimString(payload.Claims, "email")
	if email == "" {
		return models.OAuthProfile{}, ErrMissingProfileEmail
	}

	return models.OAuthProfile{
		ID:       payload.Subject,
		Email:    email,
		Name:     claimString(payload.Claims, "name"),
		Image:    claimString(payload.Claims, "picture"),
		Provider: models.ProviderGoogle,
	}, nil
}

func claimString(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}
