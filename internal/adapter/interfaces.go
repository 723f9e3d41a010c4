// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter connects the service layer to the external collaborators of
// the server: the transactional e-mail provider, the avatar object store and
// the OAuth identity providers.
//
// HTTP-based adapters are built on [utils.HTTPClient] (resty). Non-2xx
// responses are mapped by mapHTTPError to the sentinel errors of this package
// so callers can use [errors.Is] regardless of the provider.
package adapter

import (
	"context"

	"github.com/Rhysmalcolm13/agentity/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// EmailSender delivers transactional e-mails.
type EmailSender interface {
	// Send delivers email. A nil error means the provider accepted the message.
	Send(ctx context.Context, email models.Email) error
}

// AvatarStorage persists avatar images.
type AvatarStorage interface {
	// Save stores upload under key and returns the public URL of the object.
	Save(ctx context.Context, key string, upload models.AvatarUpload) (string, error)
}

// OAuthProvider runs the authorization code flow against one identity
// provider.
type OAuthProvider interface {
	// Name identifies the provider in routes and account links.
	Name() models.OAuthProvider

	// AuthCodeURL returns the provider consent page URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (models.OAuthProfile, error)
}
