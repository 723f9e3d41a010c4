// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package autherr defines the authentication error taxonomy shared by every
// layer of the application.
//
// Each domain failure is represented by an [*Error] carrying a
// machine-readable [Code], a human-readable message and an optional payload
// (for example the remaining lockout time or the rate-limit retry delay).
// Errors compare equal under [errors.Is] when their codes match, so callers
// can test against the exported sentinels regardless of message or data.
package autherr

import (
	"encoding/json"
	"errors"
)

// Code is a standardized, machine-readable authentication error code.
type Code string

// OAuth errors.
const (
	CodeOAuthProviderError Code = "auth/oauth-provider-error"
	CodeOAuthAccessDenied  Code = "auth/oauth-access-denied"
	CodeOAuthPopupClosed   Code = "auth/oauth-popup-closed"
	CodeOAuthCallbackError Code = "auth/oauth-callback-error"
)

// Session errors.
const (
	CodeSessionExpired Code = "auth/session-expired"
	CodeSessionInvalid Code = "auth/session-invalid"
)

// Account errors.
const (
	CodeAccountExists   Code = "auth/account-exists"
	CodeAccountDisabled Code = "auth/account-disabled"
	CodeAccountLocked   Code = "auth/account-locked"
)

// General errors.
const (
	CodeUnauthorized       Code = "auth/unauthorized"
	CodeInvalidCredentials Code = "auth/invalid-credentials"
	CodeRateLimitExceeded  Code = "auth/rate-limit-exceeded"
	CodeProfileIncomplete  Code = "auth/profile-incomplete"
)

// Upload errors.
const (
	CodeUploadError Code = "auth/upload-error"
)

// Error is a domain error with a code, a message and optional structured data.
type Error struct {
	Code    Code
	Message string
	Data    map[string]any
}

// New constructs an [*Error]. Data is optional; when several maps are given
// they are merged left to right.
func New(code Code, message string, data ...map[string]any) *Error {
	e := &Error{Code: code, Message: message}
	for _, d := range data {
		if len(d) == 0 {
			continue
		}
		if e.Data == nil {
			e.Data = make(map[string]any, len(d))
		}
		for k, v := range d {
			e.Data[k] = v
		}
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is reports whether target is an [*Error] with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// payload is the JSON shape of an [Error].
type payload struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// MarshalJSON renders the error as {"code", "message", "data"}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(payload{Code: e.Code, Message: e.Message, Data: e.Data})
}

// As extracts the first [*Error] in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Sentinels for errors.Is comparisons. Their messages are the defaults used
// when a flow has nothing more specific to say.
var (
	ErrOAuthProviderError = New(CodeOAuthProviderError, "An error occurred during sign in")
	ErrOAuthAccessDenied  = New(CodeOAuthAccessDenied, "Access was denied by the identity provider")
	ErrOAuthPopupClosed   = New(CodeOAuthPopupClosed, "The sign in window was closed")
	ErrOAuthCallbackError = New(CodeOAuthCallbackError, "The sign in callback could not be processed")

	ErrSessionExpired = New(CodeSessionExpired, "Session has expired")
	ErrSessionInvalid = New(CodeSessionInvalid, "Invalid session")

	ErrAccountExists   = New(CodeAccountExists, "An account with this email already exists. Please sign in with your existing account.")
	ErrAccountDisabled = New(CodeAccountDisabled, "This account has not been verified. Please check your email for verification instructions.")
	ErrAccountLocked   = New(CodeAccountLocked, "Account is temporarily locked. Please try again later.")

	ErrUnauthorized       = New(CodeUnauthorized, "Unauthorized")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password")
	ErrRateLimitExceeded  = New(CodeRateLimitExceeded, "Too many requests, please try again later")
	ErrProfileIncomplete  = New(CodeProfileIncomplete, "Please complete your profile to continue")

	ErrUploadError = New(CodeUploadError, "Failed to upload file")
)
