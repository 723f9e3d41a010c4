// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the request parsing helpers. Callers can match against
// them with [errors.Is].
var (
	// ErrNoSessionToken is returned when the request carries neither the
	// session cookie nor an "Authorization: Bearer" header.
	ErrNoSessionToken = errors.New("no session token")

	// ErrInvalidJSON is returned when the request body is not the expected
	// JSON document.
	ErrInvalidJSON = errors.New("invalid JSON body")

	// ErrNoFileProvided is returned when a multipart upload has no "file"
	// part.
	ErrNoFileProvided = errors.New("no file provided")
)
