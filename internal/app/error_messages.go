// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// Agentity HTTP handlers and middleware.
//
// All Msg* constants are human-readable message strings written into HTTP
// response bodies. Keeping them in one place keeps the wording of the API
// consistent between routes.
package app

const (
	// MsgInvalidJSON is returned when a request body cannot be decoded.
	MsgInvalidJSON = "Invalid request body"

	// MsgSomethingWentWrong hides unexpected failures of the public routes.
	MsgSomethingWentWrong = "Something went wrong. Please try again later."

	// MsgInternalServerError is returned by the session guard when the
	// session store fails.
	MsgInternalServerError = "Internal server error"

	MsgUserAlreadyExists = "User with this email already exists"
	MsgUserNotFound      = "User not found"
	MsgEmailInUse        = "Email is already in use"
	MsgProviderNotFound  = "Unsupported sign in provider"

	MsgSignedOut         = "Signed out successfully"
	MsgSignedOutAll      = "Signed out of all sessions"
	MsgPasswordResetSent = "If an account exists with this email, you will receive password reset instructions."

	// MsgResetTokenInvalid covers unknown, already used and mismatched
	// reset tokens.
	MsgResetTokenInvalid = "Invalid or expired reset token"
	MsgResetTokenExpired = "Reset token has expired"
	MsgPasswordReset     = "Password has been reset successfully"

	MsgMissingVerificationToken = "Missing verification token"
	MsgInvalidVerificationToken = "Invalid verification token"
	MsgVerificationTokenExpired = "Verification token has expired"

	MsgSettingsUpdated         = "Settings updated successfully"
	MsgProfileUpdated          = "Profile updated successfully"
	MsgEmailChangePending      = " Please check your new email address for verification."
	MsgCurrentPasswordRequired = "Current password is required"
	MsgInvalidCurrentPassword  = "Invalid current password"

	MsgNoFileProvided  = "No file provided"
	MsgAvatarUploaded  = "Avatar uploaded successfully"
	MsgContactReceived = "Message sent successfully"
)
