package service

import "errors"

var (
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrUserAlreadyExists       = errors.New("user with this email already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailInUse              = errors.New("email address is already in use")
	ErrCurrentPasswordRequired = errors.New("current password is required")
	ErrInvalidCurrentPassword  = errors.New("invalid current password")

	ErrProviderNotSupported = errors.New("oauth provider is not supported")
)
