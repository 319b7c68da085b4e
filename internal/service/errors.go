package service

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail           = errors.New("email already registered")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrAccountNotVerified       = errors.New("account not verified")
	ErrOTPInvalidOrExpired      = errors.New("otp invalid or expired")
	ErrUserNotFound             = errors.New("user not found")
	ErrTokenInvalid             = errors.New("token invalid")
	ErrOTPDeliveryFailed        = errors.New("failed to deliver otp")
	ErrUpstreamGenerationFailed = errors.New("recipe generation failed")
	ErrWeakPassword             = errors.New("password must be at least 6 characters")
	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrRecipeNotOwned           = errors.New("recipe belongs to another user")
	ErrFavoriteNotFound         = errors.New("favorite not found")
	ErrImageStoreUnavailable    = errors.New("image storage is not configured")
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
