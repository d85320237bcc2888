package service

import (
	"errors"

	"github.com/foodies/foodies-api/internal/repository/ports"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrEmailAlreadyUsed      = errors.New("an account already exists for this email")
	ErrUserNotFound          = errors.New("user not found")
	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrAccountNotFound       = errors.New("no account exists for this email")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUnauthenticated       = errors.New("authentication failed")
	ErrEmailUnverified       = errors.New("email not verified by the identity provider")
	ErrFederatedTokenInvalid = errors.New("invalid identity token")
	ErrResetTokenInvalid     = errors.New("reset token invalid or expired")
	ErrForbidden             = errors.New("not allowed to modify this resource")
	ErrTransaction           = errors.New("transaction failed")
	ErrPersistence           = errors.New("persistence failure")
	ErrStorageDisabled       = errors.New("image storage not configured")
)

func isNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ports.ErrDuplicate)
}
