package account

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "vaultpay/pkg/domain-errors"
)

// HashPIN creates a bcrypt hash of the provided PIN for storage.
func HashPIN(pin string) (string, error) {
	if pin == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "pin cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeBadRequest, "pin is too long")
		}
		return "", fmt.Errorf("could not hash pin: %w", err)
	}
	return string(hashed), nil
}

// VerifyPIN checks if a plaintext PIN matches a bcrypt hash.
func VerifyPIN(pin, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return fmt.Errorf("could not verify pin: %w", err)
	}
	return nil
}
