package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasscodeLength is the minimum required passcode length.
const MinPasscodeLength = 4

var (
	ErrInvalidPasscode  = errors.New("invalid passcode")
	ErrPasscodeTooShort = errors.New("passcode must be at least 4 characters")
	ErrPasscodeTooLong  = errors.New("passcode exceeds maximum length of 72 bytes")
)

// HashPasscode creates a bcrypt hash of the passcode.
func HashPasscode(passcode string, cost int) (string, error) {
	if len(passcode) < MinPasscodeLength {
		return "", ErrPasscodeTooShort
	}
	// bcrypt has a 72-byte limit
	if len(passcode) > 72 {
		return "", ErrPasscodeTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasscode compares a passcode with its hash.
func CheckPasscode(passcode, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPasscode
		}
		return err
	}
	return nil
}

// GenerateSessionSecret creates a random 32-byte secret for session signing.
func GenerateSessionSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
