package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt embeds cost and a fresh random salt in every hash, so equal inputs
// never hash to equal outputs and stored hashes stay self-describing.
const hashCost = 12

// ErrMismatch is returned by Verify when the candidate does not match.
var ErrMismatch = errors.New("password mismatch")

func Hash(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func Verify(hash string, candidate string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)); err != nil {
		return ErrMismatch
	}
	return nil
}
