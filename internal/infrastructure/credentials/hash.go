package credentials

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a client secret for storage using bcrypt. Only the
// hash is persisted; the cleartext secret is handed out once at
// registration.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckSecret checks if a client secret matches its stored hash
func CheckSecret(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errors.New("invalid client secret")
		}
		return err
	}
	return nil
}
