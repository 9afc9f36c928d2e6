// Package credentials generates the random identifiers handed out by the
// authorization server: client credentials, authorization codes and token
// strings. All values are URL-safe and carry no structure; token values
// mean nothing outside the store that issued them.
package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Entropy sizes in raw bytes, before base64 expansion.
const (
	clientIDBytes     = 24
	clientSecretBytes = 48
	grantCodeBytes    = 32
	tokenBytes        = 32
)

// GenerateClientID returns a new public client identifier.
func GenerateClientID() string {
	return randomString(clientIDBytes)
}

// GenerateClientSecret returns a new client secret.
func GenerateClientSecret() string {
	return randomString(clientSecretBytes)
}

// GenerateGrantCode returns a new authorization code.
func GenerateGrantCode() string {
	return randomString(grantCodeBytes)
}

// GenerateToken returns a new access or refresh token string.
func GenerateToken() string {
	return randomString(tokenBytes)
}

// randomString returns n random bytes encoded with the unpadded URL-safe
// base64 alphabet, so values survive query strings and the space-delimited
// storage encodings unescaped.
func randomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Errorf("failed to generate random string: %w", err))
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
