package domain

import "errors"

var (
	// ErrInvalidURIList is returned when a redirect URI list is empty or
	// contains a malformed entry
	ErrInvalidURIList = errors.New("invalid redirect URI list")

	// ErrNoRedirectURI is returned when an application has no registered
	// redirect URI to fall back on
	ErrNoRedirectURI = errors.New("no redirect URI registered")

	// ErrInvalidClientType is returned when the client type is not a
	// registered choice
	ErrInvalidClientType = errors.New("invalid client type")

	// ErrInvalidGrantType is returned when the authorization grant type is
	// not a registered choice
	ErrInvalidGrantType = errors.New("invalid authorization grant type")

	// ErrClientSecretRequired is returned when a confidential application
	// carries an empty client secret
	ErrClientSecretRequired = errors.New("confidential client requires a client secret")

	// ErrInvalidClientSecret is returned when a presented client secret
	// does not match the stored hash
	ErrInvalidClientSecret = errors.New("invalid client secret")

	// ErrInvalidScope is returned when a scope value cannot survive the
	// space-delimited storage encoding
	ErrInvalidScope = errors.New("invalid scope value")

	// ErrApplicationNotFound is returned when no application matches the
	// given identifier
	ErrApplicationNotFound = errors.New("application not found")

	// ErrGrantNotFound is returned when no live grant matches the given
	// authorization code
	ErrGrantNotFound = errors.New("grant not found")

	// ErrGrantExpired is returned when an authorization code is exchanged
	// past its expiry
	ErrGrantExpired = errors.New("grant expired")

	// ErrRedirectURIMismatch is returned when the redirect URI presented at
	// exchange does not match the one the code was bound to
	ErrRedirectURIMismatch = errors.New("redirect URI mismatch")

	// ErrAccessTokenNotFound is returned when no access token matches the
	// given token string
	ErrAccessTokenNotFound = errors.New("access token not found")

	// ErrRefreshTokenNotFound is returned when no refresh token matches the
	// given token string
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrRefreshTokenConflict is returned when a second refresh token is
	// bound to an access token that already has one
	ErrRefreshTokenConflict = errors.New("access token already has a refresh token")

	// ErrUniquenessCollision is returned by a repository when a generated
	// credential collides with a stored one. Services recover by
	// regenerating; callers never see it.
	ErrUniquenessCollision = errors.New("generated credential already exists")

	// ErrDatabaseQuery is returned when a storage operation fails
	ErrDatabaseQuery = errors.New("database query error")

	// ErrInternal is returned when there is an internal error
	ErrInternal = errors.New("internal error")
)
