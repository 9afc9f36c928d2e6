package domain

import (
	"strings"
	"unicode"
)

// ScopesAllowed reports whether every requested scope is contained in the
// granted set. An empty request is vacuously allowed.
func ScopesAllowed(granted, requested []string) bool {
	if len(requested) == 0 {
		return true
	}

	set := make(map[string]struct{}, len(granted))
	for _, scope := range granted {
		set[scope] = struct{}{}
	}

	for _, scope := range requested {
		if _, ok := set[scope]; !ok {
			return false
		}
	}
	return true
}

// ParseScope splits the space-delimited scope encoding used in storage.
// An empty encoding parses to nil, not an empty slice.
func ParseScope(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// JoinScope renders scopes in the space-delimited storage encoding.
func JoinScope(scopes []string) string {
	return strings.Join(scopes, " ")
}

// ValidateScope checks that every scope value survives the space-delimited
// storage encoding: values must be non-empty and free of whitespace.
func ValidateScope(scopes []string) error {
	for _, scope := range scopes {
		if scope == "" || strings.IndexFunc(scope, unicode.IsSpace) >= 0 {
			return ErrInvalidScope
		}
	}
	return nil
}
