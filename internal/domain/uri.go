package domain

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateURIs validates a redirect URI list in its space-delimited storage
// encoding. The list must contain at least one entry and every entry must
// be an absolute URI without a fragment.
func ValidateURIs(raw string) error {
	return ValidateURIList(strings.Fields(raw))
}

// ValidateURIList validates an ordered redirect URI list. It fails when the
// list is empty, when an entry contains whitespace (and so could not be
// stored space-delimited), or when an entry is not an absolute URI with a
// host or path and no fragment.
func ValidateURIList(uris []string) error {
	if len(uris) == 0 {
		return ErrInvalidURIList
	}

	for _, raw := range uris {
		if raw == "" || strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
			return ErrInvalidURIList
		}

		u, err := url.Parse(raw)
		if err != nil {
			return ErrInvalidURIList
		}
		if !u.IsAbs() || u.Fragment != "" {
			return ErrInvalidURIList
		}
		if u.Host == "" && u.Path == "" && u.Opaque == "" {
			return ErrInvalidURIList
		}
	}
	return nil
}

// ParseURIList splits the space-delimited redirect URI encoding used in
// storage. An empty encoding parses to nil.
func ParseURIList(raw string) []string {
	uris := strings.Fields(raw)
	if len(uris) == 0 {
		return nil
	}
	return uris
}

// JoinURIList renders redirect URIs in the space-delimited storage
// encoding.
func JoinURIList(uris []string) string {
	return strings.Join(uris, " ")
}

// NormalizeRedirectURI strips a single trailing slash. Registered entries
// and presented URIs are normalized the same way before comparison, so
// "https://example.com/cb" and "https://example.com/cb/" are the same
// redirect target.
func NormalizeRedirectURI(uri string) string {
	return strings.TrimSuffix(uri, "/")
}
