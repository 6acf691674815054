package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// LibraryID prefixes operator-visible provider error messages.
const LibraryID = "Silhouette"

// SocialProvider retrieves user profiles from a remote identity service.
// Implementations differ only in endpoint templates, auth-header conventions
// and error-envelope detection; the request/response plumbing is shared.
type SocialProvider interface {
	// ID returns the provider's registered name, used both as
	// LoginInfo.ProviderID and as the key in provider registries.
	ID() string

	// RetrieveProfile fetches the user's profile with a previously obtained
	// access token. The HTTP round trip is the only blocking step; error
	// classification and parsing run synchronously on the response body.
	// A recognized provider error envelope yields a *ProfileError and the
	// parser is never invoked on such a body.
	RetrieveProfile(ctx context.Context, auth OAuth2Info) (*Profile, error)

	// WithSettings applies a pure transformation to the provider settings
	// and returns a new, independently usable provider sharing the same
	// transport handle. The receiver is left untouched, so requests already
	// running against it are unaffected.
	WithSettings(transform func(OAuth2Settings) OAuth2Settings) SocialProvider
}

// ProfileParser turns a raw provider response body into a canonical profile.
// One implementation per provider response shape. Parsing is pure; the auth
// info is passed along for parsers that need it to resolve secondary fields.
type ProfileParser interface {
	Parse(content json.RawMessage, auth OAuth2Info) (*Profile, error)
}

// TransportError reports a failure below the application layer: the request
// never completed, or the provider answered with a non-2xx status and no
// recognizable error envelope. It is never retried here.
type TransportError struct {
	ProviderID string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transport error: %v", e.ProviderID, e.Err)
	}
	return fmt.Sprintf("%s: unexpected response status %d", e.ProviderID, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProfileError reports that the identity service itself rejected the request
// (bad token, revoked grant, rate limit). Code is kept as a string so both
// numeric and symbolic provider codes survive verbatim.
type ProfileError struct {
	ProviderID string
	Code       string
	Message    string
}

// Error renders the operator-visible format. Downstream systems pattern-match
// on this string, so the substitutions must stay verbatim.
func (e *ProfileError) Error() string {
	return fmt.Sprintf("[%s][%s] Error retrieving profile information. Error code: %s, message: %s",
		LibraryID, e.ProviderID, e.Code, e.Message)
}

// ParseError reports a response body that violated the provider's expected
// profile shape, most importantly a missing user identifier. Distinct from
// ProfileError so callers can tell "provider rejected the token" apart from
// "provider changed its response shape".
type ParseError struct {
	ProviderID string
	Field      string
	Err        error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: cannot parse profile: %v", e.ProviderID, e.Err)
	}
	return fmt.Sprintf("%s: cannot parse profile: missing mandatory field %q", e.ProviderID, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }
