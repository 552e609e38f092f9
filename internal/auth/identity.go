package auth

import "encoding/json"

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "google", "keycloak"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // verified email returned by provider
	EmailVerified  bool   // whether provider asserts email ownership
	Name           string // display name claim, may be empty

	// RawTags is the tags claim exactly as the provider sent it: absent,
	// a native array, a JSON-encoded array string, or a bare string.
	// Normalization happens once, at session creation, never here.
	RawTags json.RawMessage
}
