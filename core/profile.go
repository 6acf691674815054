package core

// LoginInfo identifies a user within a single provider's namespace.
// It is a plain value: two LoginInfo values are equal when both fields match.
type LoginInfo struct {
	ProviderID  string `json:"provider_id"`
	ProviderKey string `json:"provider_key"`
}

// Profile is the canonical user record normalized from a provider response.
// LoginInfo is always populated; every other field is optional and stays
// empty when the source provider does not expose it.
type Profile struct {
	LoginInfo LoginInfo `json:"login_info"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}
