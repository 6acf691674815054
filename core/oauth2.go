package core

import (
	"time"

	"golang.org/x/oauth2"
)

// OAuth2Info is the credential bundle produced by a completed OAuth2
// handshake. The access token is required, everything else depends on the
// provider. Callers pass it in per request; it is never mutated or retained
// by a provider.
type OAuth2Info struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// OAuth2InfoFromToken converts a token obtained by an external
// golang.org/x/oauth2 handshake into an OAuth2Info.
func OAuth2InfoFromToken(t *oauth2.Token) OAuth2Info {
	info := OAuth2Info{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		if d := time.Until(t.Expiry); d > 0 {
			info.ExpiresIn = int(d / time.Second)
		}
	}
	return info
}

// Token converts the info back into a golang.org/x/oauth2 token.
func (i OAuth2Info) Token() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  i.AccessToken,
		TokenType:    i.TokenType,
		RefreshToken: i.RefreshToken,
	}
	if i.ExpiresIn > 0 {
		t.Expiry = time.Now().Add(time.Duration(i.ExpiresIn) * time.Second)
	}
	return t
}

// OAuth2Settings is the per-provider configuration. Providers treat their
// settings as immutable: reconfiguration goes through
// SocialProvider.WithSettings, which allocates a new provider instance, so
// in-flight requests on the old instance are unaffected.
type OAuth2Settings struct {
	// APIURL is the profile endpoint template. A %s verb, when present, is
	// substituted with the access token.
	APIURL       string   `yaml:"api_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}
