package providers

import (
	"encoding/json"

	"github.com/playi/play-silhouette/core"
)

// GoogleID is the registered provider name for Google accounts.
const GoogleID = "google"

// The userinfo endpoint accepts the access token as a query parameter; the
// %s verb is substituted at request time.
const googleAPIURL = "https://www.googleapis.com/oauth2/v3/userinfo?access_token=%s"

// NewGoogleProvider builds a provider for the Google OAuth2 v3 userinfo
// endpoint. Google shares the {"error":{"code":…,"message":…}} envelope with
// Microsoft.
func NewGoogleProvider(opts ...Option) *OAuth2Provider {
	settings := core.OAuth2Settings{APIURL: googleAPIURL}
	return NewOAuth2Provider(GoogleID, settings, GoogleProfileParser{}, codeMessageClassifier, BearerAuthorizer, opts...)
}

// GoogleProfileParser maps the OIDC-style userinfo response onto the
// canonical profile. The sub claim is the mandatory user identifier.
type GoogleProfileParser struct{}

func (GoogleProfileParser) Parse(content json.RawMessage, _ core.OAuth2Info) (*core.Profile, error) {
	var user struct {
		Sub        string `json:"sub"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Picture    string `json:"picture"`
	}
	if err := json.Unmarshal(content, &user); err != nil {
		return nil, &core.ParseError{ProviderID: GoogleID, Err: err}
	}
	if user.Sub == "" {
		return nil, &core.ParseError{ProviderID: GoogleID, Field: "sub"}
	}

	return &core.Profile{
		LoginInfo: core.LoginInfo{ProviderID: GoogleID, ProviderKey: user.Sub},
		FirstName: user.GivenName,
		LastName:  user.FamilyName,
		FullName:  user.Name,
		Email:     user.Email,
		AvatarURL: user.Picture,
	}, nil
}
