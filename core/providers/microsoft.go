package providers

import (
	"encoding/json"

	"github.com/playi/play-silhouette/core"
)

// MicrosoftID is the registered provider name for Microsoft accounts.
const MicrosoftID = "microsoft"

const microsoftAPIURL = "https://graph.microsoft.com/v1.0/me"

// NewMicrosoftProvider builds a provider for the Microsoft Graph user
// endpoint. Graph expects the access token in the Authorization header and
// reports failures in the {"error":{"code":…,"message":…}} envelope.
func NewMicrosoftProvider(opts ...Option) *OAuth2Provider {
	settings := core.OAuth2Settings{APIURL: microsoftAPIURL}
	return NewOAuth2Provider(MicrosoftID, settings, MicrosoftProfileParser{}, codeMessageClassifier, BearerAuthorizer, opts...)
}

// MicrosoftProfileParser maps Microsoft Graph user objects onto the
// canonical profile. The id field is mandatory; mail is preferred for the
// email and falls back to userPrincipalName, which Graph populates for
// directory accounts without a mailbox.
type MicrosoftProfileParser struct{}

func (MicrosoftProfileParser) Parse(content json.RawMessage, _ core.OAuth2Info) (*core.Profile, error) {
	var user struct {
		ID                string `json:"id"`
		GivenName         string `json:"givenName"`
		Surname           string `json:"surname"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.Unmarshal(content, &user); err != nil {
		return nil, &core.ParseError{ProviderID: MicrosoftID, Err: err}
	}
	if user.ID == "" {
		return nil, &core.ParseError{ProviderID: MicrosoftID, Field: "id"}
	}

	email := user.Mail
	if email == "" {
		email = user.UserPrincipalName
	}

	return &core.Profile{
		LoginInfo: core.LoginInfo{ProviderID: MicrosoftID, ProviderKey: user.ID},
		FirstName: user.GivenName,
		LastName:  user.Surname,
		FullName:  user.DisplayName,
		Email:     email,
	}, nil
}
