package providers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/playi/play-silhouette/core"
)

// YandexID is the registered provider name for Yandex accounts.
const YandexID = "yandex"

const (
	yandexAPIURL        = "https://login.yandex.ru/info?format=json"
	yandexAvatarBaseURL = "https://avatars.yandex.net/get-yapic"
	yandexAvatarSize    = "islands-200"
)

// OAuthAuthorizer sets the "OAuth" Authorization scheme used by the Yandex
// login API.
func OAuthAuthorizer(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "OAuth "+accessToken)
}

// NewYandexProvider builds a provider for the Yandex login info endpoint.
// Yandex reports failures as a flat {"error":…,"error_description":…} object
// rather than the nested envelope Microsoft and Google use.
func NewYandexProvider(opts ...Option) *OAuth2Provider {
	settings := core.OAuth2Settings{APIURL: yandexAPIURL}
	return NewOAuth2Provider(YandexID, settings, YandexProfileParser{}, yandexClassifier, OAuthAuthorizer, opts...)
}

func yandexClassifier(body json.RawMessage) *core.ProfileError {
	var envelope struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		return nil
	}
	return &core.ProfileError{
		Code:    envelope.Error,
		Message: envelope.Description,
	}
}

// YandexProfileParser maps the Yandex login info response onto the canonical
// profile, deriving the avatar URL from the default avatar id the same way
// the Yandex widget does.
type YandexProfileParser struct{}

func (YandexProfileParser) Parse(content json.RawMessage, _ core.OAuth2Info) (*core.Profile, error) {
	var user struct {
		ID              string `json:"id"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		RealName        string `json:"real_name"`
		DisplayName     string `json:"display_name"`
		DefaultEmail    string `json:"default_email"`
		DefaultAvatarID string `json:"default_avatar_id"`
	}
	if err := json.Unmarshal(content, &user); err != nil {
		return nil, &core.ParseError{ProviderID: YandexID, Err: err}
	}
	if user.ID == "" {
		return nil, &core.ParseError{ProviderID: YandexID, Field: "id"}
	}

	fullName := user.RealName
	if fullName == "" {
		fullName = user.DisplayName
	}

	avatarURL := ""
	if user.DefaultAvatarID != "" {
		avatarURL = fmt.Sprintf("%s/%s/%s", yandexAvatarBaseURL, user.DefaultAvatarID, yandexAvatarSize)
	}

	return &core.Profile{
		LoginInfo: core.LoginInfo{ProviderID: YandexID, ProviderKey: user.ID},
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  fullName,
		Email:     user.DefaultEmail,
		AvatarURL: avatarURL,
	}, nil
}
