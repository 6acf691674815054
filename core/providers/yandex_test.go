package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playi/play-silhouette/core"
	"github.com/playi/play-silhouette/core/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yandexTestProvider(t *testing.T, handler http.HandlerFunc) core.SocialProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return providers.NewYandexProvider(providers.WithHTTPClient(srv.Client())).
		WithSettings(func(s core.OAuth2Settings) core.OAuth2Settings {
			s.APIURL = srv.URL + "/info?format=json"
			return s
		})
}

func TestYandexRetrieveProfile_Success(t *testing.T) {
	provider := yandexTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OAuth some_token", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"id": "1000034426",
			"first_name": "Ivan",
			"last_name": "Ivanov",
			"real_name": "Ivan Ivanov",
			"default_email": "ivan@yandex.ru",
			"default_avatar_id": "31804/BYkogAC6AtB1"
		}`))
	})

	profile, err := provider.RetrieveProfile(context.Background(), core.OAuth2Info{AccessToken: "some_token"})
	require.NoError(t, err)

	assert.Equal(t, core.LoginInfo{ProviderID: "yandex", ProviderKey: "1000034426"}, profile.LoginInfo)
	assert.Equal(t, "Ivan", profile.FirstName)
	assert.Equal(t, "Ivanov", profile.LastName)
	assert.Equal(t, "Ivan Ivanov", profile.FullName)
	assert.Equal(t, "ivan@yandex.ru", profile.Email)
	assert.Equal(t, "https://avatars.yandex.net/get-yapic/31804/BYkogAC6AtB1/islands-200", profile.AvatarURL)
}

func TestYandexRetrieveProfile_NoAvatar(t *testing.T) {
	provider := yandexTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"1000034426","display_name":"ivan2005"}`))
	})

	profile, err := provider.RetrieveProfile(context.Background(), core.OAuth2Info{AccessToken: "some_token"})
	require.NoError(t, err)

	assert.Equal(t, "ivan2005", profile.FullName)
	assert.Empty(t, profile.AvatarURL)
}

func TestYandexRetrieveProfile_ErrorEnvelope(t *testing.T) {
	provider := yandexTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_token","error_description":"expired_token"}`))
	})

	_, err := provider.RetrieveProfile(context.Background(), core.OAuth2Info{AccessToken: "bad"})

	var profileErr *core.ProfileError
	require.ErrorAs(t, err, &profileErr)
	assert.Equal(t, "yandex", profileErr.ProviderID)
	assert.Equal(t, "invalid_token", profileErr.Code)
	assert.Equal(t, "expired_token", profileErr.Message)
	assert.Equal(t, "[Silhouette][yandex] Error retrieving profile information. Error code: invalid_token, message: expired_token", profileErr.Error())
}

func TestYandexRetrieveProfile_MissingID(t *testing.T) {
	provider := yandexTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name":"ivan2005"}`))
	})

	_, err := provider.RetrieveProfile(context.Background(), core.OAuth2Info{AccessToken: "some_token"})

	var parseErr *core.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "id", parseErr.Field)
}
