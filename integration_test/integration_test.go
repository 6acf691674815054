package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/playi/play-silhouette/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow_EndToEnd(t *testing.T) {
	stack := newStack(t)

	loginResp := stack.login(t, "valid_token_1")
	assert.NotEmpty(t, loginResp.AccessToken)
	assert.NotEmpty(t, loginResp.RefreshToken)
	assert.NotEmpty(t, loginResp.UserID)

	resp, data := stack.get(t, "/userinfo", loginResp.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var userInfo core.UserInfo
	require.NoError(t, json.Unmarshal(data, &userInfo))
	assert.Equal(t, loginResp.UserID, userInfo.UserID)
	require.Len(t, userInfo.Profiles, 1)

	profile := userInfo.Profiles[0]
	assert.Equal(t, core.LoginInfo{ProviderID: "microsoft", ProviderKey: "42"}, profile.LoginInfo)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, "ada@example.com", profile.Email)
}

func TestLogin_SameUserAcrossSessions(t *testing.T) {
	stack := newStack(t)

	first := stack.login(t, "valid_token_1")
	second := stack.login(t, "valid_token_1")

	assert.Equal(t, first.UserID, second.UserID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestLogin_DistinctUsersForDistinctIdentities(t *testing.T) {
	stack := newStack(t)

	ada := stack.login(t, "valid_token_1")
	alan := stack.login(t, "valid_token_2")

	assert.NotEqual(t, ada.UserID, alan.UserID)
}

func TestLogin_ProviderRejectsToken(t *testing.T) {
	stack := newStack(t)

	resp, data := stack.post(t, "/login", map[string]string{
		"provider":     "microsoft",
		"access_token": "revoked_token",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "login_failed", body["error"])
}

func TestRefreshAndLogout(t *testing.T) {
	stack := newStack(t)
	loginResp := stack.login(t, "valid_token_1")

	resp, data := stack.post(t, "/refresh", map[string]string{"refresh_token": loginResp.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshed map[string]string
	require.NoError(t, json.Unmarshal(data, &refreshed))
	assert.NotEmpty(t, refreshed["access_token"])

	resp, _ = stack.post(t, "/logout", map[string]string{"refresh_token": loginResp.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = stack.post(t, "/refresh", map[string]string{"refresh_token": loginResp.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserInfo_RequiresValidAccessToken(t *testing.T) {
	stack := newStack(t)

	resp, _ := stack.get(t, "/userinfo", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = stack.get(t, "/userinfo", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	stack := newStack(t)

	resp, _ := stack.get(t, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
