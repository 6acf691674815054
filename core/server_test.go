package core_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playi/play-silhouette/core"
	"github.com/playi/play-silhouette/core/providers"
	"github.com/playi/play-silhouette/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*core.Server, *core.Config) {
	t.Helper()

	config := &core.Config{
		JWT: core.JWTConfig{
			Secret:               "test-secret-key-for-testing-purposes-only",
			AccessTokenDuration:  1800,
			RefreshTokenDuration: 2592000,
		},
		Crypto: core.CryptoConfig{
			EncryptionKey: testEncryptionKey,
		},
	}
	repo := storage.NewMockRepository()
	providerMap := map[string]core.SocialProvider{
		providers.MockID: providers.NewMockProvider(),
	}
	crypto, err := core.NewCryptoService(config.Crypto.EncryptionKey)
	require.NoError(t, err)
	authService := core.NewAuthService(repo, config, providerMap, crypto)
	return core.NewServer(authService, config), config
}

func makeRequest(method, path string, body interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var bodyReader *bytes.Reader

	switch v := body.(type) {
	case string:
		bodyReader = bytes.NewReader([]byte(v))
	case nil:
		bodyReader = bytes.NewReader([]byte{})
	default:
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	return req, w
}

func TestHandleLogin_Success(t *testing.T) {
	server, _ := setupTestServer(t)

	reqBody := map[string]string{
		"provider":     "mock",
		"access_token": providers.ValidToken1,
	}
	req, w := makeRequest(http.MethodPost, "/login", reqBody)

	server.HandleLogin(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp core.LoginResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.UserID)
}

func TestHandleLogin_SameIdentityKeepsUser(t *testing.T) {
	server, _ := setupTestServer(t)

	login := func() core.LoginResponse {
		reqBody := map[string]string{
			"provider":     "mock",
			"access_token": providers.ValidToken1,
		}
		req, w := makeRequest(http.MethodPost, "/login", reqBody)
		server.HandleLogin(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp core.LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		return resp
	}

	first := login()
	second := login()
	assert.Equal(t, first.UserID, second.UserID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestHandleLogin_InvalidProvider(t *testing.T) {
	server, _ := setupTestServer(t)

	reqBody := map[string]string{
		"provider":     "invalid_provider",
		"access_token": "some_token",
	}
	req, w := makeRequest(http.MethodPost, "/login", reqBody)

	server.HandleLogin(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	assert.Equal(t, "invalid_provider", resp["error"])
}

func TestHandleLogin_ProviderRejectsToken(t *testing.T) {
	server, _ := setupTestServer(t)

	reqBody := map[string]string{
		"provider":     "mock",
		"access_token": "unknown_token",
	}
	req, w := makeRequest(http.MethodPost, "/login", reqBody)

	server.HandleLogin(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	assert.Equal(t, "login_failed", resp["error"])
}

func TestHandleLogin_MissingAccessToken(t *testing.T) {
	server, _ := setupTestServer(t)

	reqBody := map[string]string{
		"provider": "mock",
	}
	req, w := makeRequest(http.MethodPost, "/login", reqBody)

	server.HandleLogin(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLogin_InvalidBody(t *testing.T) {
	server, _ := setupTestServer(t)

	req, w := makeRequest(http.MethodPost, "/login", "{not json")

	server.HandleLogin(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLogin_MethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t)

	req, w := makeRequest(http.MethodGet, "/login", nil)

	server.HandleLogin(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func loginForTokens(t *testing.T, server *core.Server) core.LoginResponse {
	t.Helper()

	reqBody := map[string]string{
		"provider":     "mock",
		"access_token": providers.ValidToken1,
	}
	req, w := makeRequest(http.MethodPost, "/login", reqBody)
	server.HandleLogin(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp core.LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandleRefresh_Success(t *testing.T) {
	server, _ := setupTestServer(t)
	loginResp := loginForTokens(t, server)

	reqBody := map[string]string{"refresh_token": loginResp.RefreshToken}
	req, w := makeRequest(http.MethodPost, "/refresh", reqBody)

	server.HandleRefresh(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	assert.NotEmpty(t, resp["access_token"])
}

func TestHandleRefresh_InvalidToken(t *testing.T) {
	server, _ := setupTestServer(t)

	reqBody := map[string]string{"refresh_token": "SLRT_bogus.token"}
	req, w := makeRequest(http.MethodPost, "/refresh", reqBody)

	server.HandleRefresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleLogout_InvalidatesRefreshToken(t *testing.T) {
	server, _ := setupTestServer(t)
	loginResp := loginForTokens(t, server)

	reqBody := map[string]string{"refresh_token": loginResp.RefreshToken}
	req, w := makeRequest(http.MethodPost, "/logout", reqBody)
	server.HandleLogout(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, w = makeRequest(http.MethodPost, "/refresh", reqBody)
	server.HandleRefresh(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleLogoutAll_RequiresAuth(t *testing.T) {
	server, _ := setupTestServer(t)

	req, w := makeRequest(http.MethodPost, "/logout-all", map[string]string{})
	server.HandleLogoutAll(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleLogoutAll_InvalidatesAllTokens(t *testing.T) {
	server, _ := setupTestServer(t)
	first := loginForTokens(t, server)
	second := loginForTokens(t, server)

	req, w := makeRequest(http.MethodPost, "/logout-all", map[string]string{})
	req.Header.Set("Authorization", "Bearer "+first.AccessToken)
	server.HandleLogoutAll(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		req, w := makeRequest(http.MethodPost, "/refresh", map[string]string{"refresh_token": token})
		server.HandleRefresh(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestHandleUserInfo_ReturnsStoredProfile(t *testing.T) {
	server, _ := setupTestServer(t)
	loginResp := loginForTokens(t, server)

	req, w := makeRequest(http.MethodGet, "/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	server.HandleUserInfo(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp core.UserInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, loginResp.UserID, resp.UserID)
	require.Len(t, resp.Profiles, 1)
	assert.Equal(t, providers.Profile1.LoginInfo, resp.Profiles[0].LoginInfo)
	assert.Equal(t, providers.Profile1.Email, resp.Profiles[0].Email)
}

func TestHandleUserInfo_MissingAuth(t *testing.T) {
	server, _ := setupTestServer(t)

	req, w := makeRequest(http.MethodGet, "/userinfo", nil)
	server.HandleUserInfo(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleHealth(t *testing.T) {
	server, _ := setupTestServer(t)

	req, w := makeRequest(http.MethodGet, "/health", nil)
	server.HandleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
