package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/playi/play-silhouette/core"
	"github.com/playi/play-silhouette/core/providers"
	"github.com/playi/play-silhouette/storage"

	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "12345678901234567890123456789012"

// Stack is a fully wired silhouette server backed by a temporary SQLite
// database and a mock provider API.
type Stack struct {
	Server   *httptest.Server
	Provider *MockProviderServer
}

func newStack(t *testing.T) *Stack {
	t.Helper()

	providerAPI := NewMockProviderServer()
	t.Cleanup(providerAPI.Close)

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "silhouette.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	config := &core.Config{
		JWT: core.JWTConfig{
			Secret:               "integration-test-secret",
			AccessTokenDuration:  1800,
			RefreshTokenDuration: 2592000,
		},
		Crypto: core.CryptoConfig{EncryptionKey: testEncryptionKey},
	}

	microsoft := providers.NewMicrosoftProvider().WithSettings(func(s core.OAuth2Settings) core.OAuth2Settings {
		s.APIURL = providerAPI.URL() + "/v1.0/me"
		return s
	})

	crypto, err := core.NewCryptoService(config.Crypto.EncryptionKey)
	require.NoError(t, err)

	authService := core.NewAuthService(repo, config, map[string]core.SocialProvider{
		microsoft.ID(): microsoft,
	}, crypto)
	server := core.NewServer(authService, config)

	mux := http.NewServeMux()
	mux.HandleFunc("/login", server.HandleLogin)
	mux.HandleFunc("/refresh", server.HandleRefresh)
	mux.HandleFunc("/logout", server.HandleLogout)
	mux.HandleFunc("/logout-all", server.HandleLogoutAll)
	mux.HandleFunc("/userinfo", server.HandleUserInfo)
	mux.HandleFunc("/health", server.HandleHealth)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return &Stack{Server: ts, Provider: providerAPI}
}

func (s *Stack) post(t *testing.T, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(s.Server.URL+path, "application/json", bytes.NewReader(jsonBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (s *Stack) get(t *testing.T, path, accessToken string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.Server.URL+path, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (s *Stack) login(t *testing.T, accessToken string) core.LoginResponse {
	t.Helper()

	resp, data := s.post(t, "/login", map[string]string{
		"provider":     "microsoft",
		"access_token": accessToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login response: %s", data)

	var loginResp core.LoginResponse
	require.NoError(t, json.Unmarshal(data, &loginResp))
	return loginResp
}
