package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

type graphUser struct {
	ID                string `json:"id"`
	GivenName         string `json:"givenName,omitempty"`
	Surname           string `json:"surname,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
}

var graphUsers = map[string]graphUser{
	"valid_token_1": {
		ID:                "42",
		GivenName:         "Ada",
		Surname:           "Lovelace",
		DisplayName:       "Ada Lovelace",
		UserPrincipalName: "ada@example.com",
	},
	"valid_token_2": {
		ID:                "43",
		GivenName:         "Alan",
		Surname:           "Turing",
		UserPrincipalName: "alan@example.com",
	},
}

// MockProviderServer emulates a Microsoft Graph style profile endpoint:
// known bearer tokens answer with a user object, everything else with the
// provider error envelope.
type MockProviderServer struct {
	server *httptest.Server
}

func NewMockProviderServer() *MockProviderServer {
	m := &MockProviderServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1.0/me", m.handleMe)

	m.server = httptest.NewServer(mux)
	return m
}

func (m *MockProviderServer) URL() string {
	return m.server.URL
}

func (m *MockProviderServer) Close() {
	m.server.Close()
}

func (m *MockProviderServer) handleMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	user, ok := graphUsers[token]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    401,
				"message": "Invalid token",
			},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
