package providers

import (
	"context"

	"github.com/playi/play-silhouette/core"
)

// MockID is the registered provider name of the test double.
const MockID = "mock"

// Predefined test access tokens
const (
	ValidToken1 = "mock_access_token_1"
	ValidToken2 = "mock_access_token_2"
	ValidToken3 = "mock_access_token_3"
)

// Predefined test profiles
var (
	Profile1 = &core.Profile{
		LoginInfo: core.LoginInfo{ProviderID: MockID, ProviderKey: "mock_user_1"},
		FirstName: "Mock",
		LastName:  "One",
		FullName:  "Mock User One",
		Email:     "user1@mock.test",
		AvatarURL: "https://mock.test/avatar1.jpg",
	}

	Profile2 = &core.Profile{
		LoginInfo: core.LoginInfo{ProviderID: MockID, ProviderKey: "mock_user_2"},
		FirstName: "Mock",
		LastName:  "Two",
		FullName:  "Mock User Two",
		Email:     "user2@mock.test",
		AvatarURL: "https://mock.test/avatar2.jpg",
	}

	Profile3 = &core.Profile{
		LoginInfo: core.LoginInfo{ProviderID: MockID, ProviderKey: "mock_user_3"},
		FullName:  "Mock User Three",
		Email:     "user3@mock.test",
	}
)

// MockProvider is a test implementation of core.SocialProvider backed by
// in-memory token tables.
type MockProvider struct {
	tokenToProfile map[string]*core.Profile
	tokenToError   map[string]*core.ProfileError

	// track method calls for verification
	RetrieveProfileCalls int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		tokenToProfile: map[string]*core.Profile{
			ValidToken1: Profile1,
			ValidToken2: Profile2,
			ValidToken3: Profile3,
		},
		tokenToError: map[string]*core.ProfileError{},
	}
}

// FailWith makes the provider answer the given token with a provider error.
func (m *MockProvider) FailWith(accessToken, code, message string) {
	m.tokenToError[accessToken] = &core.ProfileError{ProviderID: MockID, Code: code, Message: message}
}

func (m *MockProvider) ID() string { return MockID }

func (m *MockProvider) RetrieveProfile(ctx context.Context, auth core.OAuth2Info) (*core.Profile, error) {
	m.RetrieveProfileCalls++

	if apiErr, ok := m.tokenToError[auth.AccessToken]; ok {
		return nil, apiErr
	}

	profile, ok := m.tokenToProfile[auth.AccessToken]
	if !ok {
		return nil, &core.ProfileError{ProviderID: MockID, Code: "401", Message: "Invalid token"}
	}

	cp := *profile
	return &cp, nil
}

func (m *MockProvider) WithSettings(transform func(core.OAuth2Settings) core.OAuth2Settings) core.SocialProvider {
	// The double carries no settings; reconfiguration still yields a fresh
	// instance sharing the token tables.
	cp := *m
	return &cp
}
