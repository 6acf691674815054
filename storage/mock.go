package storage

import (
	"context"
	"sync"
	"time"

	"github.com/playi/play-silhouette/core"

	"github.com/google/uuid"
)

// Predefined users for tests
var (
	User1 = &core.User{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Logins: []core.Login{
			{
				LoginInfo: core.LoginInfo{ProviderID: "mock", ProviderKey: "mock_user_1"},
				FullName:  "Mock User One",
				Email:     "user1@mock.test",
				AvatarURL: "https://mock.test/avatar1.jpg",
			},
		},
	}

	User2 = &core.User{
		ID:        uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Logins: []core.Login{
			{
				LoginInfo: core.LoginInfo{ProviderID: "google", ProviderKey: "mock_user_2"},
				FullName:  "Mock User Two",
				Email:     "user2@mock.test",
			},
			{
				LoginInfo: core.LoginInfo{ProviderID: "yandex", ProviderKey: "mock_user_2"},
				FullName:  "Mock User Two",
				Email:     "user2@mock.test",
			},
		},
	}
)

// MockRepository is an in-memory core.Repository for tests and local runs.
type MockRepository struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*core.User
	refreshTokens map[string]*core.RefreshToken
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:         make(map[uuid.UUID]*core.User),
		refreshTokens: make(map[string]*core.RefreshToken),
	}
}

// Seed installs fixture users.
func (m *MockRepository) Seed(users ...*core.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range users {
		m.users[user.ID] = cloneUser(user)
	}
}

func cloneUser(user *core.User) *core.User {
	cp := *user
	cp.Logins = append([]core.Login(nil), user.Logins...)
	return &cp
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneUser(user), nil
}

func (m *MockRepository) FindByLoginInfo(ctx context.Context, login core.LoginInfo) (*core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		for _, l := range user.Logins {
			if l.LoginInfo == login {
				return cloneUser(user), nil
			}
		}
	}
	return nil, core.ErrNotFound
}

func (m *MockRepository) CreateUser(ctx context.Context, user *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return core.ErrAlreadyExists
	}
	for _, existing := range m.users {
		for _, l := range existing.Logins {
			for _, nl := range user.Logins {
				if l.LoginInfo == nl.LoginInfo {
					return core.ErrAlreadyExists
				}
			}
		}
	}

	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *MockRepository) UpsertLogin(ctx context.Context, userID uuid.UUID, login core.Login) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return core.ErrNotFound
	}

	for i := range user.Logins {
		if user.Logins[i].LoginInfo == login.LoginInfo {
			if login.RefreshToken == "" {
				login.RefreshToken = user.Logins[i].RefreshToken
			}
			user.Logins[i] = login
			user.UpdatedAt = time.Now()
			return nil
		}
	}

	user.Logins = append(user.Logins, login)
	user.UpdatedAt = time.Now()
	return nil
}

func (m *MockRepository) CreateRefreshToken(ctx context.Context, token *core.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.refreshTokens[token.TokenID]; ok {
		return core.ErrAlreadyExists
	}

	cp := *token
	m.refreshTokens[token.TokenID] = &cp
	return nil
}

func (m *MockRepository) FindRefreshTokenByID(ctx context.Context, tokenID string) (*core.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.refreshTokens[tokenID]
	if !ok {
		return nil, core.ErrNotFound
	}

	cp := *token
	return &cp, nil
}

func (m *MockRepository) DeleteRefreshTokenByID(ctx context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.refreshTokens, tokenID)
	return nil
}

func (m *MockRepository) DeleteAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, token := range m.refreshTokens {
		if token.UserID == userID {
			delete(m.refreshTokens, id)
		}
	}
	return nil
}

func (m *MockRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var count int64
	for id, token := range m.refreshTokens {
		if token.ExpiresAt.Before(now) {
			delete(m.refreshTokens, id)
			count++
		}
	}
	return count, nil
}
