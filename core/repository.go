package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

type Repository interface {
	// User operations

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	FindByLoginInfo(ctx context.Context, login LoginInfo) (*User, error)

	CreateUser(ctx context.Context, user *User) error

	// UpsertLogin refreshes the login snapshot for an existing user, adding
	// the identity when it is not linked yet.
	UpsertLogin(ctx context.Context, userID uuid.UUID, login Login) error

	// RefreshToken operations

	CreateRefreshToken(ctx context.Context, token *RefreshToken) error

	FindRefreshTokenByID(ctx context.Context, tokenID string) (*RefreshToken, error)

	DeleteRefreshTokenByID(ctx context.Context, tokenID string) error

	DeleteAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error

	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}
