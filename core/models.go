package core

import (
	"time"

	"github.com/google/uuid"
)

// Login links a user to one identity at one provider and snapshots the
// canonical profile retrieved at the most recent login.
type Login struct {
	LoginInfo LoginInfo
	FirstName string
	LastName  string
	FullName  string
	Email     string
	AvatarURL string
	// RefreshToken is the encrypted provider refresh token, empty when the
	// provider issued none.
	RefreshToken string
}

// User represents an authenticated user with linked provider identities.
type User struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Logins    []Login
}

// RefreshToken represents a Silhouette session token. Only a bcrypt hash of
// the token key is stored.
type RefreshToken struct {
	TokenID      string
	TokenKeyHash string
	UserID       uuid.UUID
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
