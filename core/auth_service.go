package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       uuid.UUID `json:"user_id"`
}

// UserInfo is the application-side view of a user and the identities linked
// to them. Profiles are the snapshots taken at each identity's last login.
type UserInfo struct {
	UserID   uuid.UUID `json:"user_id"`
	Profiles []Profile `json:"profiles"`
}

// AuthService is the authentication layer sitting on top of the social
// provider subsystem: it turns retrieved profiles into persisted users and
// Silhouette session tokens.
type AuthService struct {
	repo      Repository
	config    *Config
	crypto    *CryptoService
	providers map[string]SocialProvider
}

func NewAuthService(repo Repository, config *Config, providers map[string]SocialProvider, crypto *CryptoService) *AuthService {
	return &AuthService{
		repo:      repo,
		config:    config,
		crypto:    crypto,
		providers: providers,
	}
}

// Login authenticates a user with an access token already obtained from the
// named provider: the profile is retrieved, the user is found or created by
// LoginInfo, the profile snapshot is stored, and a JWT access token plus a
// Silhouette refresh token are issued.
func (s *AuthService) Login(ctx context.Context, providerID string, auth OAuth2Info) (*LoginResponse, error) {
	provider, ok := s.providers[providerID]
	if !ok {
		return nil, ErrUnsupportedProvider
	}

	profile, err := provider.RetrieveProfile(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve profile: %w", err)
	}

	login := Login{
		LoginInfo: profile.LoginInfo,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		FullName:  profile.FullName,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
	}
	if login.AvatarURL == "" && login.Email != "" {
		login.AvatarURL = GravatarURL(login.Email)
	}
	if auth.RefreshToken != "" {
		encrypted, err := s.crypto.EncryptToken(auth.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		login.RefreshToken = encrypted
	}

	user, err := s.repo.FindByLoginInfo(ctx, profile.LoginInfo)
	switch {
	case errors.Is(err, ErrNotFound):
		now := time.Now()
		user = &User{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
			Logins:    []Login{login},
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	default:
		if err := s.repo.UpsertLogin(ctx, user.ID, login); err != nil {
			return nil, fmt.Errorf("failed to update login: %w", err)
		}
	}

	fullToken, tokenParts, err := GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	keyHash, err := s.crypto.HashToken(tokenParts.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to hash token key: %w", err)
	}

	refreshToken := &RefreshToken{
		TokenID:      tokenParts.ID,
		TokenKeyHash: keyHash,
		UserID:       user.ID,
		CreatedAt:    time.Now(),
		ExpiresAt:    time.Now().Add(time.Duration(s.config.JWT.RefreshTokenDuration) * time.Second),
	}

	if err := s.repo.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	accessToken, err := GenerateAccessToken(user.ID, s.config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: fullToken,
		UserID:       user.ID,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshTokenStr string) (string, error) {
	tokenParts, err := ParseRefreshToken(refreshTokenStr)
	if err != nil {
		return "", ErrInvalidToken
	}

	refreshToken, err := s.repo.FindRefreshTokenByID(ctx, tokenParts.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		_ = s.repo.DeleteRefreshTokenByID(ctx, tokenParts.ID)
		return "", ErrExpiredToken
	}

	if !s.crypto.VerifyTokenHash(tokenParts.Key, refreshToken.TokenKeyHash) {
		return "", ErrInvalidToken
	}

	accessToken, err := GenerateAccessToken(refreshToken.UserID, s.config)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshTokenStr string) error {
	tokenParts, err := ParseRefreshToken(refreshTokenStr)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.repo.DeleteRefreshTokenByID(ctx, tokenParts.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteAllUserRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}
	return nil
}

// GetUserInfo returns the stored login snapshots for a user. Provider refresh
// tokens never leave the service.
func (s *AuthService) GetUserInfo(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	profiles := make([]Profile, 0, len(user.Logins))
	for _, login := range user.Logins {
		profiles = append(profiles, Profile{
			LoginInfo: login.LoginInfo,
			FirstName: login.FirstName,
			LastName:  login.LastName,
			FullName:  login.FullName,
			Email:     login.Email,
			AvatarURL: login.AvatarURL,
		})
	}

	return &UserInfo{
		UserID:   user.ID,
		Profiles: profiles,
	}, nil
}
