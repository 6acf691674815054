package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/playi/play-silhouette/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema/sqlite/schema.sql
var sqliteSchema string

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &SQLiteRepository{db: db}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) initSchema() error {
	_, err := r.db.Exec(sqliteSchema)
	return err
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	userQuery := `
		SELECT id, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	var user core.User
	var idStr string
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, userQuery, id.String()).Scan(
		&idStr,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.ID = uuid.MustParse(idStr)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	loginsQuery := `
		SELECT provider_id, provider_key, first_name, last_name, full_name, email, avatar_url, refresh_token
		FROM user_logins
		WHERE user_id = ?
	`

	rows, err := r.db.QueryContext(ctx, loginsQuery, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	user.Logins = []core.Login{}
	for rows.Next() {
		var login core.Login
		err := rows.Scan(
			&login.LoginInfo.ProviderID,
			&login.LoginInfo.ProviderKey,
			&login.FirstName,
			&login.LastName,
			&login.FullName,
			&login.Email,
			&login.AvatarURL,
			&login.RefreshToken,
		)
		if err != nil {
			return nil, err
		}
		user.Logins = append(user.Logins, login)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *SQLiteRepository) FindByLoginInfo(ctx context.Context, login core.LoginInfo) (*core.User, error) {
	query := `
		SELECT user_id
		FROM user_logins
		WHERE provider_id = ? AND provider_key = ?
	`

	var userIDStr string
	err := r.db.QueryRowContext(ctx, query, login.ProviderID, login.ProviderKey).Scan(&userIDStr)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	userID := uuid.MustParse(userIDStr)
	return r.FindByID(ctx, userID)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *core.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, created_at, updated_at)
		VALUES (?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, userQuery,
		user.ID.String(),
		user.CreatedAt.Unix(),
		user.UpdatedAt.Unix(),
	)
	if err != nil {
		return err
	}

	loginQuery := `
		INSERT INTO user_logins (user_id, provider_id, provider_key, first_name, last_name, full_name, email, avatar_url, refresh_token)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, login := range user.Logins {
		_, err = tx.ExecContext(ctx, loginQuery,
			user.ID.String(),
			login.LoginInfo.ProviderID,
			login.LoginInfo.ProviderKey,
			login.FirstName,
			login.LastName,
			login.FullName,
			login.Email,
			login.AvatarURL,
			login.RefreshToken,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return core.ErrAlreadyExists
			}
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) UpsertLogin(ctx context.Context, userID uuid.UUID, login core.Login) error {
	query := `
		INSERT INTO user_logins (user_id, provider_id, provider_key, first_name, last_name, full_name, email, avatar_url, refresh_token)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider_id, provider_key) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			full_name = excluded.full_name,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN user_logins.refresh_token ELSE excluded.refresh_token END
	`

	_, err := r.db.ExecContext(ctx, query,
		userID.String(),
		login.LoginInfo.ProviderID,
		login.LoginInfo.ProviderKey,
		login.FirstName,
		login.LastName,
		login.FullName,
		login.Email,
		login.AvatarURL,
		login.RefreshToken,
	)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `UPDATE users SET updated_at = ? WHERE id = ?`, time.Now().Unix(), userID.String())
	return err
}

func (r *SQLiteRepository) CreateRefreshToken(ctx context.Context, token *core.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token_id, token_key_hash, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		token.TokenID,
		token.TokenKeyHash,
		token.UserID.String(),
		token.CreatedAt.Unix(),
		token.ExpiresAt.Unix(),
	)

	return err
}

func (r *SQLiteRepository) FindRefreshTokenByID(ctx context.Context, tokenID string) (*core.RefreshToken, error) {
	query := `
		SELECT token_id, token_key_hash, user_id, created_at, expires_at
		FROM refresh_tokens
		WHERE token_id = ?
	`

	var refreshToken core.RefreshToken
	var userIDStr string
	var createdAt, expiresAt int64

	err := r.db.QueryRowContext(ctx, query, tokenID).Scan(
		&refreshToken.TokenID,
		&refreshToken.TokenKeyHash,
		&userIDStr,
		&createdAt,
		&expiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	refreshToken.UserID = uuid.MustParse(userIDStr)
	refreshToken.CreatedAt = time.Unix(createdAt, 0)
	refreshToken.ExpiresAt = time.Unix(expiresAt, 0)

	return &refreshToken, nil
}

func (r *SQLiteRepository) DeleteRefreshTokenByID(ctx context.Context, tokenID string) error {
	query := `DELETE FROM refresh_tokens WHERE token_id = ?`
	_, err := r.db.ExecContext(ctx, query, tokenID)
	return err
}

func (r *SQLiteRepository) DeleteAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID.String())
	return err
}

func (r *SQLiteRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < ?`
	result, err := r.db.ExecContext(ctx, query, time.Now().Unix())
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return count, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "UNIQUE constraint failed") ||
		strings.Contains(errMsg, "UNIQUE") ||
		strings.Contains(errMsg, "unique")
}
