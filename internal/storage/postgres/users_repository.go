package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/domain/ids"
	"github.com/Togather-Foundation/gala/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ auth.CredentialStore = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	start := time.Now()
	var creds auth.Credentials
	err := pick(r.pool, r.tx).QueryRow(ctx, `
SELECT id, email, password_hash, is_active
  FROM users
 WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))).
		Scan(&creds.UserID, &creds.Email, &creds.PasswordHash, &creds.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordQuery("get_credentials", start, nil)
		return nil, auth.ErrUserNotFound
	}
	metrics.RecordQuery("get_credentials", start, err)
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &creds, nil
}

func (r *UserRepository) UpsertUser(ctx context.Context, email, passwordHash string) (string, error) {
	newID, err := ids.NewULID()
	if err != nil {
		return "", fmt.Errorf("generate user id: %w", err)
	}
	var id string
	err = pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO users (id, email, password_hash)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, is_active = TRUE
RETURNING id`,
		newID, strings.ToLower(strings.TrimSpace(email)), passwordHash).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, userID string) error {
	_, err := pick(r.pool, r.tx).Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}
