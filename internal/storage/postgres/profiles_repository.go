package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/gala/internal/metrics"
	"github.com/Togather-Foundation/gala/internal/session"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ session.RoleLookup = (*ProfileRepository)(nil)

type ProfileRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// LookupRole returns the profile role for userID, or
// session.ErrProfileNotFound when the user has no profile.
func (r *ProfileRepository) LookupRole(ctx context.Context, userID string) (string, error) {
	start := time.Now()
	var role string
	err := pick(r.pool, r.tx).QueryRow(ctx, `SELECT role FROM profiles WHERE user_id = $1`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordQuery("lookup_role", start, nil)
		return "", session.ErrProfileNotFound
	}
	metrics.RecordQuery("lookup_role", start, err)
	if err != nil {
		return "", fmt.Errorf("lookup role: %w", err)
	}
	return role, nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, userID, role string) error {
	_, err := pick(r.pool, r.tx).Exec(ctx, `
INSERT INTO profiles (user_id, role)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = now()`,
		userID, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}
