package storage

import (
	"context"

	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/session"
)

// Repository groups data access by domain.
type Repository interface {
	Gala() gala.Repository
	Profiles() ProfileRepository
	Users() UserRepository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Ping(ctx context.Context) error
}

// ProfileRepository stores the role attached to each user.
type ProfileRepository interface {
	session.RoleLookup
	SetRole(ctx context.Context, userID, role string) error
}

type UserRepository interface {
	auth.CredentialStore
	// UpsertUser creates the user or replaces its password hash, returning
	// the user id.
	UpsertUser(ctx context.Context, email, passwordHash string) (string, error)
	RecordLogin(ctx context.Context, userID string) error
}
