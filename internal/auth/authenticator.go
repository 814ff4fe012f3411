package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// inactive accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned by a CredentialStore for unknown emails.
	ErrUserNotFound = errors.New("user not found")
)

// Credentials is what the store returns for a sign-in attempt.
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
	IsActive     bool
}

type CredentialStore interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
}

// Identity is an authenticated principal plus its session token.
type Identity struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Authenticator checks passwords against a CredentialStore and mints
// session tokens.
type Authenticator struct {
	store  CredentialStore
	tokens *JWTManager
	logger zerolog.Logger
}

func NewAuthenticator(store CredentialStore, tokens *JWTManager, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		store:  store,
		tokens: tokens,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	creds, err := a.store.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			a.logger.Error().Err(err).Msg("credential lookup failed")
			return Identity{}, err
		}
		CheckPassword("", password)
		return Identity{}, ErrInvalidCredentials
	}

	if !CheckPassword(creds.PasswordHash, password) || !creds.IsActive {
		return Identity{}, ErrInvalidCredentials
	}

	return a.issue(creds.UserID, creds.Email)
}

// Verify turns a session token back into an Identity.
func (a *Authenticator) Verify(token string) (Identity, error) {
	claims, err := a.tokens.Validate(token)
	if err != nil {
		return Identity{}, err
	}
	identity := Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Token:  token,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Reissue mints a fresh token for an existing identity.
func (a *Authenticator) Reissue(identity Identity) (Identity, error) {
	return a.issue(identity.UserID, identity.Email)
}

func (a *Authenticator) issue(userID, email string) (Identity, error) {
	token, expiresAt, err := a.tokens.Generate(userID, email)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:    userID,
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
