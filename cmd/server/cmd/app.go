package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/gala/internal/audit"
	"github.com/Togather-Foundation/gala/internal/auth"
	"github.com/Togather-Foundation/gala/internal/config"
	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/storage"
	"github.com/Togather-Foundation/gala/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// app holds the services shared by serve, session and mcp.
type app struct {
	cfg           config.Config
	logger        zerolog.Logger
	pool          *pgxpool.Pool
	repo          *postgres.Repository
	galas         *gala.Service
	authenticator *auth.Authenticator
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.LoadFile(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	poolCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(poolCtx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, "gala")
	return &app{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		repo:   repo,
		galas: gala.NewService(repo.Gala(), gala.Options{
			CacheTTL: cfg.Snapshot.CacheTTL,
			Audit:    audit.NewLogger(logger),
			Logger:   logger,
		}),
		authenticator: auth.NewAuthenticator(repo.Users(), tokens, logger),
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
}

// bootstrapAdmin makes sure the ADMIN_EMAIL account exists with the
// configured password and the admin role on its profile.
func (a *app) bootstrapAdmin(ctx context.Context) error {
	bootstrap := a.cfg.AdminBootstrap
	if bootstrap.Email == "" || bootstrap.Password == "" {
		a.logger.Debug().Msg("admin bootstrap env vars not set; skipping")
		return nil
	}

	hash, err := auth.HashPassword(bootstrap.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var userID string
	err = a.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		id, err := tx.Users().UpsertUser(ctx, bootstrap.Email, hash)
		if err != nil {
			return fmt.Errorf("upsert admin user: %w", err)
		}
		userID = id
		return tx.Profiles().SetRole(ctx, id, a.cfg.Session.AdminRole)
	})
	if err != nil {
		return err
	}

	// Avoid logging the email in production.
	if a.cfg.IsProduction() {
		a.logger.Info().Str("user_id", userID).Msg("bootstrapped admin user")
	} else {
		a.logger.Info().Str("user_id", userID).Str("email", bootstrap.Email).Msg("bootstrapped admin user")
	}
	return nil
}
