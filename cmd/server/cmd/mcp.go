package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Togather-Foundation/gala/internal/api/middleware"
	"github.com/Togather-Foundation/gala/internal/config"
	"github.com/Togather-Foundation/gala/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve gala content to assistants over MCP",
		Long: `Start a Model Context Protocol server exposing the suggest and get_gala
tools and the active gala as a resource.

Transport is chosen by MCP_TRANSPORT (stdio or http, default stdio). With
stdio, logs go to stderr so stdout stays reserved for the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			transport, err := mcp.LoadTransportConfig()
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg.Logging)
			if transport.Type == mcp.TransportStdio {
				logger = config.NewLoggerTo(cfg.Logging, os.Stderr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcp.NewServer(mcp.Config{
				Name:           "gala",
				Version:        Version,
				MaxSuggestions: cfg.Search.MaxSuggestions,
			}, a.galas)

			limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.Environment)
			go limiter.Run(ctx)

			err = mcp.Serve(ctx, srv.MCPServer(), transport, limiter, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
