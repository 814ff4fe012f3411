// Package mcp provides MCP (Model Context Protocol) server configuration and transport support.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Togather-Foundation/gala/internal/api/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// TransportType represents the available MCP transport protocols.
type TransportType string

const (
	// TransportStdio uses standard input/output. Best for local assistants.
	TransportStdio TransportType = "stdio"

	// TransportHTTP uses Streamable HTTP.
	TransportHTTP TransportType = "http"
)

const (
	DefaultTransport = TransportStdio
	DefaultPort      = 8090

	// GracefulShutdownTimeout is the maximum time to wait for in-flight
	// requests when the HTTP transport stops.
	GracefulShutdownTimeout = 30 * time.Second
)

type TransportConfig struct {
	Type TransportType
	Port int
	Host string
}

// LoadTransportConfig reads MCP_TRANSPORT, MCP_PORT and MCP_HOST.
func LoadTransportConfig() (*TransportConfig, error) {
	cfg := &TransportConfig{
		Type: DefaultTransport,
		Port: DefaultPort,
		Host: "127.0.0.1",
	}

	if transportEnv := os.Getenv("MCP_TRANSPORT"); transportEnv != "" {
		transport := TransportType(transportEnv)
		switch transport {
		case TransportStdio, TransportHTTP:
			cfg.Type = transport
		default:
			return nil, fmt.Errorf("invalid MCP_TRANSPORT value: %s (must be stdio or http)", transportEnv)
		}
	}

	if portEnv := os.Getenv("MCP_PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid MCP_PORT value: %s (must be a number)", portEnv)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid MCP_PORT value: %d (must be between 1 and 65535)", port)
		}
		cfg.Port = port
	}

	if hostEnv := os.Getenv("MCP_HOST"); hostEnv != "" {
		cfg.Host = hostEnv
	}

	return cfg, nil
}

// ServeStdio serves MCP over stdin/stdout until ctx is cancelled or the
// client disconnects.
func ServeStdio(ctx context.Context, mcpServer *server.MCPServer, logger zerolog.Logger) error {
	logger.Info().Msg("starting MCP server with stdio transport")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			errCh <- fmt.Errorf("stdio server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("context cancelled, stdio server stopping")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ServeHTTP serves MCP over Streamable HTTP behind the public rate limit.
func ServeHTTP(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, limiter *middleware.RateLimiter, logger zerolog.Logger) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info().Str("transport", "http").Str("addr", addr).Msg("starting MCP server with streamable HTTP transport")

	wrapped, err := WrapHandler(server.NewStreamableHTTPServer(mcpServer), limiter)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("MCP HTTP server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// Serve starts the MCP server with the configured transport.
func Serve(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, limiter *middleware.RateLimiter, logger zerolog.Logger) error {
	switch cfg.Type {
	case TransportStdio:
		return ServeStdio(ctx, mcpServer, logger)
	case TransportHTTP:
		return ServeHTTP(ctx, mcpServer, cfg, limiter, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Type)
	}
}

// WrapHandler puts an MCP handler behind the public rate-limit tier.
func WrapHandler(handler http.Handler, limiter *middleware.RateLimiter) (http.Handler, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if limiter == nil {
		return handler, nil
	}
	return middleware.WithRateLimitTierHandler(middleware.TierPublic)(limiter.Middleware(handler)), nil
}
