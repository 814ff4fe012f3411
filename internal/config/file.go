package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML input. Durations are written as Go
// duration strings ("750ms", "24h").
type fileConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     struct {
		JWTSecret string `yaml:"jwt_secret"`
		JWTExpiry string `yaml:"jwt_expiry"`
		CSRFKey   string `yaml:"csrf_key"`
	} `yaml:"auth"`
	Session struct {
		RoleLookupTimeout string `yaml:"role_lookup_timeout"`
		AdminRole         string `yaml:"admin_role"`
	} `yaml:"session"`
	Search   SearchConfig `yaml:"search"`
	Snapshot struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"snapshot"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	CORS           CORSConfig           `yaml:"cors"`
	AdminBootstrap AdminBootstrapConfig `yaml:"admin_bootstrap"`
	Logging        LoggingConfig        `yaml:"logging"`
	Tracing        TracingConfig        `yaml:"tracing"`
	Environment    string               `yaml:"environment"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Server.Host, raw.Server.Host)
	setInt(&cfg.Server.Port, raw.Server.Port)
	setString(&cfg.Server.BaseURL, raw.Server.BaseURL)

	setString(&cfg.Database.URL, raw.Database.URL)
	setInt(&cfg.Database.MaxConnections, raw.Database.MaxConnections)
	setString(&cfg.Database.MigrationsPath, raw.Database.MigrationsPath)

	setString(&cfg.Auth.JWTSecret, raw.Auth.JWTSecret)
	setString(&cfg.Auth.CSRFKey, raw.Auth.CSRFKey)
	if err := setDuration(&cfg.Auth.JWTExpiry, raw.Auth.JWTExpiry, "auth.jwt_expiry"); err != nil {
		return err
	}

	setString(&cfg.Session.AdminRole, raw.Session.AdminRole)
	if err := setDuration(&cfg.Session.RoleLookupTimeout, raw.Session.RoleLookupTimeout, "session.role_lookup_timeout"); err != nil {
		return err
	}

	setInt(&cfg.Search.MaxSuggestions, raw.Search.MaxSuggestions)
	if err := setDuration(&cfg.Snapshot.CacheTTL, raw.Snapshot.CacheTTL, "snapshot.cache_ttl"); err != nil {
		return err
	}

	setInt(&cfg.RateLimit.PublicPerMinute, raw.RateLimit.PublicPerMinute)
	setInt(&cfg.RateLimit.LoginPerMinute, raw.RateLimit.LoginPerMinute)
	setInt(&cfg.RateLimit.AdminPerMinute, raw.RateLimit.AdminPerMinute)
	if len(raw.RateLimit.TrustedProxyCIDRs) > 0 {
		cfg.RateLimit.TrustedProxyCIDRs = raw.RateLimit.TrustedProxyCIDRs
	}
	if len(raw.CORS.AllowedOrigins) > 0 {
		cfg.CORS.AllowedOrigins = raw.CORS.AllowedOrigins
	}
	if raw.CORS.AllowAllOrigins {
		cfg.CORS.AllowAllOrigins = true
	}

	setString(&cfg.AdminBootstrap.Email, raw.AdminBootstrap.Email)
	setString(&cfg.AdminBootstrap.Password, raw.AdminBootstrap.Password)

	setString(&cfg.Logging.Level, raw.Logging.Level)
	setString(&cfg.Logging.Format, raw.Logging.Format)

	if raw.Tracing.Enabled {
		cfg.Tracing.Enabled = true
	}
	setString(&cfg.Tracing.Exporter, raw.Tracing.Exporter)
	setString(&cfg.Tracing.ServiceName, raw.Tracing.ServiceName)
	setString(&cfg.Tracing.OTLPEndpoint, raw.Tracing.OTLPEndpoint)
	if raw.Tracing.SampleRate > 0 {
		cfg.Tracing.SampleRate = raw.Tracing.SampleRate
	}

	setString(&cfg.Environment, raw.Environment)
	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setInt(dst *int, value int) {
	if value != 0 {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value, field string) error {
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	*dst = parsed
	return nil
}
