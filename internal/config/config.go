// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; required by cmd/server and cmd/migrate.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// KeycloakServerURL is the base URL of the Keycloak server (e.g. http://localhost:8180).
	KeycloakServerURL string `mapstructure:"KEYCLOAK_SERVER_URL"`
	// KeycloakAdminRealm is the realm the admin service account authenticates against (default master).
	KeycloakAdminRealm string `mapstructure:"KEYCLOAK_ADMIN_REALM"`
	// KeycloakAdminUsername is the admin service-account username.
	KeycloakAdminUsername string `mapstructure:"KEYCLOAK_ADMIN_USERNAME"`
	// KeycloakAdminPassword is the admin service-account password.
	KeycloakAdminPassword string `mapstructure:"KEYCLOAK_ADMIN_PASSWORD"`
	// KeycloakClientID is the OAuth2 client id used for the admin password grant (default admin-cli).
	KeycloakClientID string `mapstructure:"KEYCLOAK_CLIENT_ID"`
	// KeycloakTargetRealm is the realm user accounts and realm roles live in.
	KeycloakTargetRealm string `mapstructure:"KEYCLOAK_TARGET_REALM"`
	// KeycloakTimeout is the per-call HTTP timeout for admin API requests (e.g. "15s").
	KeycloakTimeout string `mapstructure:"KEYCLOAK_TIMEOUT"`
	// LogLevel is the zerolog level (trace, debug, info, warn, error); default info.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("KEYCLOAK_SERVER_URL", "")
	v.SetDefault("KEYCLOAK_ADMIN_REALM", "master")
	v.SetDefault("KEYCLOAK_ADMIN_USERNAME", "")
	v.SetDefault("KEYCLOAK_ADMIN_PASSWORD", "")
	v.SetDefault("KEYCLOAK_CLIENT_ID", "admin-cli")
	v.SetDefault("KEYCLOAK_TARGET_REALM", "poseidon")
	v.SetDefault("KEYCLOAK_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.KeycloakAdminRealm == "" {
		return nil, errors.New("config: KEYCLOAK_ADMIN_REALM must be set")
	}
	if cfg.KeycloakClientID == "" {
		return nil, errors.New("config: KEYCLOAK_CLIENT_ID must be set")
	}

	return &cfg, nil
}

// KeycloakCallTimeout parses KeycloakTimeout as a time.Duration. Returns 15s if unset or invalid.
func (c *Config) KeycloakCallTimeout() time.Duration {
	d, err := time.ParseDuration(c.KeycloakTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}
