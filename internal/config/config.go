// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todosync"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// EnvPrefix prefixes every settings environment variable (TODOSYNC_DATABASE_URL, ...).
	EnvPrefix = "TODOSYNC"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DefaultTimeout bounds each store request.
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrNotConfigured marks a missing required setting.
	ErrNotConfigured = errors.New("not configured")

	// ErrNoDatabase is returned when no database URL is configured.
	ErrNoDatabase = fmt.Errorf("database_url %w", ErrNotConfigured)

	// ErrCredentials marks credentials that could not be loaded.
	ErrCredentials = errors.New("invalid credentials")
)

// OAuthScopes are the scopes the Realtime Database REST API accepts for
// OAuth2 access tokens.
var OAuthScopes = []string{
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// DatabaseURL is the root URL of the document store.
	DatabaseURL string

	// CredentialsFile is a service-account JSON key. When set it takes
	// precedence over the user token from login.
	CredentialsFile string

	// AuthSecret is sent as the auth= query parameter (legacy database secret).
	AuthSecret string

	// Timeout bounds each store request.
	Timeout time.Duration

	// LogFile, when set, receives log output with rotation.
	LogFile string

	// FanOutLimit caps concurrent task deletes during a list delete. 0 means unlimited.
	FanOutLimit int
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todosync or $HOME/.config/todosync.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Timeout: DefaultTimeout}, nil
}

// Load reads settings from a .env file in the working directory, then
// config.yaml in Dir, then TODOSYNC_* environment variables. Later sources win;
// variables already set in the environment are never overwritten by .env.
func (c *Config) Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("fanout_limit", 0)

	if _, err := os.Stat(c.ConfigPath()); err == nil {
		v.SetConfigFile(c.ConfigPath())
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	c.DatabaseURL = strings.TrimSpace(v.GetString("database_url"))
	c.CredentialsFile = strings.TrimSpace(v.GetString("credentials_file"))
	c.AuthSecret = strings.TrimSpace(v.GetString("auth_secret"))
	c.LogFile = strings.TrimSpace(v.GetString("log_file"))

	c.Timeout = v.GetDuration("timeout")
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %q: must be a positive duration", v.GetString("timeout"))
	}
	c.FanOutLimit = v.GetInt("fanout_limit")
	if c.FanOutLimit < 0 {
		return fmt.Errorf("invalid fanout_limit %d: must be >= 0", c.FanOutLimit)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasDatabase reports whether a store URL is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
