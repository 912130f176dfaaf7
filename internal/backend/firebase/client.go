package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"todosync/internal/config"
	"todosync/internal/docstore"
)

// New creates a syncer for the configured database.
//
// Credentials are picked in order: a service-account key (credentials_file),
// the user token saved by login, then none. An auth secret, if configured,
// is sent in addition.
func New(ctx context.Context, cfg *config.Config, log *logrus.Entry, metrics *docstore.Metrics) (*Syncer, error) {
	if !cfg.HasDatabase() {
		return nil, config.ErrNoDatabase
	}

	httpClient, err := HTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := docstore.New(cfg.DatabaseURL,
		docstore.WithHTTPClient(httpClient),
		docstore.WithAuthSecret(cfg.AuthSecret),
		docstore.WithMetrics(metrics),
		docstore.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid database_url: %w", err)
	}

	return NewSyncer(store, WithLogger(log), WithFanOutLimit(cfg.FanOutLimit)), nil
}

// HTTPClient returns the HTTP client for store requests, bounded by cfg.Timeout.
func HTTPClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	var hc *http.Client

	switch {
	case cfg.CredentialsFile != "":
		c, _, err := htransport.NewClient(ctx,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(config.OAuthScopes...),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", config.ErrCredentials, cfg.CredentialsFile, err)
		}
		hc = c

	case cfg.HasOAuthClient() && cfg.HasToken():
		c, err := tokenClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		hc = c

	default:
		hc = &http.Client{}
	}

	hc.Timeout = cfg.Timeout
	return hc, nil
}

// tokenClient builds an auto-refreshing client from oauth_client.json and token.json.
func tokenClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", config.ErrCredentials, config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, config.OAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", config.ErrCredentials, config.OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", config.ErrCredentials, config.TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", config.ErrCredentials, config.TokenFile, err)
	}

	return oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token)), nil
}
