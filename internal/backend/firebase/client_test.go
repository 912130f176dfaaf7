package firebase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"todosync/internal/config"
	"todosync/internal/docstore"
	"todosync/internal/logging"
	"todosync/internal/service"
	"todosync/internal/testutil"
)

func TestNewRequiresDatabase(t *testing.T) {
	cfg, _ := config.New(t.TempDir())

	_, err := New(context.Background(), cfg, logging.Discard(), nil)
	if !errors.Is(err, config.ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.DatabaseURL = "not a url"

	_, err := New(context.Background(), cfg, logging.Discard(), nil)
	if !docstore.IsKind(err, docstore.KindInvalidTarget) {
		t.Errorf("expected invalid_target, got %v", err)
	}
}

func TestNewTalksToStore(t *testing.T) {
	store := testutil.NewFakeStore(t)
	cfg, _ := config.New(t.TempDir())
	cfg.DatabaseURL = store.URL()
	cfg.AuthSecret = "s3cret"
	metrics := docstore.NewMetrics(prometheus.NewRegistry())

	s, err := New(context.Background(), cfg, logging.Discard(), metrics)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.CreateList(context.Background(), service.List{ID: "L1", Name: "Inbox", Color: service.DefaultColor}); err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if !store.Has(ListsCollection, "L1") {
		t.Error("expected list in store")
	}
	reqs := store.Requests()
	if len(reqs) != 1 || reqs[0] != "PUT lists/L1?auth=s3cret" {
		t.Errorf("unexpected requests %v", reqs)
	}
}

func TestHTTPClientAppliesTimeout(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.Timeout = 3 * time.Second

	hc, err := HTTPClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("HTTPClient: %v", err)
	}
	if hc.Timeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", hc.Timeout)
	}
}

func TestHTTPClientBadCredentialsFile(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.CredentialsFile = filepath.Join(cfg.Dir, "missing.json")

	if _, err := HTTPClient(context.Background(), cfg); !errors.Is(err, config.ErrCredentials) {
		t.Errorf("expected ErrCredentials, got %v", err)
	}
}

func TestHTTPClientBadToken(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	clientJSON := `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(cfg.OAuthClientPath(), []byte(clientJSON), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := HTTPClient(context.Background(), cfg); !errors.Is(err, config.ErrCredentials) {
		t.Errorf("expected ErrCredentials, got %v", err)
	}
}
