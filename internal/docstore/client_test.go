package docstore_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"todosync/internal/codec"
	"todosync/internal/docstore"
	"todosync/internal/testutil"
)

func newClient(t *testing.T, store *testutil.FakeStore, opts ...docstore.Option) *docstore.Client {
	t.Helper()
	c, err := docstore.New(store.URL(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com", "/relative", "https://db.example.com?x=1", "https://db.example.com#frag"} {
		_, err := docstore.New(raw)
		if !docstore.IsKind(err, docstore.KindInvalidTarget) {
			t.Errorf("New(%q): expected invalid_target, got %v", raw, err)
		}
	}
}

func TestGetNullIsEmptySet(t *testing.T) {
	store := testutil.NewFakeStore(t)
	c := newClient(t, store)

	set, err := c.Get(context.Background(), "lists", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !set.Empty {
		t.Error("expected empty set")
	}
	if len(set.Documents) != 0 {
		t.Errorf("expected no documents, got %d", len(set.Documents))
	}
}

func TestGetReturnsDocumentsByKey(t *testing.T) {
	store := testutil.NewFakeStore(t)
	store.Seed("lists", "a", map[string]any{"id": "a", "name": "Inbox"})
	store.Seed("lists", "b", map[string]any{"id": "b", "name": "Work"})
	c := newClient(t, store)

	set, err := c.Get(context.Background(), "lists", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if set.Empty {
		t.Error("expected non-empty set")
	}
	keys := make([]string, 0, len(set.Documents))
	for k := range set.Documents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestGetFilterIsJSONQuoted(t *testing.T) {
	store := testutil.NewFakeStore(t)
	store.Seed("tasks", "t1", map[string]any{"id": "t1", "listId": "L1"})
	store.Seed("tasks", "t2", map[string]any{"id": "t2", "listId": "L2"})
	c := newClient(t, store)

	set, err := c.Get(context.Background(), "tasks", docstore.Equal("listId", "L1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(set.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(set.Documents))
	}
	if _, ok := set.Documents["t1"]; !ok {
		t.Error("expected t1 in result")
	}

	reqs := store.Requests()
	want := `GET tasks?equalTo=%22L1%22&orderBy=%22listId%22`
	if len(reqs) != 1 || reqs[0] != want {
		t.Errorf("expected request %q, got %v", want, reqs)
	}
}

func TestGetFilteredNoMatchesIsEmpty(t *testing.T) {
	store := testutil.NewFakeStore(t)
	store.Seed("tasks", "t1", map[string]any{"id": "t1", "listId": "L1"})
	c := newClient(t, store)

	set, err := c.Get(context.Background(), "tasks", docstore.Equal("listId", "nope"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !set.Empty {
		t.Error("expected empty set for {} body")
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   docstore.ErrorKind
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, docstore.KindStatus},
		{"unauthorized", http.StatusUnauthorized, `{"error":"Permission denied"}`, docstore.KindStatus},
		{"array body", http.StatusOK, `[1,2,3]`, docstore.KindBadBody},
		{"garbage body", http.StatusOK, `not json`, docstore.KindBadBody},
		{"empty body", http.StatusOK, ``, docstore.KindNoBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFakeStore(t)
			store.Respond(http.MethodGet, "lists", tt.status, tt.body)
			c := newClient(t, store)

			_, err := c.Get(context.Background(), "lists", nil)
			if !docstore.IsKind(err, tt.want) {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
			var ce *docstore.ClientError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ClientError, got %T", err)
			}
			if ce.Method != http.MethodGet || ce.Path != "lists" {
				t.Errorf("expected GET lists, got %s %s", ce.Method, ce.Path)
			}
			if tt.want == docstore.KindStatus && ce.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, ce.StatusCode)
			}
		})
	}
}

func TestStatusErrorWinsOverBody(t *testing.T) {
	store := testutil.NewFakeStore(t)
	store.Respond(http.MethodGet, "lists", http.StatusServiceUnavailable, `not json`)
	c := newClient(t, store)

	_, err := c.Get(context.Background(), "lists", nil)
	if !docstore.IsKind(err, docstore.KindStatus) {
		t.Errorf("expected status kind, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := docstore.New(url)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Get(context.Background(), "lists", nil)
	if !docstore.IsKind(err, docstore.KindTransport) {
		t.Errorf("expected transport kind, got %v", err)
	}
}

func TestCanceledContextIsTransportError(t *testing.T) {
	store := testutil.NewFakeStore(t)
	c := newClient(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Delete(ctx, "lists/a")
	if !docstore.IsKind(err, docstore.KindTransport) {
		t.Errorf("expected transport kind, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestInvalidPathSendsNothing(t *testing.T) {
	store := testutil.NewFakeStore(t)
	c := newClient(t, store)
	ctx := context.Background()

	for _, path := range []string{"", "lists/", "lists/a.b", "lists/a#b", "lists/$x", "tasks/[0]"} {
		if err := c.Delete(ctx, path); !docstore.IsKind(err, docstore.KindInvalidTarget) {
			t.Errorf("Delete(%q): expected invalid_target, got %v", path, err)
		}
	}
	if _, err := c.Get(ctx, "tasks", docstore.Equal("list.id", "x")); !docstore.IsKind(err, docstore.KindInvalidTarget) {
		t.Errorf("expected invalid_target for bad filter field, got %v", err)
	}
	if n := len(store.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestPutGetItemDelete(t *testing.T) {
	store := testutil.NewFakeStore(t)
	c := newClient(t, store)
	ctx := context.Background()

	doc := codec.Document{"id": "a", "name": "Inbox", "orderIndex": 0}
	if err := c.Put(ctx, "lists/a", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !store.Has("lists", "a") {
		t.Fatal("expected lists/a to exist after Put")
	}

	raw, err := c.GetItem(ctx, "lists/a")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !strings.Contains(string(raw), `"name":"Inbox"`) {
		t.Errorf("unexpected body %s", raw)
	}

	if err := c.Delete(ctx, "lists/a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Has("lists", "a") {
		t.Error("expected lists/a to be gone")
	}

	raw, err = c.GetItem(ctx, "lists/a")
	if err != nil {
		t.Fatalf("GetItem after delete: %v", err)
	}
	if raw != nil {
		t.Errorf("expected nil for missing document, got %s", raw)
	}
}

func TestDeleteMissingSucceeds(t *testing.T) {
	store := testutil.NewFakeStore(t)
	c := newClient(t, store)

	if err := c.Delete(context.Background(), "tasks/nope"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestPutUnencodableDocument(t *testing.T) {
	store := testutil.NewFakeStore(t)
	c := newClient(t, store)

	err := c.Put(context.Background(), "lists/a", codec.Document{"bad": make(chan int)})
	if !docstore.IsKind(err, docstore.KindInvalidTarget) {
		t.Errorf("expected invalid_target, got %v", err)
	}
	if n := len(store.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestAuthSecretQueryParam(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.URL.Query().Get("auth")
		gotPath = r.URL.Path
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	c, err := docstore.New(srv.URL+"/", docstore.WithAuthSecret("s3cret"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.GetItem(context.Background(), "lists/a"); err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if gotAuth != "s3cret" {
		t.Errorf("expected auth=s3cret, got %q", gotAuth)
	}
	if gotPath != "/lists/a.json" {
		t.Errorf("expected /lists/a.json, got %q", gotPath)
	}
}

func TestGetItemNonObjectIsBadBody(t *testing.T) {
	store := testutil.NewFakeStore(t)
	store.Respond(http.MethodGet, "lists/a", http.StatusOK, `"just a string"`)
	c := newClient(t, store)

	_, err := c.GetItem(context.Background(), "lists/a")
	if !docstore.IsKind(err, docstore.KindBadBody) {
		t.Errorf("expected bad_body, got %v", err)
	}
}
