package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// FakeStore is an in-memory document store served over HTTP in the Firebase
// REST dialect: GET/PUT/DELETE on /{collection}.json and /{collection}/{key}.json,
// with orderBy/equalTo equality filters on collection reads.
type FakeStore struct {
	mu        sync.Mutex
	data      map[string]map[string]json.RawMessage // collection -> key -> body
	overrides map[string]response                   // "METHOD path" -> canned response
	requests  []string

	server *httptest.Server
}

type response struct {
	status int
	body   string
}

// NewFakeStore starts a fake store that is closed when the test ends.
func NewFakeStore(t testing.TB) *FakeStore {
	t.Helper()

	f := &FakeStore{
		data:      make(map[string]map[string]json.RawMessage),
		overrides: make(map[string]response),
	}

	r := mux.NewRouter()
	r.HandleFunc("/{collection:[^/]+}.json", f.handleCollection).Methods(http.MethodGet)
	r.HandleFunc("/{collection:[^/]+}/{key:[^/]+}.json", f.handleItem).
		Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	r.Use(f.record)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the store's base URL.
func (f *FakeStore) URL() string {
	return f.server.URL
}

// Seed stores v (marshaled to JSON) at collection/key.
func (f *FakeStore) Seed(collection, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("seed %s/%s: %v", collection, key, err))
	}
	f.SeedRaw(collection, key, string(raw))
}

// SeedRaw stores a raw JSON body at collection/key.
func (f *FakeStore) SeedRaw(collection, key, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[collection] == nil {
		f.data[collection] = make(map[string]json.RawMessage)
	}
	f.data[collection][key] = json.RawMessage(raw)
}

// Has reports whether collection/key exists.
func (f *FakeStore) Has(collection, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[collection][key]
	return ok
}

// Keys returns the sorted document keys of a collection.
func (f *FakeStore) Keys(collection string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data[collection]))
	for k := range f.data[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Document returns the stored body of collection/key decoded into a map.
func (f *FakeStore) Document(collection, key string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[collection][key]
	if !ok {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}

// Fail makes requests matching method and path (without ".json") answer
// with status and a Firebase-style error body. The data is left untouched.
func (f *FakeStore) Fail(method, path string, status int) {
	f.Respond(method, path, status, `{"error":"injected failure"}`)
}

// Respond makes requests matching method and path answer with a canned response.
func (f *FakeStore) Respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[method+" "+path] = response{status: status, body: body}
}

// Requests returns every request received as "METHOD path?query".
func (f *FakeStore) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	copy(out, f.requests)
	return out
}

// CountRequests counts received requests with the given method and path prefix.
func (f *FakeStore) CountRequests(method, prefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if strings.HasPrefix(r, method+" "+prefix) {
			n++
		}
	}
	return n
}

func (f *FakeStore) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")
		entry := r.Method + " " + path
		if r.URL.RawQuery != "" {
			entry += "?" + r.URL.RawQuery
		}

		f.mu.Lock()
		f.requests = append(f.requests, entry)
		override, ok := f.overrides[r.Method+" "+path]
		f.mu.Unlock()

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(override.status)
			io.WriteString(w, override.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeStore) handleCollection(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	q := r.URL.Query()

	var field, value string
	filtered := q.Has("orderBy") || q.Has("equalTo")
	if filtered {
		if err := json.Unmarshal([]byte(q.Get("orderBy")), &field); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"error":"orderBy must be a valid JSON encoded path"}`)
			return
		}
		if err := json.Unmarshal([]byte(q.Get("equalTo")), &value); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"error":"Constraint index field must be a JSON primitive"}`)
			return
		}
	}

	f.mu.Lock()
	docs, exists := f.data[collection]
	out := make(map[string]json.RawMessage)
	for key, raw := range docs {
		if filtered && !matches(raw, field, value) {
			continue
		}
		out[key] = raw
	}
	f.mu.Unlock()

	if !exists && !filtered {
		writeJSON(w, http.StatusOK, "null")
		return
	}
	body, _ := json.Marshal(out)
	writeJSON(w, http.StatusOK, string(body))
}

func (f *FakeStore) handleItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, key := vars["collection"], vars["key"]

	switch r.Method {
	case http.MethodGet:
		f.mu.Lock()
		raw, ok := f.data[collection][key]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusOK, "null")
			return
		}
		writeJSON(w, http.StatusOK, string(raw))

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, `{"error":"unreadable body"}`)
			return
		}
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"error":"Invalid data; couldn't parse JSON object"}`)
			return
		}
		f.SeedRaw(collection, key, string(body))
		writeJSON(w, http.StatusOK, string(body))

	case http.MethodDelete:
		f.mu.Lock()
		delete(f.data[collection], key)
		if len(f.data[collection]) == 0 {
			delete(f.data, collection)
		}
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, "null")
	}
}

func matches(raw json.RawMessage, field, value string) bool {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	s, ok := doc[field].(string)
	return ok && s == value
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
