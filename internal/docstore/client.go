// Package docstore is a REST/JSON client for a hierarchical document store
// speaking the Firebase Realtime Database REST dialect.
//
// Documents are addressed by slash-separated paths ("lists", "lists/{id}").
// The client appends ".json" to every path, so callers never see the suffix.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"

	"todosync/internal/codec"
)

// DefaultTimeout is the transport timeout used when no HTTP client is supplied.
const DefaultTimeout = 10 * time.Second

// RawDocumentSet is the result of a collection read: document key to raw body.
// Empty is set when the store returned null (no documents).
type RawDocumentSet struct {
	Documents map[string]json.RawMessage
	Empty     bool
}

// Client issues GET, PUT and DELETE requests against the store.
// It is safe for concurrent use.
type Client struct {
	base       string
	httpClient *http.Client
	authSecret string
	metrics    *Metrics
	log        *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client, e.g. one carrying OAuth2 credentials.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthSecret appends auth=<secret> to every request (database secret or ID token).
func WithAuthSecret(secret string) Option {
	return func(c *Client) { c.authSecret = secret }
}

// WithMetrics records request counts and durations.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the store rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		if err == nil {
			err = errors.New("expected absolute http(s) URL")
		}
		return nil, &ClientError{Kind: KindInvalidTarget, Method: "NEW", Path: baseURL, Err: err}
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, &ClientError{Kind: KindInvalidTarget, Method: "NEW", Path: baseURL, Err: errors.New("base URL must not carry a query or fragment")}
	}

	c := &Client{
		base: strings.TrimRight(u.String(), "/"),
		log:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return c, nil
}

// Get reads a collection, optionally filtered by one field equality.
func (c *Client) Get(ctx context.Context, path string, filter *Filter) (RawDocumentSet, error) {
	q, err := filter.query()
	if err != nil {
		return RawDocumentSet{}, c.fail(http.MethodGet, path, &ClientError{Kind: KindInvalidTarget, Err: err}, time.Now())
	}

	start := time.Now()
	data, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return RawDocumentSet{}, c.fail(http.MethodGet, path, err, start)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return RawDocumentSet{}, c.fail(http.MethodGet, path, &ClientError{Kind: KindNoBody}, start)
	}
	if bytes.Equal(data, []byte("null")) {
		c.done(http.MethodGet, path, start)
		return RawDocumentSet{Empty: true}, nil
	}

	var docs map[string]json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return RawDocumentSet{}, c.fail(http.MethodGet, path, &ClientError{Kind: KindBadBody, Err: err}, start)
	}

	c.done(http.MethodGet, path, start)
	return RawDocumentSet{Documents: docs, Empty: len(docs) == 0}, nil
}

// GetItem reads a single document. A missing document yields nil, nil.
func (c *Client) GetItem(ctx context.Context, path string) (json.RawMessage, error) {
	start := time.Now()
	data, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, c.fail(http.MethodGet, path, err, start)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, c.fail(http.MethodGet, path, &ClientError{Kind: KindNoBody}, start)
	}
	if bytes.Equal(data, []byte("null")) {
		c.done(http.MethodGet, path, start)
		return nil, nil
	}
	if data[0] != '{' || !json.Valid(data) {
		return nil, c.fail(http.MethodGet, path, &ClientError{Kind: KindBadBody, Err: errors.New("expected JSON object")}, start)
	}

	c.done(http.MethodGet, path, start)
	return json.RawMessage(data), nil
}

// Put replaces (or creates) the document at path.
func (c *Client) Put(ctx context.Context, path string, doc codec.Document) error {
	start := time.Now()
	body, err := json.Marshal(doc)
	if err != nil {
		return c.fail(http.MethodPut, path, &ClientError{Kind: KindInvalidTarget, Err: fmt.Errorf("encode document: %w", err)}, start)
	}
	if _, err := c.do(ctx, http.MethodPut, path, nil, body); err != nil {
		return c.fail(http.MethodPut, path, err, start)
	}
	c.done(http.MethodPut, path, start)
	return nil
}

// Delete removes the document at path. Removing a missing document succeeds.
func (c *Client) Delete(ctx context.Context, path string) error {
	start := time.Now()
	if _, err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return c.fail(http.MethodDelete, path, err, start)
	}
	c.done(http.MethodDelete, path, start)
	return nil
}

// do sends one request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) ([]byte, error) {
	escaped, err := escapePath(path)
	if err != nil {
		return nil, &ClientError{Kind: KindInvalidTarget, Err: err}
	}

	if c.authSecret != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("auth", c.authSecret)
	}
	target := c.base + "/" + escaped + ".json"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &ClientError{Kind: KindInvalidTarget, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, &ClientError{Kind: KindStatus, StatusCode: resp.StatusCode, Err: err}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Kind: KindTransport, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

// fail stamps method and path on err, records it, and returns it.
func (c *Client) fail(method, path string, err error, start time.Time) error {
	var ce *ClientError
	if !errors.As(err, &ce) {
		ce = &ClientError{Kind: KindTransport, Err: err}
	}
	ce.Method = method
	ce.Path = path

	c.metrics.observe(method, ce.Kind.String(), time.Since(start))
	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"kind":   ce.Kind.String(),
		"status": ce.StatusCode,
	}).WithError(ce.Err).Debug("store request failed")
	return ce
}

func (c *Client) done(method, path string, start time.Time) {
	elapsed := time.Since(start)
	c.metrics.observe(method, "ok", elapsed)
	c.log.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"duration_ms": elapsed.Milliseconds(),
	}).Debug("store request completed")
}
