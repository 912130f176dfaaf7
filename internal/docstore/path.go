package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Filter is a single equality predicate on one document field.
// The store supports no compound filters.
type Filter struct {
	Field string
	Value string
}

// Equal returns a filter matching documents whose field equals value.
func Equal(field, value string) *Filter {
	return &Filter{Field: field, Value: value}
}

// query renders the filter in the Firebase REST dialect:
// orderBy="<field>"&equalTo="<value>", both JSON-quoted.
func (f *Filter) query() (url.Values, error) {
	if f == nil {
		return nil, nil
	}
	if err := validateKey(f.Field); err != nil {
		return nil, fmt.Errorf("filter field: %w", err)
	}
	field, err := json.Marshal(f.Field)
	if err != nil {
		return nil, err
	}
	value, err := json.Marshal(f.Value)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("orderBy", string(field))
	q.Set("equalTo", string(value))
	return q, nil
}

// Join builds a store path from segments, e.g. Join("tasks", id).
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// escapePath validates a slash-separated path and escapes each segment.
func escapePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if err := validateKey(s); err != nil {
			return "", fmt.Errorf("path %q: %w", path, err)
		}
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/"), nil
}

// validateKey applies the store's key rules: non-empty, no . $ # [ ] / and
// no control characters.
func validateKey(key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	for _, r := range key {
		if strings.ContainsRune(".$#[]/", r) || unicode.IsControl(r) {
			return fmt.Errorf("key %q contains forbidden character %q", key, r)
		}
	}
	return nil
}
