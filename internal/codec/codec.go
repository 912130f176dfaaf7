// Package codec converts lists and tasks to and from the document store's
// untyped JSON documents.
//
// Wire rules:
//   - timestamps are numeric seconds since the Unix epoch, microsecond precision
//   - optional fields are omitted when absent, never written as null
//   - on decode an absent field and a null field are the same thing
//   - decoding either yields a complete entity or a *DecodeError, never a partial one
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"todosync/internal/service"
)

// Document is a store document: string keys mapped to strings, booleans and numbers.
type Document map[string]any

// Field names on the wire.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldColor       = "colorHex"
	FieldOrderIndex  = "orderIndex"
	FieldTitle       = "title"
	FieldNotes       = "notes"
	FieldDueDate     = "dueDate"
	FieldIsCompleted = "isCompleted"
	FieldPriority    = "priority"
	FieldListID      = "listId"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

// DecodeError reports a document that could not be turned into an entity.
// Doc (or Raw, when the bytes were not a JSON object) holds the offending input.
type DecodeError struct {
	Entity string
	Field  string
	Reason string
	Doc    Document
	Raw    []byte
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("decode %s: field %q: %s", e.Entity, e.Field, e.Reason)
}

// ParseDocument parses a raw JSON object. Numbers are kept as json.Number.
func ParseDocument(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Entity: "document", Reason: err.Error(), Raw: raw}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Entity: "document", Reason: "not a JSON object", Raw: raw}
	}
	return Document(obj), nil
}

// EncodeTime converts t to seconds since the epoch, truncated to microseconds.
func EncodeTime(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// DecodeTime is the inverse of EncodeTime.
func DecodeTime(secs float64) time.Time {
	return time.UnixMicro(int64(math.Round(secs * 1e6))).UTC()
}

// EncodeList converts a list to a document.
func EncodeList(l service.List) Document {
	return Document{
		FieldID:         l.ID,
		FieldName:       l.Name,
		FieldColor:      l.Color,
		FieldOrderIndex: l.OrderIndex,
		FieldCreatedAt:  EncodeTime(l.CreatedAt),
		FieldUpdatedAt:  EncodeTime(l.UpdatedAt),
	}
}

// DecodeList converts a document to a list.
func DecodeList(doc Document) (service.List, error) {
	r := reader{entity: "list", doc: doc}

	l := service.List{
		ID:         r.str(FieldID),
		Name:       r.str(FieldName),
		Color:      r.str(FieldColor),
		OrderIndex: r.integer(FieldOrderIndex),
		CreatedAt:  r.timestamp(FieldCreatedAt),
		UpdatedAt:  r.timestamp(FieldUpdatedAt),
	}
	if r.err != nil {
		return service.List{}, r.err
	}
	return l, nil
}

// EncodeTask converts a task to a document. Notes and DueDate are omitted when nil.
func EncodeTask(t service.Task) Document {
	doc := Document{
		FieldID:          t.ID,
		FieldTitle:       t.Title,
		FieldIsCompleted: t.IsCompleted,
		FieldPriority:    int(t.Priority),
		FieldListID:      t.ListID,
		FieldCreatedAt:   EncodeTime(t.CreatedAt),
		FieldUpdatedAt:   EncodeTime(t.UpdatedAt),
	}
	if t.Notes != nil {
		doc[FieldNotes] = *t.Notes
	}
	if t.DueDate != nil {
		doc[FieldDueDate] = EncodeTime(*t.DueDate)
	}
	return doc
}

// DecodeTask converts a document to a task.
func DecodeTask(doc Document) (service.Task, error) {
	r := reader{entity: "task", doc: doc}

	t := service.Task{
		ID:          r.str(FieldID),
		Title:       r.str(FieldTitle),
		IsCompleted: r.boolean(FieldIsCompleted),
		Priority:    r.priority(FieldPriority),
		ListID:      r.str(FieldListID),
		CreatedAt:   r.timestamp(FieldCreatedAt),
		UpdatedAt:   r.timestamp(FieldUpdatedAt),
	}
	if r.present(FieldNotes) {
		notes := r.str(FieldNotes)
		t.Notes = &notes
	}
	if r.present(FieldDueDate) {
		due := r.timestamp(FieldDueDate)
		t.DueDate = &due
	}
	if r.err != nil {
		return service.Task{}, r.err
	}
	return t, nil
}

// reader extracts typed fields from a document, keeping the first failure.
type reader struct {
	entity string
	doc    Document
	err    error
}

func (r *reader) fail(field, reason string) {
	if r.err == nil {
		r.err = &DecodeError{Entity: r.entity, Field: field, Reason: reason, Doc: r.doc}
	}
}

// present reports whether field exists and is not null.
func (r *reader) present(field string) bool {
	v, ok := r.doc[field]
	return ok && v != nil
}

func (r *reader) value(field string) (any, bool) {
	if r.doc == nil {
		r.fail("", "empty document")
		return nil, false
	}
	v, ok := r.doc[field]
	if !ok || v == nil {
		r.fail(field, "missing")
		return nil, false
	}
	return v, true
}

func (r *reader) str(field string) string {
	v, ok := r.value(field)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, fmt.Sprintf("expected string, got %T", v))
		return ""
	}
	return s
}

func (r *reader) boolean(field string) bool {
	v, ok := r.value(field)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(field, fmt.Sprintf("expected bool, got %T", v))
		return false
	}
	return b
}

func (r *reader) number(field string) float64 {
	v, ok := r.value(field)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			r.fail(field, "invalid number")
			return 0
		}
		return f
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	default:
		r.fail(field, fmt.Sprintf("expected number, got %T", v))
		return 0
	}
}

func (r *reader) integer(field string) int {
	f := r.number(field)
	if r.err != nil {
		return 0
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		r.fail(field, "expected integer")
		return 0
	}
	// float64(math.MaxInt64) rounds up to 1<<63, which int cannot hold.
	if f < math.MinInt64 || f >= 1<<63 {
		r.fail(field, "out of range")
		return 0
	}
	return int(f)
}

func (r *reader) timestamp(field string) time.Time {
	f := r.number(field)
	if r.err != nil {
		return time.Time{}
	}
	return DecodeTime(f)
}

func (r *reader) priority(field string) service.Priority {
	n := r.integer(field)
	if r.err != nil {
		return service.PriorityNone
	}
	p := service.Priority(n)
	if !p.Valid() {
		r.fail(field, fmt.Sprintf("unknown priority %d", n))
		return service.PriorityNone
	}
	return p
}
