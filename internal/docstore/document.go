// Package docstore is the client for the hosted document database: named
// collections of JSON-shaped records, online/offline read fallback and
// change subscriptions.
package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reserved field names.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// TimeLayout is fixed width so that stamped values sort lexically in time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Document is one record. Values are JSON-typed; the record id is inlined
// under FieldID on every read.
type Document map[string]any

// ID returns the inlined record id.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case Document:
		return val.Clone()
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return val
	}
}

// without returns a shallow copy lacking the given keys.
func (d Document) without(keys ...string) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// FormatTime renders a store timestamp.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a timestamp written by FormatTime or any RFC 3339 producer.
func ParseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Normalize converts arbitrary Go values into JSON-typed values by a JSON
// round trip. ArrayUnion operands are kept as operations.
func Normalize(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}
	plain := make(map[string]any, len(doc))
	ops := map[string]ArrayUnionOp{}
	for k, v := range doc {
		if op, ok := v.(ArrayUnionOp); ok {
			ops[k] = op
			continue
		}
		plain[k] = v
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := Document{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for k, op := range ops {
		normalized, err := normalizeValues(op.Values)
		if err != nil {
			return nil, err
		}
		out[k] = ArrayUnionOp{Values: normalized}
	}
	return out, nil
}

func normalizeValues(values []any) ([]any, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode array values: %w", err)
	}
	var out []any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode array values: %w", err)
	}
	return out, nil
}

// Encode turns a tagged struct into a Document.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return doc, nil
}

// Decode fills a tagged struct from a Document.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// ArrayUnionOp appends each value not already present in the array field.
type ArrayUnionOp struct {
	Values []any
}

// ArrayUnion is used as a value in Update partials.
func ArrayUnion(values ...any) ArrayUnionOp {
	return ArrayUnionOp{Values: values}
}

// applyPartial merges partial into base in place, resolving array unions.
func applyPartial(base, partial Document) {
	for k, v := range partial {
		op, ok := v.(ArrayUnionOp)
		if !ok {
			base[k] = v
			continue
		}
		existing, _ := base[k].([]any)
		base[k] = unionValues(existing, op.Values)
	}
}

func unionValues(existing, values []any) []any {
	out := append([]any{}, existing...)
	for _, v := range values {
		found := false
		for _, e := range out {
			if valuesEqual(e, v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}

func valuesEqual(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ra) == string(rb)
}
