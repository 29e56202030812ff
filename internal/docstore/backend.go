package docstore

import (
	"context"
	"sort"
	"strings"
)

// Direction orders a listing.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderBy names the field a listing is sorted on.
type OrderBy struct {
	Field     string
	Direction Direction
}

// ListOptions narrows a collection listing. Zero value lists everything.
type ListOptions struct {
	OrderBy *OrderBy
	Limit   int
}

// SetOptions controls Set. Without Merge the record is replaced wholesale.
// Touch stamps updatedAt.
type SetOptions struct {
	Merge bool
	Touch bool
}

// Meta describes where a read was served from.
type Meta struct {
	FromCache bool
}

// ListResult is a collection snapshot.
type ListResult struct {
	Documents []Document
	FromCache bool
}

// Backend is the hosted document engine. Implementations return
// *errorutil.DomainError values for not-found and unavailability, and stamp
// timestamps with their own clock.
type Backend interface {
	Insert(ctx context.Context, collection, id string, data Document) error
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)
	Update(ctx context.Context, collection, id string, partial Document) error
	Set(ctx context.Context, collection, id string, data Document, opts SetOptions) error
	Delete(ctx context.Context, collection, id string) error
	BatchDelete(ctx context.Context, collection string, ids []string) error
	Ping(ctx context.Context) error
}

// Watcher is implemented by backends that can push change signals. A signal
// carries no payload; subscribers re-list on receipt.
type Watcher interface {
	Watch(ctx context.Context, collection string) (<-chan struct{}, error)
}

// ApplyListOptions returns a sorted, truncated copy of docs. Ties, and lists
// without an OrderBy, are ordered by id.
func ApplyListOptions(docs []Document, opts ListOptions) []Document {
	out := append([]Document(nil), docs...)
	if opts.OrderBy != nil && opts.OrderBy.Field != "" {
		field := opts.OrderBy.Field
		desc := opts.OrderBy.Direction == Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := CompareValues(out[i][field], out[j][field])
			if c == 0 {
				return out[i].ID() < out[j].ID()
			}
			if desc {
				return c > 0
			}
			return c < 0
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ID() < out[j].ID()
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// CompareValues orders JSON values: missing/null < bool < number < string.
func CompareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
