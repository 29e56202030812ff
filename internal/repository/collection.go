package repository

import (
	"context"
	"time"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// DocumentStore is the subset of the docstore client the repositories use.
type DocumentStore interface {
	Add(ctx context.Context, collection string, data docstore.Document) (string, error)
	Create(ctx context.Context, collection, id string, data docstore.Document) error
	Get(ctx context.Context, collection, id string) (docstore.Document, docstore.Meta, error)
	List(ctx context.Context, collection string, opts docstore.ListOptions) (docstore.ListResult, error)
	Update(ctx context.Context, collection, id string, partial docstore.Document) error
	Set(ctx context.Context, collection, id string, data docstore.Document, opts docstore.SetOptions) error
	Delete(ctx context.Context, collection, id string) error
	BatchDelete(ctx context.Context, collection string, ids []string) error
}

var newestFirst = docstore.ListOptions{OrderBy: &docstore.OrderBy{Field: docstore.FieldCreatedAt, Direction: docstore.Desc}}

// collection maps one named collection onto the record type T.
type collection[T any] struct {
	store DocumentStore
	name  string
}

func (c collection[T]) list(ctx context.Context, opts docstore.ListOptions) ([]T, bool, error) {
	res, err := c.store.List(ctx, c.name, opts)
	if err != nil {
		return nil, false, err
	}
	out := make([]T, 0, len(res.Documents))
	for _, doc := range res.Documents {
		var v T
		if err := docstore.Decode(doc, &v); err != nil {
			return nil, false, errorutil.NewInternalError(err)
		}
		out = append(out, v)
	}
	return out, res.FromCache, nil
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	doc, _, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := docstore.Decode(doc, &v); err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return &v, nil
}

// create stores v under a fresh id and refreshes v from the stored record so
// the timestamps stamped by the store are visible to the caller.
func (c collection[T]) create(ctx context.Context, v *T) (string, error) {
	doc, err := encodeRecord(v)
	if err != nil {
		return "", err
	}
	id, err := c.store.Add(ctx, c.name, doc)
	if err != nil {
		return "", err
	}
	stored, _, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		// The record exists; only the refresh failed.
		return id, nil
	}
	if err := docstore.Decode(stored, v); err != nil {
		return "", errorutil.NewInternalError(err)
	}
	return id, nil
}

func (c collection[T]) createWithID(ctx context.Context, id string, v *T) error {
	doc, err := encodeRecord(v)
	if err != nil {
		return err
	}
	return c.store.Create(ctx, c.name, id, doc)
}

func (c collection[T]) put(ctx context.Context, id string, v *T, opts docstore.SetOptions) error {
	doc, err := encodeRecord(v)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.name, id, doc, opts)
}

func (c collection[T]) update(ctx context.Context, id string, partial map[string]any) error {
	return c.store.Update(ctx, c.name, id, docstore.Document(partial))
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

// encodeRecord drops unset timestamps so the store stamps its own.
func encodeRecord(v any) (docstore.Document, error) {
	doc, err := docstore.Encode(v)
	if err != nil {
		return nil, errorutil.NewValidationError("record is not encodable", map[string]any{"reason": err.Error()})
	}
	for _, key := range []string{docstore.FieldCreatedAt, docstore.FieldUpdatedAt} {
		if t, ok := docstore.ParseTime(doc[key]); ok && t.Equal(time.Time{}) {
			delete(doc, key)
		}
	}
	return doc, nil
}
