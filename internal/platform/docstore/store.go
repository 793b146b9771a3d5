// Package docstore persists JSON documents grouped in named collections.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors returned by every Store implementation.
var (
	ErrNotFound = errors.New("docstore: document not found")
	ErrConflict = errors.New("docstore: document already exists")
)

// Query selects documents of one collection. Filter matches top-level fields by
// equality. Results are ordered newest first.
type Query struct {
	Filter map[string]any
	Limit  int
	Offset int
}

// Store is the raw document persistence port.
type Store interface {
	Insert(ctx context.Context, collection, id string, doc []byte) error
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Replace(ctx context.Context, collection, id string, doc []byte) error
	// Update applies fn to the stored document atomically: no other write to
	// the same document interleaves between the read and the write. An error
	// from fn aborts the update and is returned unchanged. fn must not call
	// back into the Store.
	Update(ctx context.Context, collection, id string, fn func(doc []byte) ([]byte, error)) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, q Query) ([][]byte, error)
	Count(ctx context.Context, collection string, filter map[string]any) (int, error)
}

// Collection is a typed view over one collection of a Store.
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection binds a typed collection.
func NewCollection[T any](store Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Insert stores a new document. Returns ErrConflict when id is taken.
func (c *Collection[T]) Insert(ctx context.Context, id string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", c.name, err)
	}
	return c.store.Insert(ctx, c.name, id, raw)
}

// Get loads a document. Returns ErrNotFound when missing.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	raw, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("docstore: decode %s/%s: %w", c.name, id, err)
	}
	return doc, nil
}

// Replace overwrites an existing document. Returns ErrNotFound when missing.
func (c *Collection[T]) Replace(ctx context.Context, id string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", c.name, err)
	}
	return c.store.Replace(ctx, c.name, id, raw)
}

// Update loads id, lets mutate change it and stores the result atomically.
// It returns the stored document. An error from mutate aborts the update.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(doc *T) error) (T, error) {
	var out T
	err := c.store.Update(ctx, c.name, id, func(raw []byte) ([]byte, error) {
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("docstore: decode %s/%s: %w", c.name, id, err)
		}
		if err := mutate(&doc); err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("docstore: encode %s: %w", c.name, err)
		}
		out = doc
		return encoded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete removes a document. Returns ErrNotFound when missing.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

// List returns the documents matching q.
func (c *Collection[T]) List(ctx context.Context, q Query) ([]T, error) {
	rows, err := c.store.List(ctx, c.name, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, raw := range rows {
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("docstore: decode %s: %w", c.name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// Count returns the number of documents matching filter.
func (c *Collection[T]) Count(ctx context.Context, filter map[string]any) (int, error) {
	return c.store.Count(ctx, c.name, filter)
}

// normalizeFilter round-trips the filter through JSON so values compare the
// same way they are stored.
func normalizeFilter(filter map[string]any) (map[string]any, []byte, error) {
	if len(filter) == 0 {
		return nil, []byte("{}"), nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, nil, fmt.Errorf("docstore: encode filter: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, fmt.Errorf("docstore: decode filter: %w", err)
	}
	return out, raw, nil
}
