package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"
)

type memoryDoc struct {
	seq  int64
	data []byte
}

// Memory is an in-process Store used by tests and local development.
type Memory struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string]map[string]memoryDoc
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]memoryDoc)}
}

func (m *Memory) Insert(ctx context.Context, collection, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collections[collection]
	if coll == nil {
		coll = make(map[string]memoryDoc)
		m.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return ErrConflict
	}
	m.seq++
	coll[id] = memoryDoc{seq: m.seq, data: clone(doc)}
	return nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc.data), nil
}

func (m *Memory) Replace(ctx context.Context, collection, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	existing.data = clone(doc)
	m.collections[collection][id] = existing
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	next, err := fn(clone(existing.data))
	if err != nil {
		return err
	}
	existing.data = clone(next)
	m.collections[collection][id] = existing
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) List(ctx context.Context, collection string, q Query) ([][]byte, error) {
	matched, err := m.match(ctx, collection, q.Filter)
	if err != nil {
		return nil, err
	}
	if q.Offset >= len(matched) {
		return [][]byte{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	out := make([][]byte, 0, len(matched))
	for _, doc := range matched {
		out = append(out, clone(doc.data))
	}
	return out, nil
}

func (m *Memory) Count(ctx context.Context, collection string, filter map[string]any) (int, error) {
	matched, err := m.match(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (m *Memory) match(ctx context.Context, collection string, filter map[string]any) ([]memoryDoc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, _, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []memoryDoc
	for _, doc := range m.collections[collection] {
		ok, err := contains(doc.data, want)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, doc)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	return matched, nil
}

func contains(raw []byte, want map[string]any) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, err
	}
	for key, value := range want {
		if !reflect.DeepEqual(doc[key], value) {
			return false, nil
		}
	}
	return true, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
