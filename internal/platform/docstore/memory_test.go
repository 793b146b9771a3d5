package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Price  int    `json:"price"`
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	items := NewCollection[item](NewMemory(), "items")

	require.NoError(t, items.Insert(ctx, "a", item{ID: "a", Status: "pending"}))
	assert.ErrorIs(t, items.Insert(ctx, "a", item{ID: "a"}), ErrConflict)

	got, err := items.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)

	got.Status = "approved"
	require.NoError(t, items.Replace(ctx, "a", got))
	got, err = items.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)

	require.NoError(t, items.Delete(ctx, "a"))
	_, err = items.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, items.Delete(ctx, "a"), ErrNotFound)
	assert.ErrorIs(t, items.Replace(ctx, "a", got), ErrNotFound)
}

func TestListFiltersOrdersAndPages(t *testing.T) {
	ctx := context.Background()
	items := NewCollection[item](NewMemory(), "items")
	for i := 0; i < 5; i++ {
		status := "pending"
		if i%2 == 0 {
			status = "approved"
		}
		require.NoError(t, items.Insert(ctx, fmt.Sprint(i), item{ID: fmt.Sprint(i), Status: status, Price: i * 10}))
	}

	approved, err := items.List(ctx, Query{Filter: map[string]any{"status": "approved"}})
	require.NoError(t, err)
	require.Len(t, approved, 3)
	assert.Equal(t, []string{"4", "2", "0"}, ids(approved))

	page, err := items.List(ctx, Query{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids(page))

	byPrice, err := items.List(ctx, Query{Filter: map[string]any{"price": 30}})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(byPrice))

	empty, err := items.List(ctx, Query{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)

	total, err := items.Count(ctx, map[string]any{"status": "pending"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	a := NewCollection[item](store, "a")
	b := NewCollection[item](store, "b")

	require.NoError(t, a.Insert(ctx, "1", item{ID: "1"}))
	require.NoError(t, b.Insert(ctx, "1", item{ID: "1"}))
	_, err := NewCollection[item](store, "c").Get(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCollection[item](NewMemory(), "items").List(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestUpdateSerializesConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	items := NewCollection[item](NewMemory(), "items")
	require.NoError(t, items.Insert(ctx, "a", item{ID: "a"}))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := items.Update(ctx, "a", func(doc *item) error {
				doc.Price++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := items.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, writers, got.Price)
}

func TestUpdateAbortsOnMutateError(t *testing.T) {
	ctx := context.Background()
	items := NewCollection[item](NewMemory(), "items")
	require.NoError(t, items.Insert(ctx, "a", item{ID: "a", Status: "pending"}))

	errStop := errors.New("stop")
	_, err := items.Update(ctx, "a", func(doc *item) error {
		doc.Status = "approved"
		return errStop
	})
	assert.ErrorIs(t, err, errStop)

	got, err := items.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)

	_, err = items.Update(ctx, "missing", func(*item) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}
