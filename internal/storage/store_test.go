package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrolab/pkg/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestCreateCollectionIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateCollection(ctx, "users")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.CreateCollection(ctx, "users")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateCollectionInvalidName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "../etc", "a/b", "a b"} {
		_, err := store.CreateCollection(ctx, name)
		assert.ErrorIs(t, err, model.ErrInvalidArgument, "name %q", name)
	}
}

func TestAddAssignsFreshID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "users", model.Document{"email": "a@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.GetID())

	second, err := store.Add(ctx, "users", model.Document{"email": "b@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, second.GetID())
	assert.NotEqual(t, first.GetID(), second.GetID())

	// The returned record round-trips through GetOne.
	got, err := store.GetOne(ctx, "users", first.GetID())
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.GetString("email"))
}

func TestAddDoesNotMutateInput(t *testing.T) {
	store := newTestStore(t)
	fields := model.Document{"email": "a@example.com"}

	_, err := store.Add(context.Background(), "users", fields)
	require.NoError(t, err)
	assert.NotContains(t, fields, "id")
}

func TestGetMissingCollectionIsEmpty(t *testing.T) {
	store := newTestStore(t)

	docs, err := store.Get(context.Background(), "nothing_here")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestGetOneNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "users", model.Document{"email": "a@example.com"})
	require.NoError(t, err)

	_, err = store.GetOne(ctx, "users", "no-such-id")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateMergesAndPreservesID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Add(ctx, "users", model.Document{"email": "a@example.com", "first_name": "Ada"})
	require.NoError(t, err)

	updated, err := store.Update(ctx, "users", doc.GetID(), model.Document{
		"first_name": "Grace",
		"id":         "attempted-override",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, doc.GetID(), updated.GetID())
	assert.Equal(t, "Grace", updated.GetString("first_name"))
	assert.Equal(t, "a@example.com", updated.GetString("email"))

	got, err := store.GetOne(ctx, "users", doc.GetID())
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.GetString("first_name"))
}

func TestUpdateMissingWithoutUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "users", model.Document{"email": "a@example.com"})
	require.NoError(t, err)

	_, err = store.Update(ctx, "users", "ghost", model.Document{"x": 1}, false)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// The collection's document count is unchanged.
	docs, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpdateMissingWithUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Update(ctx, "users", "fixed-id", model.Document{"email": "u@example.com"}, true)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", doc.GetID())

	got, err := store.GetOne(ctx, "users", "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", got.GetString("email"))
}

func TestDeleteIdempotentEffect(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Add(ctx, "users", model.Document{"email": "a@example.com"})
	require.NoError(t, err)

	removed, err := store.Delete(ctx, "users", doc.GetID())
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, "users", doc.GetID())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLoadCorruptedCollection(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(Config{Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(`{"not":"an array"}`), 0o644))

	_, err = store.Get(ctx, "users")
	assert.ErrorIs(t, err, model.ErrCorrupted)

	_, err = store.Add(ctx, "users", model.Document{"email": "a@example.com"})
	assert.ErrorIs(t, err, model.ErrCorrupted)
}

func TestConcurrentAddsKeepAllDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := store.Add(ctx, "users", model.Document{"email": fmt.Sprintf("u%d@example.com", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	docs, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, docs, n)

	seen := make(map[string]struct{}, n)
	for _, doc := range docs {
		seen[doc.GetID()] = struct{}{}
	}
	assert.Len(t, seen, n, "ids must be unique")
}
