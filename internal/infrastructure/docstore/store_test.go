package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (port.DocumentStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestFileStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	docs, err := s.Find(ctx, "wallets", nil, port.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, docs, "missing collection reads as empty")

	require.NoError(t, s.Insert(ctx, "wallets", port.Document{"id": "0xa", "address": "0xa", "balances": map[string]any{}}))
	require.NoError(t, s.Insert(ctx, "wallets", port.Document{"id": "0xb", "address": "0xb"}))
	assert.FileExists(t, filepath.Join(dir, "wallets.json"))

	docs, err = s.Find(ctx, "wallets", map[string]any{"id": "0xb"}, port.FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "0xb", docs[0]["address"])

	n, err := s.Count(ctx, "wallets", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFileStore_InsertExistingIDUpdates(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Insert(ctx, "projects", port.Document{"id": "ETH", "decimal": 18}))
	require.NoError(t, s.Insert(ctx, "projects", port.Document{"id": "ETH", "decimal": 6}))

	docs, err := s.Find(ctx, "projects", nil, port.FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.EqualValues(t, 6, docs[0]["decimal"])
}

func TestFileStore_InsertRequiresID(t *testing.T) {
	s, _ := newStore(t)
	assert.ErrorIs(t, s.Insert(context.Background(), "wallets", port.Document{"address": "0xa"}), ErrMissingID)
}

func TestFileStore_UpdateOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Insert(ctx, "wallets", port.Document{"id": "0xa", "address": "0xa", "label": "old"}))

	require.NoError(t, s.UpdateOne(ctx, "wallets", map[string]any{"id": "0xa"},
		port.Document{"$set": map[string]any{"label": "new"}}))
	docs, _ := s.Find(ctx, "wallets", map[string]any{"id": "0xa"}, port.FindOptions{})
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0]["label"])
	assert.Equal(t, "0xa", docs[0]["address"], "$set keeps other fields")

	require.NoError(t, s.UpdateOne(ctx, "wallets", map[string]any{"id": "0xa"}, port.Document{"id": "0xa"}))
	docs, _ = s.Find(ctx, "wallets", map[string]any{"id": "0xa"}, port.FindOptions{})
	_, hasAddress := docs[0]["address"]
	assert.False(t, hasAddress, "plain patch replaces the document")

	require.NoError(t, s.UpdateOne(ctx, "wallets", map[string]any{"id": "0xc"},
		port.Document{"$set": map[string]any{"address": "0xc"}}))
	docs, _ = s.Find(ctx, "wallets", map[string]any{"id": "0xc"}, port.FindOptions{})
	require.Len(t, docs, 1, "missing document is upserted")
	assert.Equal(t, "0xc", docs[0]["address"])
}

func TestFileStore_FindPagination(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.Insert(ctx, "projects", port.Document{"id": id, "kind": "token"}))
	}
	page, err := s.Find(ctx, "projects", map[string]any{"kind": "token"}, port.FindOptions{Skip: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0]["id"])
	assert.Equal(t, "d", page[1]["id"])
}

func TestFileStore_NumericFilterAfterReload(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Insert(ctx, "projects", port.Document{"id": "x", "decimal": 18}))
	docs, err := s.Find(ctx, "projects", map[string]any{"decimal": 18}, port.FindOptions{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestFileStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	require.NoError(t, s.Insert(ctx, "wallets", port.Document{"id": "0xa"}))
	require.NoError(t, s.ReplaceAll(ctx, "wallets", nil))

	docs, err := s.Find(ctx, "wallets", nil, port.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, docs)

	raw, err := os.ReadFile(filepath.Join(dir, "wallets.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestFileStore_CorruptCollection(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wallets.json"), []byte("{not json"), 0o600))
	_, err := s.Find(context.Background(), "wallets", nil, port.FindOptions{})
	assert.Error(t, err)
}

func TestFileStore_InsertNew(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	added, err := s.InsertNew(ctx, "wallets", port.Document{"id": "0xa", "tag": "first"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.InsertNew(ctx, "wallets", port.Document{"id": "0xa", "tag": "second"})
	require.NoError(t, err)
	assert.False(t, added)

	docs, err := s.Find(ctx, "wallets", nil, port.FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "first", docs[0]["tag"])

	_, err = s.InsertNew(ctx, "wallets", port.Document{"tag": "no id"})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestFileStore_DeleteOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	for _, id := range []string{"0xa", "0xb", "0xc"} {
		require.NoError(t, s.Insert(ctx, "wallets", port.Document{"id": id}))
	}

	removed, err := s.DeleteOne(ctx, "wallets", map[string]any{"id": "0xb"})
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteOne(ctx, "wallets", map[string]any{"id": "0xb"})
	require.NoError(t, err)
	assert.False(t, removed)

	docs, err := s.Find(ctx, "wallets", nil, port.FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "0xa", docs[0]["id"])
	assert.Equal(t, "0xc", docs[1]["id"])
}
