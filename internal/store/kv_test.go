package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T) (*SQLiteKV, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slots.db")
	kv, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv, path
}

func TestSQLiteKV_SetGetDelete(t *testing.T) {
	kv, _ := openTestKV(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k1", `[{"id":"a"}]`))
	v, ok, err := kv.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	// Overwrite in place.
	require.NoError(t, kv.Set(ctx, "k1", `[]`))
	v, _, err = kv.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, kv.Delete(ctx, "k1"))
	_, ok, err = kv.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Delete(ctx, "k1"), "deleting a missing key is a no-op")
}

func TestSQLiteKV_KeysByPrefix(t *testing.T) {
	kv, _ := openTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, CorruptionKeyPrefix+"200", "b"))
	require.NoError(t, kv.Set(ctx, CorruptionKeyPrefix+"100", "a"))
	require.NoError(t, kv.Set(ctx, PrimaryKey, "[]"))

	keys, err := kv.Keys(ctx, CorruptionKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{
		CorruptionKeyPrefix + "100",
		CorruptionKeyPrefix + "200",
	}, keys, "prefix-filtered and sorted")

	all, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteKV_ReopenPersists(t *testing.T) {
	kv, path := openTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, PrimaryKey, `[{"id":"a"}]`))
	require.NoError(t, kv.Close())

	// Open is idempotent over an existing database.
	kv2, err := Open(path)
	require.NoError(t, err)
	defer kv2.Close()

	v, ok, err := kv2.Get(ctx, PrimaryKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)
}
