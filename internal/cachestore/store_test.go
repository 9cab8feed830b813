package cachestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/internal/cachestore"
	"github.com/bramblewood/historian/internal/domain"
)

func TestStore_PutThenGet_RoundTrips(t *testing.T) {
	t.Parallel()

	store := cachestore.NewStore(t.TempDir())

	key, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", map[string]string{"subject": "fix x"})
	require.NoError(t, err)

	require.NoError(t, store.Put(domain.NamespaceCommit, key, []byte(`{"trivial":false}`)))

	payload, found, err := store.Get(domain.NamespaceCommit, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"trivial":false}`, string(payload))
}

func TestStore_Get_MissReturnsNotFoundNoError(t *testing.T) {
	t.Parallel()

	store := cachestore.NewStore(t.TempDir())

	key, err := cachestore.Key(domain.NamespaceDaily, "v1", "balanced-model", "anything")
	require.NoError(t, err)

	_, found, err := store.Get(domain.NamespaceDaily, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Get_CorruptedEntryIsTreatedAsMiss(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cachestore.NewStore(root)

	key, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", "x")
	require.NoError(t, err)

	require.NoError(t, store.Put(domain.NamespaceCommit, key, []byte("payload")))

	entries, err := filepath.Glob(filepath.Join(root, string(domain.NamespaceCommit), "*", "*"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, os.WriteFile(entries[0], []byte("not an envelope"), 0o600))

	_, found, err := store.Get(domain.NamespaceCommit, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Clear_Namespace(t *testing.T) {
	t.Parallel()

	store := cachestore.NewStore(t.TempDir())

	key, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", "x")
	require.NoError(t, err)

	require.NoError(t, store.Put(domain.NamespaceCommit, key, []byte("payload")))
	require.NoError(t, store.Clear(domain.NamespaceCommit))

	_, found, err := store.Get(domain.NamespaceCommit, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKey_DeterministicAcrossMapOrdering(t *testing.T) {
	t.Parallel()

	a, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)

	b, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", map[string]string{"b": "2", "a": "1"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestKey_DiffersWhenAnyContributorChanges(t *testing.T) {
	t.Parallel()

	base, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", "input")
	require.NoError(t, err)

	diffNamespace, err := cachestore.Key(domain.NamespaceDaily, "v1", "fast-model", "input")
	require.NoError(t, err)
	assert.NotEqual(t, base, diffNamespace)

	diffVersion, err := cachestore.Key(domain.NamespaceCommit, "v2", "fast-model", "input")
	require.NoError(t, err)
	assert.NotEqual(t, base, diffVersion)

	diffModel, err := cachestore.Key(domain.NamespaceCommit, "v1", "deep-model", "input")
	require.NoError(t, err)
	assert.NotEqual(t, base, diffModel)

	diffInput, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", "other input")
	require.NoError(t, err)
	assert.NotEqual(t, base, diffInput)
}

func TestStore_Put_EmptyKeyRejected(t *testing.T) {
	t.Parallel()

	store := cachestore.NewStore(t.TempDir())

	err := store.Put(domain.NamespaceCommit, nil, []byte("x"))
	require.ErrorIs(t, err, cachestore.ErrEmptyKey)
}

func TestStore_Put_OversizedPayloadRejected(t *testing.T) {
	t.Parallel()

	store := cachestore.NewStore(t.TempDir())

	key, err := cachestore.Key(domain.NamespaceCommit, "v1", "fast-model", map[string]string{"subject": "huge"})
	require.NoError(t, err)

	oversized := make([]byte, 9*1024*1024)

	var ioErr *cachestore.CacheIOError

	putErr := store.Put(domain.NamespaceCommit, key, oversized)
	require.Error(t, putErr)
	require.ErrorAs(t, putErr, &ioErr)
	assert.Equal(t, "put", ioErr.Op)
}
