package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempVisitStore(t *testing.T) *visitStore {
	t.Helper()
	store, err := openVisitStoreAt(filepath.Join(t.TempDir(), "history.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestVisitStoreRecordAndList(t *testing.T) {
	store := tempVisitStore(t)

	require.NoError(t, store.Record("app1", "main", "Users"))
	require.NoError(t, store.Record("app2", "", ""))

	visits, err := store.LastVisited()
	require.NoError(t, err)
	assert.Contains(t, visits, "app1")
	assert.Contains(t, visits, "app2")
}

func TestVisitStoreUpsertIdempotent(t *testing.T) {
	store := tempVisitStore(t)

	require.NoError(t, store.Record("app1", "main", "Users"))
	require.NoError(t, store.Record("app1", "main", "Users"))
	require.NoError(t, store.Record("app1", "main", "Orders"))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM visits`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestVisitStoreIgnoresEmptyApp(t *testing.T) {
	store := tempVisitStore(t)
	require.NoError(t, store.Record("  ", "db", "t"))

	visits, err := store.LastVisited()
	require.NoError(t, err)
	assert.Empty(t, visits)
}

func TestVisitStoreNilReceiver(t *testing.T) {
	var store *visitStore
	assert.NoError(t, store.Record("app1", "", ""))
	visits, err := store.LastVisited()
	assert.NoError(t, err)
	assert.Nil(t, visits)
	assert.NoError(t, store.Close())
}
