package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantisuite/internal/calc"
	"quantisuite/internal/history/historytest"
	"quantisuite/internal/storage/sqlite"
)

func openStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "history.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, _ := openStore(t)
	historytest.RunStoreContract(t, store)
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	store, path := openStore(t)
	require.NoError(t, store.Save(ctx, historytest.Entries(3)))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2+0", got[0].Expression)
}

func TestSQLiteCountByType(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	entries := historytest.Entries(4)
	entries[0].Type = calc.KindSimple
	require.NoError(t, store.Save(ctx, entries))

	counts, err := store.CountByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[calc.Kind]int{calc.KindSimple: 1, calc.KindScientific: 3}, counts)
}
