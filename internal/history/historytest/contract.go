// Package historytest holds the behaviour every history.Store must share.
package historytest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantisuite/internal/calc"
	"quantisuite/internal/history"
)

// Entries returns n entries, newest first, one minute apart.
func Entries(n int) []history.Entry {
	base := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	out := make([]history.Entry, n)
	for i := range out {
		out[i] = history.Entry{
			Expression: "2+" + string(rune('0'+i%10)),
			Result:     "x",
			Type:       calc.KindScientific,
			Timestamp:  base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

// RunStoreContract checks a store round-trips history in order.
func RunStoreContract(t *testing.T, store history.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("round trip keeps order", func(t *testing.T) {
		want := Entries(5)
		want[2].Expression = `say "hi", 3×4`
		want[3].Type = calc.KindProgrammer

		require.NoError(t, store.Save(ctx, want))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Expression, got[i].Expression)
			assert.Equal(t, want[i].Result, got[i].Result)
			assert.Equal(t, want[i].Type, got[i].Type)
			assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "timestamp %d", i)
		}
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, Entries(2)))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("save nil clears", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, nil))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
