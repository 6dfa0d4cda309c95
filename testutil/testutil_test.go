package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/prefixindex/kv"
)

func TestWord(t *testing.T) {
	rng := NewRNG(4711)

	for range 100 {
		w := rng.Word(3, 6)
		assert.GreaterOrEqual(t, len(w), 3)
		assert.LessOrEqual(t, len(w), 6)
		for _, c := range w {
			assert.True(t, c >= 'a' && c <= 'z')
		}
	}

	assert.Len(t, rng.Word(4, 4), 4)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	w1 := rng.Words(5, 2, 10)

	rng.Reset()
	w2 := rng.Words(5, 2, 10)

	assert.Equal(t, w1, w2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestFaultyStore(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	store := NewFaultyStore(kv.NewMemoryStore())
	store.FailOn(OpPut, "b", boom)

	require.NoError(t, store.Put(ctx, "ns", kv.Record{PartitionKey: "a", RowKey: "1"}))
	require.ErrorIs(t, store.Put(ctx, "ns", kv.Record{PartitionKey: "b", RowKey: "1"}), boom)
	assert.Equal(t, []string{"a", "b"}, store.Attempts(OpPut))

	n, err := store.Count(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	store.FailOn(OpPut, "b", nil)
	require.NoError(t, store.Put(ctx, "ns", kv.Record{PartitionKey: "b", RowKey: "1"}))

	store.FailOn(OpQuery, "a", boom)
	_, err = store.Query(ctx, "ns", "a", 0)
	require.ErrorIs(t, err, boom)

	store.FailOn(OpDelete, "a", boom)
	require.ErrorIs(t, store.Delete(ctx, "ns", "a", "1"), boom)
	require.NoError(t, store.Delete(ctx, "ns", "b", "1"))
	assert.Equal(t, []string{"a", "b"}, store.Attempts(OpDelete))
}
