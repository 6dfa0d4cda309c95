package prefixindex

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/hupe1980/prefixindex/codec"
	"github.com/hupe1980/prefixindex/kv"
	"github.com/hupe1980/prefixindex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func personID(p person) string { return p.ID }

// page is larger than any result set in these tests.
const page = 100

func newTestSingle(t *testing.T, store kv.Store, name string, opts IndexOptions, optFns ...Option) *Single[person] {
	t.Helper()
	idx, err := NewSingle(name, store, personID, append([]Option{WithIndexOptions(opts)}, optFns...)...)
	require.NoError(t, err)
	return idx
}

func TestNewSingle_Validation(t *testing.T) {
	store := kv.NewMemoryStore()

	_, err := NewSingle("x", store, personID)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewSingle("people", nil, personID)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewSingle[person]("people", store, nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewSingle("people", store, personID, WithIndexOptions(IndexOptions{MinLength: 4, MaxLength: 2}))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "minLength", verr.Field)
}

func TestSingle_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())

	bill := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Index(ctx, bill, bill.Name))

	for _, term := range []string{"GATES", "gates", "Gates"} {
		found, err := idx.Find(ctx, term, 10)
		require.NoError(t, err)
		assert.Equal(t, []person{bill}, found, term)
	}
}

func TestSingle_CaseSensitive(t *testing.T) {
	ctx := context.Background()
	opts := DefaultIndexOptions()
	opts.CaseSensitive = true
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", opts)

	bill := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Index(ctx, bill, bill.Name))

	found, err := idx.Find(ctx, "Gat", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = idx.Find(ctx, "gat", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSingle_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	idx := newTestSingle(t, store, "people", IndexOptions{MinLength: 2, MaxLength: 6})

	bill := person{ID: "1", Name: "Bill Gates", Email: "bill@example.com"}
	s := bill.Name
	require.NoError(t, idx.Index(ctx, bill, s))

	for l := 2; l <= 6; l++ {
		found, err := idx.Find(ctx, s[:l], page)
		require.NoError(t, err)
		assert.Equal(t, []person{bill}, found, s[:l])
	}

	size, err := idx.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	require.NoError(t, idx.Delete(ctx, s, bill))

	for l := 1; l <= len(s); l++ {
		found, err := idx.Find(ctx, s[:l], page)
		require.NoError(t, err)
		assert.Empty(t, found, s[:l])
	}

	size, err = idx.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestSingle_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())

	bill := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Delete(ctx, "never indexed", bill))

	require.NoError(t, idx.Index(ctx, bill, bill.Name))
	require.NoError(t, idx.Delete(ctx, bill.Name, bill))
	require.NoError(t, idx.Delete(ctx, bill.Name, bill))
	require.NoError(t, idx.DeleteKey(ctx, bill.Name, "1"))
}

func TestSingle_DeleteValidation(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())

	require.ErrorIs(t, idx.DeleteKey(ctx, "", "1"), ErrValidation)
	require.ErrorIs(t, idx.DeleteKey(ctx, "gates", ""), ErrValidation)
	require.ErrorIs(t, idx.DeleteKey(ctx, strings.Repeat("g", MaxKeyLength+1), "1"), ErrValidation)
}

func TestSingle_MaxLengthBoundary(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", IndexOptions{MinLength: 1, MaxLength: 3})

	bill := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Index(ctx, bill, bill.Name))

	found, err := idx.Find(ctx, "gat", 10)
	require.NoError(t, err)
	assert.Equal(t, []person{bill}, found)

	found, err = idx.Find(ctx, "gates", 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	// Deletion is uncapped and removes everything indexing wrote.
	require.NoError(t, idx.Delete(ctx, bill.Name, bill))
	size, err := idx.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestSingle_BoundPolicies(t *testing.T) {
	ctx := context.Background()
	bill := person{ID: "1", Name: "Gates"}

	t.Run("MinNotMetIgnored", func(t *testing.T) {
		store := kv.NewMemoryStore()
		idx := newTestSingle(t, store, "people", IndexOptions{MinLength: 6, MaxLength: 10})
		require.NoError(t, idx.Index(ctx, bill, bill.Name))

		size, err := idx.Size(ctx)
		require.NoError(t, err)
		assert.Zero(t, size)
	})

	t.Run("MinNotMetThrows", func(t *testing.T) {
		idx := newTestSingle(t, kv.NewMemoryStore(), "people", IndexOptions{MinLength: 6, MaxLength: 10, ThrowOnMinNotMet: true})
		err := idx.Index(ctx, bill, bill.Name)

		var berr *BoundError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, BoundMin, berr.Bound)
		assert.Equal(t, 5, berr.Length)
		assert.ErrorIs(t, err, ErrBoundViolation)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("MaxExceededThrowsAndWritesNothing", func(t *testing.T) {
		idx := newTestSingle(t, kv.NewMemoryStore(), "people", IndexOptions{MinLength: 1, MaxLength: 3, ThrowOnMaxExceeded: true})
		err := idx.Index(ctx, bill, bill.Name)

		var berr *BoundError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, BoundMax, berr.Bound)

		size, err := idx.Size(ctx)
		require.NoError(t, err)
		assert.Zero(t, size)
	})

	t.Run("TooLong", func(t *testing.T) {
		idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())
		err := idx.Index(ctx, bill, strings.Repeat("g", MaxKeyLength+1))
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("EmptyRowKey", func(t *testing.T) {
		idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())
		err := idx.Index(ctx, person{Name: "Gates"}, "Gates")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "rowKey", verr.Field)
	})
}

func TestSingle_ConflictPolicy(t *testing.T) {
	ctx := context.Background()
	bill := person{ID: "1", Name: "Gates"}

	t.Run("Ignored", func(t *testing.T) {
		idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())
		require.NoError(t, idx.Index(ctx, bill, bill.Name))
		require.NoError(t, idx.Index(ctx, bill, bill.Name))

		found, err := idx.Find(ctx, "gat", page)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("Throws", func(t *testing.T) {
		opts := DefaultIndexOptions()
		opts.ThrowOnConflict = true
		idx := newTestSingle(t, kv.NewMemoryStore(), "people", opts)
		require.NoError(t, idx.Index(ctx, bill, bill.Name))

		err := idx.Index(ctx, bill, bill.Name)
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "1", cerr.RowKey)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("ThrowsAfterAllWrites", func(t *testing.T) {
		opts := DefaultIndexOptions()
		opts.ThrowOnConflict = true
		idx := newTestSingle(t, kv.NewMemoryStore(), "people", opts)

		// Pre-existing "ga" conflicts; the longer terms must still be written.
		require.NoError(t, idx.Index(ctx, bill, "Ga"))
		err := idx.Index(ctx, bill, bill.Name)
		require.ErrorIs(t, err, ErrConflict)

		found, err := idx.Find(ctx, "gates", page)
		require.NoError(t, err)
		assert.Equal(t, []person{bill}, found)
	})
}

func TestSingle_Reindex(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", IndexOptions{MinLength: 2, MaxLength: 10})

	old := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Index(ctx, old, old.Name))

	updated := person{ID: "1", Name: "Jobs"}
	require.NoError(t, idx.Reindex(ctx, updated, old.Name, updated.Name))

	for _, term := range []string{"ga", "gat", "gates"} {
		found, err := idx.Find(ctx, term, page)
		require.NoError(t, err)
		assert.Empty(t, found, term)
	}
	for _, term := range []string{"jo", "job", "jobs"} {
		found, err := idx.Find(ctx, term, page)
		require.NoError(t, err)
		assert.Equal(t, []person{updated}, found, term)
	}

	t.Run("SameStringRefreshesPayload", func(t *testing.T) {
		renamed := person{ID: "1", Name: "Jobs", Email: "steve@example.com"}
		require.NoError(t, idx.Reindex(ctx, renamed, "Jobs", "Jobs"))

		found, err := idx.Find(ctx, "jobs", page)
		require.NoError(t, err)
		assert.Equal(t, []person{renamed}, found)
	})

	t.Run("EmptyOldString", func(t *testing.T) {
		ada := person{ID: "2", Name: "Ada"}
		err := idx.Reindex(ctx, ada, "", ada.Name)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "oldSearchString", verr.Field)

		found, err := idx.Find(ctx, "ad", page)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("NewTooLong", func(t *testing.T) {
		err := idx.Reindex(ctx, updated, updated.Name, strings.Repeat("j", MaxKeyLength+1))
		require.ErrorIs(t, err, ErrValidation)

		// Nothing was deleted.
		found, err := idx.Find(ctx, "jobs", page)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}

func TestSingle_Find(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())

	for _, p := range []person{{ID: "1", Name: "Gates"}, {ID: "2", Name: "Gatsby"}, {ID: "3", Name: "Galt"}} {
		require.NoError(t, idx.Index(ctx, p, p.Name))
	}

	found, err := idx.Find(ctx, "ga", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = idx.Find(ctx, "ga", page)
	require.NoError(t, err)
	assert.Len(t, found, 3)

	_, err = idx.Find(ctx, "", 10)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	_, err = idx.Find(ctx, strings.Repeat("g", MaxKeyLength+1), 10)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "term", verr.Field)

	_, err = idx.Find(ctx, "ga", -1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSingle_FindZeroPageSize(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFaultyStore(kv.NewMemoryStore())
	idx := newTestSingle(t, store, "people", DefaultIndexOptions())

	for _, p := range []person{{ID: "1", Name: "Gates"}, {ID: "2", Name: "Galt"}, {ID: "3", Name: "Gauss"}} {
		require.NoError(t, idx.Index(ctx, p, p.Name))
	}

	found, err := idx.Find(ctx, "ga", 0)
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
	assert.Empty(t, store.Attempts(testutil.OpQuery))
}

func TestSingle_IndexFunc(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions())

	bill := person{ID: "1", Name: "Gates", Email: "bill@example.com"}
	require.NoError(t, idx.IndexFunc(ctx, bill, func(p person) string { return p.Email }))

	found, err := idx.Find(ctx, "bill@", page)
	require.NoError(t, err)
	assert.Equal(t, []person{bill}, found)

	require.ErrorIs(t, idx.IndexFunc(ctx, bill, nil), ErrValidation)
}

func TestSingle_EntriesAndDrop(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	idx := newTestSingle(t, store, "people", IndexOptions{MinLength: 3, MaxLength: 4})
	other := newTestSingle(t, store, "others", DefaultIndexOptions())

	bill := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Index(ctx, bill, bill.Name))
	require.NoError(t, other.Index(ctx, bill, bill.Name))

	entries, err := idx.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry[person]{
		{Term: "gat", RowKey: "1", Value: bill},
		{Term: "gate", RowKey: "1", Value: bill},
	}, entries)

	require.NoError(t, idx.Drop(ctx))

	size, err := idx.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)

	size, err = other.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestSingle_Codecs(t *testing.T) {
	ctx := context.Background()
	compressed, err := codec.NewCompressed(codec.JSON{}, codec.Zstd)
	require.NoError(t, err)

	store := kv.NewMemoryStore()
	idx := newTestSingle(t, store, "people", DefaultIndexOptions(), WithCodec(compressed))

	bill := person{ID: "1", Name: "Gates", Email: "bill@example.com"}
	require.NoError(t, idx.Index(ctx, bill, bill.Name))

	found, err := idx.Find(ctx, "gates", page)
	require.NoError(t, err)
	assert.Equal(t, []person{bill}, found)

	// A reader with a different codec cannot decode the entries.
	plain := newTestSingle(t, store, "people", DefaultIndexOptions(), WithCodec(codec.JSON{}))
	_, err = plain.Find(ctx, "gates", page)
	require.Error(t, err)
}

func TestSingle_StoreErrorSurfacesUnchanged(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("throttled")
	store := testutil.NewFaultyStore(kv.NewMemoryStore())
	store.FailOn(testutil.OpPut, "ga", boom)
	idx := newTestSingle(t, store, "people", DefaultIndexOptions())

	bill := person{ID: "1", Name: "Gates"}
	err := idx.Index(ctx, bill, bill.Name)
	require.ErrorIs(t, err, boom)

	// Every term was attempted and the others were written.
	assert.ElementsMatch(t, []string{"g", "ga", "gat", "gate", "gates"}, store.Attempts(testutil.OpPut))
	size, err := idx.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)
}

func TestSingle_DeleteErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("throttled")
	store := testutil.NewFaultyStore(kv.NewMemoryStore())
	idx := newTestSingle(t, store, "people", DefaultIndexOptions())

	bill := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Index(ctx, bill, bill.Name))

	store.FailOn(testutil.OpDelete, "gat", boom)
	require.ErrorIs(t, idx.Delete(ctx, bill.Name, bill), boom)

	// Only the failed term is left behind.
	entries, err := idx.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "gat", entries[0].Term)
}

func TestSingle_RandomCorpus(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(4711)
	opts := IndexOptions{MinLength: 2, MaxLength: 6}
	idx := newTestSingle(t, kv.NewMemoryStore(), "words", opts)

	words := rng.Words(50, 1, 10)
	for i, w := range words {
		require.NoError(t, idx.Index(ctx, person{ID: strconv.Itoa(i), Name: w}, w))
	}

	for i, w := range words {
		terms, err := GenerateTerms(w, opts, true)
		require.NoError(t, err)
		for _, term := range terms.Keys {
			found, err := idx.Find(ctx, term, page)
			require.NoError(t, err)
			assert.Contains(t, found, person{ID: strconv.Itoa(i), Name: w}, "term %q", term)
		}
	}

	for i, w := range words {
		require.NoError(t, idx.Delete(ctx, w, person{ID: strconv.Itoa(i), Name: w}))
	}
	size, err := idx.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestSingle_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", DefaultIndexOptions(), WithMetricsCollector(metrics), WithLogger(nil))

	bill := person{ID: "1", Name: "Gates"}
	require.NoError(t, idx.Index(ctx, bill, bill.Name))
	_, err := idx.Find(ctx, "gat", page)
	require.NoError(t, err)
	_, err = idx.Find(ctx, "", page)
	require.Error(t, err)
	require.NoError(t, idx.Reindex(ctx, bill, bill.Name, "Gates"))

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.IndexCount)
	assert.Equal(t, int64(10), stats.TermsWritten)
	assert.Equal(t, int64(1), stats.DeleteCount)
	assert.Equal(t, int64(5), stats.TermsDeleted)
	assert.Equal(t, int64(1), stats.ReindexCount)
	assert.Equal(t, int64(2), stats.FindCount)
	assert.Equal(t, int64(1), stats.FindErrors)
	assert.Equal(t, int64(1), stats.FindResults)
}

func TestSingle_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	idx := newTestSingle(t, kv.NewMemoryStore(), "people", IndexOptions{MinLength: 1, MaxLength: 8})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := person{ID: string(rune('A' + i)), Name: "Gates"}
			assert.NoError(t, idx.Index(ctx, p, p.Name))
		}(i)
	}
	wg.Wait()

	found, err := idx.Find(ctx, "gates", page)
	require.NoError(t, err)
	assert.Len(t, found, 32)
}
