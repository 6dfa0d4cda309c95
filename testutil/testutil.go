package testutil

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hupe1980/prefixindex/kv"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Word returns a lowercase ASCII word with a length in [minLen, maxLen].
func (r *RNG) Word(minLen, maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.word(minLen, maxLen)
}

// Words returns n words, locking only once.
func (r *RNG) Words(n, minLen, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = r.word(minLen, maxLen)
	}
	return out
}

func (r *RNG) word(minLen, maxLen int) string {
	n := minLen
	if maxLen > minLen {
		n += r.rand.Intn(maxLen - minLen + 1)
	}

	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Op names a kv.Store operation for fault injection.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
	OpQuery  Op = "query"
)

type fault struct {
	op           Op
	partitionKey string
}

// FaultyStore wraps a kv.Store and fails chosen operations on chosen
// partition keys. Every attempted partition key is recorded, including the
// failed ones.
type FaultyStore struct {
	kv.Store

	mu       sync.Mutex
	faults   map[fault]error
	attempts map[Op][]string
}

// NewFaultyStore wraps inner.
func NewFaultyStore(inner kv.Store) *FaultyStore {
	return &FaultyStore{
		Store:    inner,
		faults:   make(map[fault]error),
		attempts: make(map[Op][]string),
	}
}

// FailOn makes op on partitionKey return err. A nil err clears the fault.
func (f *FaultyStore) FailOn(op Op, partitionKey string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := fault{op: op, partitionKey: partitionKey}
	if err == nil {
		delete(f.faults, k)
		return
	}
	f.faults[k] = err
}

// Attempts returns the partition keys op was called with, in call order.
func (f *FaultyStore) Attempts(op Op) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.attempts[op]...)
}

func (f *FaultyStore) record(op Op, partitionKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts[op] = append(f.attempts[op], partitionKey)
	return f.faults[fault{op: op, partitionKey: partitionKey}]
}

func (f *FaultyStore) Put(ctx context.Context, namespace string, rec kv.Record) error {
	if err := f.record(OpPut, rec.PartitionKey); err != nil {
		return err
	}
	return f.Store.Put(ctx, namespace, rec)
}

func (f *FaultyStore) Delete(ctx context.Context, namespace, partitionKey, rowKey string) error {
	if err := f.record(OpDelete, partitionKey); err != nil {
		return err
	}
	return f.Store.Delete(ctx, namespace, partitionKey, rowKey)
}

func (f *FaultyStore) Query(ctx context.Context, namespace, partitionKey string, limit int) ([]kv.Record, error) {
	if err := f.record(OpQuery, partitionKey); err != nil {
		return nil, err
	}
	return f.Store.Query(ctx, namespace, partitionKey, limit)
}
