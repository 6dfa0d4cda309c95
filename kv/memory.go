package kv

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store implementation for testing.
// Records within a partition are returned in row key order.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]map[string][]byte // namespace -> pk -> rk -> value
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		namespaces: make(map[string]map[string]map[string][]byte),
	}
}

// Put inserts a record.
func (m *MemoryStore) Put(ctx context.Context, namespace string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	partitions, ok := m.namespaces[namespace]
	if !ok {
		partitions = make(map[string]map[string][]byte)
		m.namespaces[namespace] = partitions
	}
	rows, ok := partitions[rec.PartitionKey]
	if !ok {
		rows = make(map[string][]byte)
		partitions[rec.PartitionKey] = rows
	}
	if _, exists := rows[rec.RowKey]; exists {
		return ErrConflict
	}

	// Copy to prevent external mutation
	value := make([]byte, len(rec.Value))
	copy(value, rec.Value)
	rows[rec.RowKey] = value
	return nil
}

// Delete removes a record.
func (m *MemoryStore) Delete(ctx context.Context, namespace, partitionKey, rowKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.namespaces[namespace][partitionKey]
	if !ok {
		return ErrNotFound
	}
	if _, exists := rows[rowKey]; !exists {
		return ErrNotFound
	}
	delete(rows, rowKey)
	if len(rows) == 0 {
		delete(m.namespaces[namespace], partitionKey)
	}
	return nil
}

// Query returns up to limit records of a partition.
func (m *MemoryStore) Query(ctx context.Context, namespace, partitionKey string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := partitionRecords(partitionKey, m.namespaces[namespace][partitionKey])
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Count returns the number of records in namespace.
func (m *MemoryStore) Count(ctx context.Context, namespace string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, rows := range m.namespaces[namespace] {
		n += int64(len(rows))
	}
	return n, nil
}

// Scan returns every record in namespace ordered by partition and row key.
func (m *MemoryStore) Scan(ctx context.Context, namespace string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	partitions := m.namespaces[namespace]
	pks := make([]string, 0, len(partitions))
	for pk := range partitions {
		pks = append(pks, pk)
	}
	sort.Strings(pks)

	var recs []Record
	for _, pk := range pks {
		recs = append(recs, partitionRecords(pk, partitions[pk])...)
	}
	return recs, nil
}

// Drop removes the namespace.
func (m *MemoryStore) Drop(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.namespaces, namespace)
	return nil
}

// partitionRecords must be called with mu held.
func partitionRecords(partitionKey string, rows map[string][]byte) []Record {
	recs := make([]Record, 0, len(rows))
	for rk, v := range rows {
		value := make([]byte, len(v))
		copy(value, v)
		recs = append(recs, Record{PartitionKey: partitionKey, RowKey: rk, Value: value})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].RowKey < recs[j].RowKey })
	return recs
}
