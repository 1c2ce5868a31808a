package kv

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in a map. It is used by tests and by the service
// when no persistent backend is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(r), nil
}

func (m *MemoryStore) Put(_ context.Context, rec *Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, exists := m.records[rec.Key]
	switch {
	case rec.Rev == "" && exists:
		return "", ErrConflict
	case rec.Rev != "" && (!exists || cur.Rev != rec.Rev):
		return "", ErrConflict
	}
	stored := copyRecord(rec)
	stored.Rev = NextRevision(rec.Rev)
	m.records[rec.Key] = stored
	return stored.Rev, nil
}

func (m *MemoryStore) Remove(_ context.Context, key, rev string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[key]
	if !ok {
		return ErrNotFound
	}
	if cur.Rev != rev {
		return ErrConflict
	}
	delete(m.records, key)
	return nil
}

func (m *MemoryStore) Range(_ context.Context, start, end string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Record, 0, len(m.records))
	for k, r := range m.records {
		if inRange(k, start, end) {
			out = append(out, copyRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
