package server

import (
	"context"
	"sync"

	"github.com/jonathan/resume-editor/internal/types"
)

// Store is the reference backend's positional list storage. Records have no identity
// beyond their index; Delete shifts every later record down by one.
type Store interface {
	List(ctx context.Context, kind types.Kind) ([]types.Record, error)
	Get(ctx context.Context, kind types.Kind, position int) (types.Record, error)
	Append(ctx context.Context, kind types.Kind, rec types.Record) (int, error)
	Replace(ctx context.Context, kind types.Kind, position int, rec types.Record) error
	Delete(ctx context.Context, kind types.Kind, position int) error
	Close()
}

// MemoryStore keeps every collection in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[types.Kind][]types.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[types.Kind][]types.Record)}
}

// Seed replaces a collection wholesale. Intended for tests and demos.
func (m *MemoryStore) Seed(kind types.Kind, records ...types.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]types.Record, len(records))
	for i, r := range records {
		list[i] = r.Clone()
	}
	m.lists[kind] = list
}

// List returns copies of the stored records in position order.
func (m *MemoryStore) List(_ context.Context, kind types.Kind) ([]types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.lists[kind]
	out := make([]types.Record, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out, nil
}

// Get returns a copy of the record at position.
func (m *MemoryStore) Get(_ context.Context, kind types.Kind, position int) (types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.lists[kind]
	if position < 0 || position >= len(list) {
		return nil, &ErrPositionOutOfRange{Kind: kind, Position: position, Length: len(list)}
	}
	return list[position].Clone(), nil
}

// Append adds rec at the end of the list and returns its position.
func (m *MemoryStore) Append(_ context.Context, kind types.Kind, rec types.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[kind] = append(m.lists[kind], rec.Clone())
	return len(m.lists[kind]) - 1, nil
}

// Replace overwrites the record at position.
func (m *MemoryStore) Replace(_ context.Context, kind types.Kind, position int, rec types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[kind]
	if position < 0 || position >= len(list) {
		return &ErrPositionOutOfRange{Kind: kind, Position: position, Length: len(list)}
	}
	list[position] = rec.Clone()
	return nil
}

// Delete removes the record at position.
func (m *MemoryStore) Delete(_ context.Context, kind types.Kind, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[kind]
	if position < 0 || position >= len(list) {
		return &ErrPositionOutOfRange{Kind: kind, Position: position, Length: len(list)}
	}
	m.lists[kind] = append(list[:position:position], list[position+1:]...)
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() {}
