package collection

import (
	"context"
	"sync"

	"github.com/jonathan/resume-editor/internal/types"
)

// MemoryStore offers the Store write surface for kinds with no backend endpoint,
// such as personal info. Writes apply directly to the mirror; positions follow the
// same epoch rules as Store.
type MemoryStore struct {
	kind types.Kind

	mu     sync.Mutex
	mirror Mirror
	epoch  uint64
}

// NewMemoryStore creates a store seeded with records.
func NewMemoryStore(kind types.Kind, records ...types.Record) *MemoryStore {
	return &MemoryStore{kind: kind, mirror: NewMirror(kind, 0, records)}
}

// Kind returns the collection kind.
func (m *MemoryStore) Kind() types.Kind {
	return m.kind
}

// Load returns the current snapshot.
func (m *MemoryStore) Load(_ context.Context) (Mirror, error) {
	return m.Mirror(), nil
}

// Mirror returns the current snapshot.
func (m *MemoryStore) Mirror() Mirror {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mirror
}

// Index returns a RecordIndex over the current snapshot.
func (m *MemoryStore) Index() RecordIndex {
	m.mu.Lock()
	defer m.mu.Unlock()
	return RecordIndex{mirror: m.mirror, epoch: m.epoch}
}

// Resolve decides create-vs-update for d against the current snapshot.
func (m *MemoryStore) Resolve(d Draft) (Intent, error) {
	return m.Index().Resolve(d)
}

// Create appends rec.
func (m *MemoryStore) Create(_ context.Context, rec types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := append(m.mirror.records[:len(m.mirror.records):len(m.mirror.records)], rec)
	m.install(records)
	return nil
}

// Update replaces the record at p.
func (m *MemoryStore) Update(_ context.Context, p Position, rec types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := (RecordIndex{mirror: m.mirror, epoch: m.epoch}).Check("update", p); err != nil {
		return err
	}
	records := make([]types.Record, len(m.mirror.records))
	copy(records, m.mirror.records)
	records[p.Index] = rec
	m.install(records)
	return nil
}

// Delete removes the record at p.
func (m *MemoryStore) Delete(_ context.Context, p Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := (RecordIndex{mirror: m.mirror, epoch: m.epoch}).Check("delete", p); err != nil {
		return err
	}
	records := append(m.mirror.records[:p.Index:p.Index], m.mirror.records[p.Index+1:]...)
	m.install(records)
	return nil
}

// install must be called with mu held.
func (m *MemoryStore) install(records []types.Record) {
	m.epoch++
	m.mirror = NewMirror(m.kind, m.epoch, records)
}
