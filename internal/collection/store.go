package collection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/jonathan/resume-editor/internal/resumeapi"
	"github.com/jonathan/resume-editor/internal/types"
)

// Backend is the positional REST surface a Store synchronizes against.
// *resumeapi.Client satisfies it.
type Backend interface {
	List(ctx context.Context, kind types.Kind) ([]types.Record, error)
	Create(ctx context.Context, kind types.Kind, rec types.Record) error
	Replace(ctx context.Context, kind types.Kind, position int, rec types.Record) error
	Delete(ctx context.Context, kind types.Kind, position int) error
}

// Store owns the local mirror of one remote collection and mediates all writes to it.
//
// Writes are serialized. After every confirmed write the epoch is bumped, which
// invalidates every outstanding Position, and the mirror is reloaded wholesale.
type Store struct {
	kind    types.Kind
	backend Backend
	logger  *log.Logger

	writeMu sync.Mutex // held across write + refresh

	mu        sync.Mutex
	mirror    Mirror
	epoch     uint64
	loadSeq   uint64 // last started load
	installed uint64 // seq of the load whose result is the mirror
}

// NewStore creates a store for a persisted kind. A nil logger writes to stderr.
func NewStore(kind types.Kind, backend Backend, logger *log.Logger) (*Store, error) {
	if !kind.Persisted() {
		return nil, fmt.Errorf("%w: %s", resumeapi.ErrUnsupportedKind, kind)
	}
	if backend == nil {
		return nil, fmt.Errorf("collection backend is required")
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[collection] ", log.LstdFlags)
	}
	return &Store{
		kind:    kind,
		backend: backend,
		logger:  logger,
		mirror:  Mirror{kind: kind},
	}, nil
}

// Kind returns the collection kind.
func (s *Store) Kind() types.Kind {
	return s.kind
}

// Mirror returns the current snapshot.
func (s *Store) Mirror() Mirror {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirror
}

// Epoch returns the current store epoch.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Index returns a RecordIndex over the current snapshot and epoch.
func (s *Store) Index() RecordIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RecordIndex{mirror: s.mirror, epoch: s.epoch}
}

// Resolve decides create-vs-update for d against the current snapshot.
func (s *Store) Resolve(d Draft) (Intent, error) {
	return s.Index().Resolve(d)
}

// Entry returns the i-th record of the current snapshot with its position.
func (s *Store) Entry(i int) (Entry, error) {
	return s.Index().Entry(i)
}

// PositionAt returns the position of the i-th record of the current snapshot.
func (s *Store) PositionAt(i int) (Position, error) {
	return s.Index().PositionAt(i)
}

// Load fetches the whole collection and replaces the mirror.
//
// A result is installed only if no later-started load has installed and no write
// was confirmed while it was in flight; otherwise the newer mirror is returned.
// When the epoch moved without a newer mirror being installed, as after a stale
// write, the fetch is repeated so the returned mirror always resolves positions.
func (s *Store) Load(ctx context.Context) (Mirror, error) {
	for {
		s.mu.Lock()
		s.loadSeq++
		seq := s.loadSeq
		epoch := s.epoch
		s.mu.Unlock()

		records, err := s.backend.List(ctx, s.kind)
		if err != nil {
			return Mirror{}, err
		}

		s.mu.Lock()
		if seq >= s.installed && epoch == s.epoch {
			s.mirror = NewMirror(s.kind, epoch, records)
			s.installed = seq
			m := s.mirror
			s.mu.Unlock()
			return m, nil
		}
		m, current := s.mirror, s.mirror.epoch == s.epoch
		s.mu.Unlock()

		if current {
			s.logger.Printf("discarding %s load #%d (superseded)", s.kind, seq)
			return m, nil
		}
		s.logger.Printf("discarding %s load #%d (epoch moved), fetching again", s.kind, seq)
	}
}

// Create appends rec on the backend, then reloads.
func (s *Store) Create(ctx context.Context, rec types.Record) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.Create(ctx, s.kind, rec); err != nil {
		return err
	}
	return s.committed(ctx, "create")
}

// Update replaces the record at p, then reloads. p must come from the current snapshot.
func (s *Store) Update(ctx context.Context, p Position, rec types.Record) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.Index().Check("update", p); err != nil {
		return err
	}
	if err := s.backend.Replace(ctx, s.kind, p.Index, rec); err != nil {
		s.invalidateIfStale(err)
		return err
	}
	return s.committed(ctx, "update")
}

// Delete removes the record at p, then reloads. Later records shift down by one.
func (s *Store) Delete(ctx context.Context, p Position) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.Index().Check("delete", p); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, s.kind, p.Index); err != nil {
		s.invalidateIfStale(err)
		return err
	}
	return s.committed(ctx, "delete")
}

// committed bumps the epoch after a confirmed write and reloads the mirror.
func (s *Store) committed(ctx context.Context, op string) error {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()

	if _, err := s.Load(ctx); err != nil {
		s.logger.Printf("%s %s committed but reload failed: %v", op, s.kind, err)
		return &RefreshError{Op: op, Kind: s.kind, Cause: err}
	}
	return nil
}

// invalidateIfStale bumps the epoch when the backend reports that the mirror no
// longer matches its list, so no position resolves until the next Load.
func (s *Store) invalidateIfStale(err error) {
	if !errors.Is(err, resumeapi.ErrStalePosition) {
		return
	}
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
	s.logger.Printf("%s mirror invalidated: %v", s.kind, err)
}
