// Package form drives one edit of a resume record from open to commit or cancel.
package form

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/suggest"
	"github.com/jonathan/resume-editor/internal/types"
)

var (
	// ErrAlreadyOpen is returned when opening a session that is not closed.
	ErrAlreadyOpen = errors.New("a form for this collection is already open")
	// ErrNotOpen is returned by operations that need an open session.
	ErrNotOpen = errors.New("form is not open")
	// ErrBusy is returned while a commit or suggestion request is outstanding.
	ErrBusy = errors.New("a request is already in flight for this form")
	// ErrSuperseded is returned when a response arrives for a form that was
	// closed, reopened, or whose description changed since the request was sent.
	// The response is discarded.
	ErrSuperseded = errors.New("response discarded: form changed while request was in flight")
	// ErrUnknownField is returned by Edit for a field outside the kind's schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrNoSuggester is returned by RequestSuggestions when no bridge is configured.
	ErrNoSuggester = errors.New("suggestions are not configured")
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateClosed means no draft exists
	StateClosed State = iota
	// StateOpenNew means the draft will be created on commit
	StateOpenNew
	// StateOpenEditing means the draft replaces a stored record on commit
	StateOpenEditing
	// StateCommitting means a write is in flight
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenNew:
		return "open (new)"
	case StateOpenEditing:
		return "open (editing)"
	case StateCommitting:
		return "committing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Open reports whether the state holds a draft that can be edited.
func (s State) Open() bool {
	return s == StateOpenNew || s == StateOpenEditing
}

// Collection is the store a session commits through.
// *collection.Store and *collection.MemoryStore satisfy it.
type Collection interface {
	Kind() types.Kind
	Resolve(d collection.Draft) (collection.Intent, error)
	Create(ctx context.Context, rec types.Record) error
	Update(ctx context.Context, p collection.Position, rec types.Record) error
}

// Suggester fetches description rewrites. *suggest.Bridge satisfies it.
type Suggester interface {
	Suggest(ctx context.Context, kind types.Kind, pos *collection.Position, description string) (suggest.Set, error)
}

// Options configures a Session.
type Options struct {
	DefaultLogo string    // logo for new drafts; types.DefaultLogo when empty
	Suggester   Suggester // optional
	Logger      *log.Logger
}

// Session owns one edit lifecycle for a collection. It is safe for concurrent use;
// network calls run without holding the lock and their results are applied only
// if the session has not moved on.
type Session struct {
	kind        types.Kind
	store       Collection
	suggester   Suggester
	defaultLogo string
	logger      *log.Logger

	mu          sync.Mutex
	id          string
	state       State
	openState   State // state to return to after a failed commit
	draft       collection.Draft
	suggestions suggest.Set
	lastErr     error
	generation  uint64 // bumped on open, cancel, and close
	sourceRev   uint64 // bumped when the description changes
	inFlight    bool
}

// NewSession creates a closed session over store.
func NewSession(store Collection, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[form] ", log.LstdFlags)
	}
	return &Session{
		kind:        store.Kind(),
		store:       store,
		suggester:   opts.Suggester,
		defaultLogo: opts.DefaultLogo,
		logger:      logger,
	}
}

// Kind returns the collection the session edits.
func (s *Session) Kind() types.Kind {
	return s.kind
}

// Open seeds a draft from existing, or a blank record when existing is nil.
// The draft is a copy and never aliases the mirror.
func (s *Session) Open(existing *collection.Entry) error {
	if existing != nil && existing.Position.Kind != s.kind {
		return fmt.Errorf("cannot open %s entry in %s form", existing.Position.Kind, s.kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		return ErrAlreadyOpen
	}

	s.generation++
	s.id = uuid.NewString()
	s.draft = collection.NewDraft(s.kind, existing, s.defaultLogo)
	s.suggestions = suggest.Set{}
	s.lastErr = nil
	s.inFlight = false
	if existing == nil {
		s.state = StateOpenNew
	} else {
		s.state = StateOpenEditing
	}
	s.openState = s.state
	s.logger.Printf("form %s opened for %s (%s)", s.id, s.kind, s.state)
	return nil
}

// Edit sets one field of the draft. Changing the description clears suggestions and
// discards any suggestion response still in flight.
func (s *Session) Edit(field, value string) error {
	if !types.HasField(s.kind, field) {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, s.kind, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}

	s.draft.Record[field] = value
	if field == types.FieldDescription {
		s.sourceRev++
		s.suggestions = suggest.Set{}
	}
	return nil
}

// Commit validates the draft, then creates or updates it through the store.
//
// A validation failure returns *types.ValidationError without any network call.
// On a write failure the session stays open with the draft intact. On success,
// and on *collection.RefreshError where the write did land, the session closes.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	if err := s.idleLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := types.Validate(s.kind, s.draft.Record); err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	intent, err := s.store.Resolve(s.draft)
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	gen := s.generation
	id := s.id
	rec := s.draft.Record.Clone()
	s.state = StateCommitting
	s.inFlight = true
	s.mu.Unlock()

	if intent.Op == collection.OpUpdate {
		err = s.store.Update(ctx, intent.Position, rec)
	} else {
		err = s.store.Create(ctx, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Printf("form %s: discarding %s result after close (err=%v)", id, intent.Op, err)
		return ErrSuperseded
	}
	s.inFlight = false

	var refreshErr *collection.RefreshError
	if err != nil && !errors.As(err, &refreshErr) {
		s.state = s.openState
		s.lastErr = err
		s.logger.Printf("form %s: %s %s failed: %v", id, intent.Op, s.kind, err)
		return err
	}

	s.logger.Printf("form %s: %s %s committed", id, intent.Op, s.kind)
	s.closeLocked()
	return err
}

// Cancel discards the draft and closes the session. A request still in flight
// is abandoned; its response will be ignored.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.logger.Printf("form %s cancelled", s.id)
	s.closeLocked()
}

// RequestSuggestions asks for rewrites of the draft's description. On failure the
// current suggestions are left unchanged and the draft is never touched.
func (s *Session) RequestSuggestions(ctx context.Context) (suggest.Set, error) {
	s.mu.Lock()
	if err := s.idleLocked(); err != nil {
		s.mu.Unlock()
		return suggest.Set{}, err
	}
	if s.suggester == nil {
		s.mu.Unlock()
		return suggest.Set{}, ErrNoSuggester
	}

	gen, rev := s.generation, s.sourceRev
	description := s.draft.Record[types.FieldDescription]
	var pos *collection.Position
	if s.draft.Position != nil {
		p := *s.draft.Position
		pos = &p
	}
	s.inFlight = true
	s.mu.Unlock()

	set, err := s.suggester.Suggest(ctx, s.kind, pos, description)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return suggest.Set{}, ErrSuperseded
	}
	s.inFlight = false
	if err != nil {
		s.lastErr = err
		return s.suggestions, err
	}
	if rev != s.sourceRev {
		return s.suggestions, ErrSuperseded
	}
	s.suggestions = set
	return set, nil
}

// AcceptSuggestion copies the i-th suggestion into the draft's description and
// clears the suggestions. It makes no network call.
func (s *Session) AcceptSuggestion(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}

	rec, remaining, err := suggest.Accept(s.draft.Record, s.suggestions, i)
	if err != nil {
		return err
	}
	s.draft.Record = rec
	s.suggestions = remaining
	s.sourceRev++
	return nil
}

// ID returns the identifier of the current open, or of the last one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the draft. ok is false when the session is closed.
func (s *Session) Draft() (collection.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return collection.Draft{}, false
	}
	d := s.draft
	d.Record = s.draft.Record.Clone()
	if s.draft.Position != nil {
		p := *s.draft.Position
		d.Position = &p
	}
	return d, true
}

// Suggestions returns the current suggestion set.
func (s *Session) Suggestions() suggest.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions
}

// LastError returns the most recent validation, persistence, or suggestion error
// of the current open.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// openLocked must be called with mu held.
func (s *Session) openLocked() error {
	if s.state == StateCommitting {
		return ErrBusy
	}
	if !s.state.Open() {
		return ErrNotOpen
	}
	return nil
}

// idleLocked is openLocked plus no outstanding request. Must be called with mu held.
func (s *Session) idleLocked() error {
	if err := s.openLocked(); err != nil {
		return err
	}
	if s.inFlight {
		return ErrBusy
	}
	return nil
}

// closeLocked must be called with mu held.
func (s *Session) closeLocked() {
	s.generation++
	s.state = StateClosed
	s.draft = collection.Draft{}
	s.suggestions = suggest.Set{}
	s.inFlight = false
}
