package form

import (
	"fmt"
	"sync"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/types"
)

// Workspace holds exactly one Session per collection kind, so at most one form per
// collection can be open. A second open of the same kind fails with ErrAlreadyOpen;
// the open form is never closed implicitly.
type Workspace struct {
	opts Options

	mu       sync.Mutex
	sessions map[types.Kind]*Session
}

// NewWorkspace creates an empty workspace whose sessions share opts.
func NewWorkspace(opts Options) *Workspace {
	return &Workspace{opts: opts, sessions: make(map[types.Kind]*Session)}
}

// Add creates the session for store's kind.
func (w *Workspace) Add(store Collection) (*Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kind := store.Kind()
	if _, ok := w.sessions[kind]; ok {
		return nil, fmt.Errorf("workspace already has a %s form", kind)
	}
	s := NewSession(store, w.opts)
	w.sessions[kind] = s
	return s, nil
}

// Session returns the session for kind.
func (w *Workspace) Session(kind types.Kind) (*Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[kind]
	return s, ok
}

// Open opens the form for kind over existing (nil for a new record).
func (w *Workspace) Open(kind types.Kind, existing *collection.Entry) (*Session, error) {
	s, ok := w.Session(kind)
	if !ok {
		return nil, fmt.Errorf("no %s form in workspace", kind)
	}
	if err := s.Open(existing); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenForms returns the kinds whose forms are not closed.
func (w *Workspace) OpenForms() []types.Kind {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []types.Kind
	for _, kind := range types.Kinds() {
		if s, ok := w.sessions[kind]; ok && s.State() != StateClosed {
			out = append(out, kind)
		}
	}
	return out
}

// CancelAll closes every open form.
func (w *Workspace) CancelAll() {
	w.mu.Lock()
	sessions := make([]*Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		sessions = append(sessions, s)
	}
	w.mu.Unlock()

	for _, s := range sessions {
		s.Cancel()
	}
}
