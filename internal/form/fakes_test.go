package form

import (
	"context"
	"sync"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/suggest"
	"github.com/jonathan/resume-editor/internal/types"
)

// fakeCollection resolves every draft to create and can block or fail writes.
type fakeCollection struct {
	kind types.Kind

	mu      sync.Mutex
	creates int
	err     error
	block   chan struct{}
	started chan struct{}
}

func newFakeCollection(kind types.Kind) *fakeCollection {
	return &fakeCollection{kind: kind}
}

func (f *fakeCollection) Kind() types.Kind { return f.kind }

func (f *fakeCollection) Resolve(collection.Draft) (collection.Intent, error) {
	return collection.Intent{Op: collection.OpCreate}, nil
}

func (f *fakeCollection) Create(_ context.Context, _ types.Record) error {
	f.mu.Lock()
	f.creates++
	block, started, err := f.block, f.started, f.err
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeCollection) Update(_ context.Context, _ collection.Position, _ types.Record) error {
	return nil
}

type fakeSuggester struct {
	set     suggest.Set
	err     error
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (f *fakeSuggester) Suggest(_ context.Context, _ types.Kind, _ *collection.Position, _ string) (suggest.Set, error) {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	return f.set, f.err
}
