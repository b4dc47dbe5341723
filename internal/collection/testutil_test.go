package collection

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jonathan/resume-editor/internal/resumeapi"
	"github.com/jonathan/resume-editor/internal/server"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/require"
)

var quiet = log.New(io.Discard, "", 0)

// newBackend starts the reference server over a memory store and returns a client for it.
func newBackend(t *testing.T) (*resumeapi.Client, *server.MemoryStore) {
	t.Helper()
	store := server.NewMemoryStore()
	srv, err := server.New(server.Config{Store: store, Logger: quiet})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := resumeapi.NewClient(ts.URL, &resumeapi.Options{Logger: quiet})
	require.NoError(t, err)
	return client, store
}

func experience(title, company string) types.Record {
	return types.Record{types.FieldTitle: title, types.FieldCompany: company}
}

// fakeBackend counts calls and lets tests intercept List.
type fakeBackend struct {
	mu       sync.Mutex
	records  []types.Record
	calls    map[string]int
	listHook func(call int) // runs before List returns
	listErr  error
	writeErr error
}

func newFakeBackend(records ...types.Record) *fakeBackend {
	return &fakeBackend{records: records, calls: map[string]int{}}
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) List(_ context.Context, _ types.Kind) ([]types.Record, error) {
	f.mu.Lock()
	f.calls["list"]++
	call := f.calls["list"]
	snapshot := append([]types.Record(nil), f.records...)
	hook, err := f.listHook, f.listErr
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *fakeBackend) Create(_ context.Context, _ types.Kind, rec types.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records = append(f.records, rec.Clone())
	return nil
}

func (f *fakeBackend) Replace(_ context.Context, _ types.Kind, position int, rec types.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["replace"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records[position] = rec.Clone()
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, _ types.Kind, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records = append(f.records[:position:position], f.records[position+1:]...)
	return nil
}
