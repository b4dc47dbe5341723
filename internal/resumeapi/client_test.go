package resumeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method    string
	Path      string
	Body      string
	RequestID string
	UserAgent string
}

// recorder is an httptest backend that replays canned responses and records requests.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	data, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.requests = append(r.requests, recordedRequest{
		Method:    req.Method,
		Path:      req.URL.Path,
		Body:      string(data),
		RequestID: req.Header.Get(RequestIDHeader),
		UserAgent: req.Header.Get("User-Agent"),
	})
	status, body := r.status, r.body
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (r *recorder) last(t *testing.T) recordedRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests)
	return r.requests[len(r.requests)-1]
}

func newTestClient(t *testing.T, status int, body string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{status: status, body: body}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	opts := DefaultOptions()
	opts.Logger = log.New(io.Discard, "", 0)
	client, err := NewClient(srv.URL+"/", opts)
	require.NoError(t, err)
	return client, rec
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://bad", "/relative"} {
		_, err := NewClient(raw, nil)
		assert.Error(t, err, raw)
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client, err := NewClient("http://localhost:8080/api/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", client.BaseURL())
}

func TestList(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `[{"title":"Engineer","company":"Acme","logo":null},{}]`)

	records, err := client.List(context.Background(), types.KindExperience)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Engineer", records[0][types.FieldTitle])
	assert.NotNil(t, records[1])

	got := rec.last(t)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/resume/experience", got.Path)
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, DefaultUserAgent, got.UserAgent)
}

func TestList_EmptyAndNull(t *testing.T) {
	for _, body := range []string{"", "null", "[]"} {
		client, _ := newTestClient(t, http.StatusOK, body)
		records, err := client.List(context.Background(), types.KindEducation)
		require.NoError(t, err, body)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
}

func TestList_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"db down"}`, "db down"},
		{"not found without body", http.StatusNotFound, ``, "HTTP error! status: 404"},
		{"wrong shape", http.StatusOK, `{"title":"x"}`, "unexpected list payload"},
		{"non string field", http.StatusOK, `[{"title":5}]`, "unexpected list payload"},
		{"malformed", http.StatusOK, `[{`, "unexpected list payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.status, tt.body)
			_, err := client.List(context.Background(), types.KindExperience)

			var transportErr *TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, tt.message, DisplayMessage(err))
		})
	}
}

func TestList_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, &Options{Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)

	_, err = client.List(context.Background(), types.KindExperience)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Zero(t, transportErr.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestList_UnsupportedKind(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `[]`)
	_, err := client.List(context.Background(), types.KindPersonalInfo)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	assert.Empty(t, rec.requests)
}

func TestCreate(t *testing.T) {
	client, rec := newTestClient(t, http.StatusCreated, `{"status":"created","position":0}`)

	err := client.Create(context.Background(), types.KindExperience, types.Record{types.FieldTitle: "Engineer"})
	require.NoError(t, err)

	got := rec.last(t)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/resume/experience", got.Path)
	assert.JSONEq(t, `{"title":"Engineer"}`, got.Body)
}

func TestCreate_ServerMessage(t *testing.T) {
	client, _ := newTestClient(t, http.StatusBadRequest, `{"error":"Title is required"}`)

	err := client.Create(context.Background(), types.KindExperience, types.Record{})
	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "Title is required", persistErr.Message())
	assert.Equal(t, -1, persistErr.Position)
	assert.False(t, errors.Is(err, ErrStalePosition))
	assert.False(t, IsRetryable(err))
}

func TestCreate_StatusFallback(t *testing.T) {
	client, _ := newTestClient(t, http.StatusInternalServerError, `oops`)

	err := client.Create(context.Background(), types.KindEducation, types.Record{})
	assert.Equal(t, "HTTP error! status: 500", DisplayMessage(err))
	assert.True(t, IsRetryable(err))
}

func TestReplace(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{"status":"updated"}`)

	err := client.Replace(context.Background(), types.KindEducation, 2, types.Record{types.FieldCourse: "BSc"})
	require.NoError(t, err)

	got := rec.last(t)
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/resume/education/2", got.Path)
}

func TestReplace_NotFoundIsStale(t *testing.T) {
	client, _ := newTestClient(t, http.StatusNotFound, `{"error":"experience index 3 out of range (length 2)"}`)

	err := client.Replace(context.Background(), types.KindExperience, 3, types.Record{})
	assert.ErrorIs(t, err, ErrStalePosition)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, "experience index 3 out of range (length 2)", DisplayMessage(err))
}

func TestReplace_NegativePositionNeverSent(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, ``)

	err := client.Replace(context.Background(), types.KindExperience, -1, types.Record{})
	assert.ErrorIs(t, err, ErrStalePosition)
	assert.Empty(t, rec.requests)
}

func TestDelete(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{"status":"deleted"}`)

	require.NoError(t, client.Delete(context.Background(), types.KindExperience, 1))

	got := rec.last(t)
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "/resume/experience/1", got.Path)
	assert.Empty(t, got.Body)
}

func TestDelete_GoneIsStale(t *testing.T) {
	client, _ := newTestClient(t, http.StatusGone, ``)
	err := client.Delete(context.Background(), types.KindExperience, 0)
	assert.ErrorIs(t, err, ErrStalePosition)
}

func TestSuggestDescription(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{"suggestions":["One","Two"]}`)

	got, err := client.SuggestDescription(context.Background(), types.KindExperience, 0, "draft text")
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, got)

	req := rec.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/resume/experience/0/suggest-description", req.Path)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, "draft text", body["description"])
}

func TestSuggestDescription_NoPosition(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{"suggestions":null}`)

	got, err := client.SuggestDescription(context.Background(), types.KindEducation, NoPosition, "x")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, "/resume/education/suggest-description", rec.last(t).Path)
}

func TestSuggestDescription_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		display string
	}{
		{"bad gateway", http.StatusBadGateway, `{"error":"suggestion service error"}`, "suggestion service error"},
		{"wrong shape", http.StatusOK, `{"suggestions":"one"}`, "unexpected suggestions payload"},
		{"not json", http.StatusOK, `<html>`, "unexpected suggestions payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.status, tt.body)
			_, err := client.SuggestDescription(context.Background(), types.KindExperience, 0, "x")
			var transportErr *TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, tt.display, DisplayMessage(err))
		})
	}
}

func TestCustomHeaders(t *testing.T) {
	rec := &recorder{body: `[]`}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		rec.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, &Options{
		Headers: map[string]string{"X-Api-Key": "secret"},
		Logger:  log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	_, err = client.List(context.Background(), types.KindExperience)
	require.NoError(t, err)
}
