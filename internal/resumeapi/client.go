// Package resumeapi is the HTTP client for the resume backend. The backend stores each
// collection as a list and addresses stored records only by their position in that list.
package resumeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-editor/internal/schemas"
	"github.com/jonathan/resume-editor/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "resume-editor/1.0"

// RequestIDHeader carries a per-request UUID so client and backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// NoPosition asks SuggestDescription to use the backend's position-less route.
const NoPosition = -1

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// ErrUnsupportedKind is returned for kinds the backend has no endpoints for.
var ErrUnsupportedKind = errors.New("collection kind has no backend endpoints")

// Options configures the client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Headers    map[string]string
	HTTPClient *http.Client // overrides Timeout when set
	Logger     *log.Logger
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the /resume/{kind} REST surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
	logger     *log.Logger
}

// NewClient creates a client for the backend at baseURL (scheme and host required;
// a path prefix is allowed).
func NewClient(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[resumeapi] ", log.LstdFlags)
	}

	return &Client{
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
		headers:    opts.Headers,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches every stored record of a kind in position order.
func (c *Client) List(ctx context.Context, kind types.Kind) ([]types.Record, error) {
	endpoint, err := c.endpoint(kind)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "list", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, &TransportError{
			Op:            "list",
			URL:           endpoint,
			StatusCode:    resp.status,
			Message:       statusMessage(resp.status),
			ServerMessage: serverMessage(resp.body),
		}
	}

	body := bytes.TrimSpace(resp.body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []types.Record{}, nil
	}

	if err := schemas.ValidateList(string(kind), body); err != nil {
		return nil, &TransportError{
			Op:         "list",
			URL:        endpoint,
			StatusCode: resp.status,
			Message:    "unexpected list payload",
			Cause:      err,
		}
	}

	var records []types.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &TransportError{
			Op:         "list",
			URL:        endpoint,
			StatusCode: resp.status,
			Message:    "failed to decode list",
			Cause:      err,
		}
	}
	for i := range records {
		if records[i] == nil {
			records[i] = types.Record{}
		}
	}

	return records, nil
}

// Create appends a record to the kind's list.
func (c *Client) Create(ctx context.Context, kind types.Kind, rec types.Record) error {
	endpoint, err := c.endpoint(kind)
	if err != nil {
		return err
	}
	return c.write(ctx, "create", http.MethodPost, endpoint, kind, -1, rec)
}

// Replace overwrites the record stored at position.
func (c *Client) Replace(ctx context.Context, kind types.Kind, position int, rec types.Record) error {
	if position < 0 {
		return NewStalePositionError("replace", string(kind), position)
	}
	endpoint, err := c.endpoint(kind, strconv.Itoa(position))
	if err != nil {
		return err
	}
	return c.write(ctx, "replace", http.MethodPut, endpoint, kind, position, rec)
}

// Delete removes the record stored at position; later records shift down by one.
func (c *Client) Delete(ctx context.Context, kind types.Kind, position int) error {
	if position < 0 {
		return NewStalePositionError("delete", string(kind), position)
	}
	endpoint, err := c.endpoint(kind, strconv.Itoa(position))
	if err != nil {
		return err
	}
	return c.write(ctx, "delete", http.MethodDelete, endpoint, kind, position, nil)
}

type suggestRequest struct {
	Description string `json:"description"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SuggestDescription asks the backend for rewrites of description. The backend uses the
// body's description rather than the stored one, so position only satisfies the route shape.
// Pass NoPosition to use the position-less route.
func (c *Client) SuggestDescription(ctx context.Context, kind types.Kind, position int, description string) ([]string, error) {
	var (
		endpoint string
		err      error
	)
	if position < 0 {
		endpoint, err = c.endpoint(kind, "suggest-description")
	} else {
		endpoint, err = c.endpoint(kind, strconv.Itoa(position), "suggest-description")
	}
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "suggest", http.MethodPost, endpoint, suggestRequest{Description: description})
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, &TransportError{
			Op:            "suggest",
			URL:           endpoint,
			StatusCode:    resp.status,
			Message:       statusMessage(resp.status),
			ServerMessage: serverMessage(resp.body),
		}
	}

	if err := schemas.ValidateSuggestions(resp.body); err != nil {
		return nil, &TransportError{
			Op:         "suggest",
			URL:        endpoint,
			StatusCode: resp.status,
			Message:    "unexpected suggestions payload",
			Cause:      err,
		}
	}

	var parsed suggestResponse
	if err := json.Unmarshal(resp.body, &parsed); err != nil {
		return nil, &TransportError{
			Op:         "suggest",
			URL:        endpoint,
			StatusCode: resp.status,
			Message:    "failed to decode suggestions",
			Cause:      err,
		}
	}
	if parsed.Suggestions == nil {
		return []string{}, nil
	}
	return parsed.Suggestions, nil
}

func (c *Client) write(ctx context.Context, op, method, endpoint string, kind types.Kind, position int, rec types.Record) error {
	var payload any
	if rec != nil {
		payload = rec
	}

	resp, err := c.do(ctx, op, method, endpoint, payload)
	if err != nil {
		return err
	}
	if isSuccess(resp.status) {
		return nil
	}

	return &PersistError{
		Op:            op,
		Kind:          string(kind),
		Position:      position,
		StatusCode:    resp.status,
		ServerMessage: serverMessage(resp.body),
		Stale:         position >= 0 && (resp.status == http.StatusNotFound || resp.status == http.StatusGone),
	}
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &TransportError{Op: op, URL: endpoint, Message: "failed to encode request", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &TransportError{Op: op, URL: endpoint, Message: "failed to create request", Cause: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("%s %s failed (request %s): %v", method, endpoint, requestID, err)
		return nil, &TransportError{Op: op, URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Cause:      err,
		}
	}

	c.logger.Printf("%s %s -> %d in %v (request %s)", method, endpoint, resp.StatusCode, time.Since(start), requestID)
	return &response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) endpoint(kind types.Kind, segments ...string) (string, error) {
	if !kind.Persisted() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	parts := append([]string{"resume", string(kind)}, segments...)
	return url.JoinPath(c.baseURL, parts...)
}

// serverMessage extracts {"error": "..."} from a response body, if present.
func serverMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}
