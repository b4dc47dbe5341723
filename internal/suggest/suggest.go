// Package suggest requests description rewrites for a record under edit, including
// records that have not been stored yet.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/resumeapi"
	"github.com/jonathan/resume-editor/internal/types"
)

var (
	// ErrEmptyDescription is returned without contacting the backend when there is nothing to rewrite.
	ErrEmptyDescription = errors.New("description is empty")
	// ErrNoDescriptionField is returned for kinds whose records have no description.
	ErrNoDescriptionField = errors.New("kind has no description field")
	// ErrNoSuchCandidate is returned by Accept for an index outside the set.
	ErrNoSuchCandidate = errors.New("no such suggestion")
)

// Route selects how a request for an unsaved record is addressed.
type Route int

const (
	// RoutePlaceholder addresses position 0 on the positional route. The backend
	// reads the description from the body, so the index is never used as a target.
	RoutePlaceholder Route = iota
	// RouteUnpositioned uses POST /resume/{kind}/suggest-description.
	RouteUnpositioned
)

func (r Route) String() string {
	if r == RouteUnpositioned {
		return "unpositioned"
	}
	return "placeholder"
}

// ParseRoute converts a config value into a Route. Empty selects RoutePlaceholder.
func ParseRoute(s string) (Route, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "placeholder":
		return RoutePlaceholder, nil
	case "unpositioned":
		return RouteUnpositioned, nil
	default:
		return RoutePlaceholder, fmt.Errorf("unknown suggestion route %q (want placeholder or unpositioned)", s)
	}
}

// placeholderPosition is the conventional index for "no stored record".
const placeholderPosition = 0

// Client is the backend call the bridge needs. *resumeapi.Client satisfies it.
type Client interface {
	SuggestDescription(ctx context.Context, kind types.Kind, position int, description string) ([]string, error)
}

// Bridge obtains suggestion sets from the backend.
type Bridge struct {
	client Client
	route  Route
	logger *log.Logger
}

// NewBridge creates a bridge. A nil logger writes to stderr.
func NewBridge(client Client, route Route, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(os.Stderr, "[suggest] ", log.LstdFlags)
	}
	return &Bridge{client: client, route: route, logger: logger}
}

// Route returns how unsaved records are addressed.
func (b *Bridge) Route() Route {
	return b.route
}

// Suggest asks for rewrites of description. pos is nil for a record that has not
// been stored. Backend failures are *resumeapi.TransportError; an empty answer is an
// empty Set, not an error.
func (b *Bridge) Suggest(ctx context.Context, kind types.Kind, pos *collection.Position, description string) (Set, error) {
	if !types.HasField(kind, types.FieldDescription) {
		return Set{}, fmt.Errorf("%w: %s", ErrNoDescriptionField, kind)
	}
	if strings.TrimSpace(description) == "" {
		return Set{}, ErrEmptyDescription
	}

	position := b.address(pos)
	candidates, err := b.client.SuggestDescription(ctx, kind, position, description)
	if err != nil {
		b.logger.Printf("suggest %s at %d failed: %s", kind, position, resumeapi.DisplayMessage(err))
		return Set{}, err
	}
	return NewSet(candidates...), nil
}

func (b *Bridge) address(pos *collection.Position) int {
	if pos != nil {
		return pos.Index
	}
	if b.route == RouteUnpositioned {
		return resumeapi.NoPosition
	}
	return placeholderPosition
}
