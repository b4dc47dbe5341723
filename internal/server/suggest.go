package server

import (
	"context"
	"strings"
	"unicode"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/types"
)

// Suggester produces candidate rewrites of a description.
type Suggester interface {
	Suggest(ctx context.Context, kind types.Kind, description string) ([]string, error)
}

// LLMSuggester generates suggestions with a language model.
type LLMSuggester struct {
	client llm.Client
	config *llm.Config
}

// NewLLMSuggester wraps an llm.Client. A nil config uses llm.DefaultConfig.
func NewLLMSuggester(client llm.Client, config *llm.Config) *LLMSuggester {
	if config == nil {
		config = llm.DefaultConfig()
	}
	return &LLMSuggester{client: client, config: config}
}

// Suggest implements Suggester.
func (s *LLMSuggester) Suggest(ctx context.Context, kind types.Kind, description string) ([]string, error) {
	suggestions, err := llm.SuggestDescriptions(ctx, s.client, s.config, string(kind), description)
	if err != nil {
		return nil, &ErrSuggestionUnavailable{Cause: err}
	}
	return suggestions, nil
}

// Close releases the underlying model client.
func (s *LLMSuggester) Close() error {
	return s.client.Close()
}

// StaticSuggester is a deterministic, offline Suggester: it tidies the description
// into a few fixed phrasings. Used when no model API key is configured.
type StaticSuggester struct{}

// Suggest implements Suggester.
func (StaticSuggester) Suggest(_ context.Context, _ types.Kind, description string) ([]string, error) {
	text := strings.Join(strings.Fields(description), " ")
	text = strings.TrimRight(text, ".")
	if text == "" {
		return []string{}, nil
	}

	sentence := capitalize(text) + "."
	candidates := []string{
		sentence,
		"Delivered results: " + lowerFirst(text) + ".",
		"Key contribution: " + lowerFirst(text) + ".",
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
