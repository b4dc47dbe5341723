package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/resume-editor/internal/prompts"
)

const promptFile = "suggestions.json"

// BuildSuggestionPrompt asks for n rewrites of a resume description.
func BuildSuggestionPrompt(section, description string, n int) string {
	if n < 1 {
		n = 1
	}
	guidance, err := prompts.GetOr(promptFile, "guidance-"+section, "guidance-default")
	if err != nil {
		guidance = ""
	}
	return prompts.Format(prompts.MustGet(promptFile, "rewrite-description"), map[string]string{
		"Section":     section,
		"Guidance":    guidance,
		"Count":       strconv.Itoa(n),
		"Description": description,
	})
}

// ParseSuggestions decodes a {"suggestions": [...]} response, dropping blank and duplicate entries.
func ParseSuggestions(raw string) ([]string, error) {
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(CleanJSONBlock(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}

	seen := make(map[string]bool, len(payload.Suggestions))
	out := make([]string, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// SuggestDescriptions runs the suggestion prompt through client.
func SuggestDescriptions(ctx context.Context, client Client, cfg *Config, section, description string) ([]string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	raw, err := client.GenerateJSON(ctx, BuildSuggestionPrompt(section, description, cfg.Candidates))
	if err != nil {
		return nil, err
	}
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		return nil, err
	}
	if len(suggestions) > cfg.Candidates {
		suggestions = suggestions[:cfg.Candidates]
	}
	return suggestions, nil
}
