// Package llm wraps the generative model used by the reference backend to propose
// rewrites of resume descriptions.
package llm

import (
	"fmt"
	"os"
	"strconv"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for suggestion generation
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
	// Candidates is how many rewrites are requested per description.
	Candidates int
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       "gemini-2.5-flash-lite",
		Temperature: 0.7,
		Candidates:  3,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by LLM_MODEL, LLM_TEMPERATURE and
// LLM_CANDIDATES when they are set.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.Model = model
	}
	if raw := os.Getenv("LLM_TEMPERATURE"); raw != "" {
		t, err := strconv.ParseFloat(raw, 32)
		if err != nil || t < 0 || t > 2 {
			return nil, fmt.Errorf("LLM_TEMPERATURE must be a number between 0 and 2, got %q", raw)
		}
		cfg.Temperature = float32(t)
	}
	if raw := os.Getenv("LLM_CANDIDATES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("LLM_CANDIDATES must be a positive integer, got %q", raw)
		}
		cfg.Candidates = n
	}
	return cfg, nil
}

// WithModel returns a copy of the config using model
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}
