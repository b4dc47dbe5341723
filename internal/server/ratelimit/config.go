package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// Environment variables read by LoadConfig.
const (
	EnvEnabled       = "RESUME_RATE_LIMIT_ENABLED"
	EnvDefaultLimit  = "RESUME_RATE_LIMIT_DEFAULT"
	EnvSuggestLimit  = "RESUME_RATE_LIMIT_SUGGEST"
	EnvWriteLimit    = "RESUME_RATE_LIMIT_WRITE"
	EnvWindow        = "RESUME_RATE_LIMIT_WINDOW"
	EnvExemptClients = "RESUME_RATE_LIMIT_EXEMPT"
)

// Rule limits one class of requests. A rule matches when the method is equal
// and the path has the rule's Prefix and Suffix (either may be empty).
type Rule struct {
	Name   string        // Bucket name; requests matching the same rule share a bucket
	Method string        // HTTP method
	Prefix string        // Path prefix
	Suffix string        // Path suffix
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Exempt          map[string]bool // client IDs never limited
	Rules           []Rule
}

// DefaultConfig returns an enabled configuration with DefaultRules.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Exempt:          make(map[string]bool),
		Rules:           DefaultRules(30, 300, time.Minute),
	}
}

// DefaultRules limits suggestion requests, which may call a model, more tightly
// than positional writes. Reads fall through to the default limit.
func DefaultRules(suggestLimit, writeLimit int, window time.Duration) []Rule {
	suggestBurst := max(suggestLimit/6, 1)
	writeBurst := max(writeLimit/10, 1)
	return []Rule{
		{Name: "suggest", Method: "POST", Prefix: "/resume/", Suffix: "/suggest-description", Limit: suggestLimit, Window: window, Burst: suggestBurst},
		{Name: "write", Method: "POST", Prefix: "/resume/", Limit: writeLimit, Window: window, Burst: writeBurst},
		{Name: "write", Method: "PUT", Prefix: "/resume/", Limit: writeLimit, Window: window, Burst: writeBurst},
		{Name: "write", Method: "DELETE", Prefix: "/resume/", Limit: writeLimit, Window: window, Burst: writeBurst},
	}
}

// LoadConfig builds a Config from DefaultConfig and environment overrides.
// Malformed values are ignored.
func LoadConfig(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool(getenv, EnvEnabled, true)
	if !cfg.Enabled {
		return cfg
	}

	cfg.DefaultLimit = envInt(getenv, EnvDefaultLimit, cfg.DefaultLimit)
	cfg.DefaultWindow = envDuration(getenv, EnvWindow, cfg.DefaultWindow)
	cfg.Rules = DefaultRules(
		envInt(getenv, EnvSuggestLimit, 30),
		envInt(getenv, EnvWriteLimit, 300),
		cfg.DefaultWindow,
	)
	cfg.Exempt = parseClientList(getenv(EnvExemptClients))
	return cfg
}

func envInt(getenv func(string) string, key string, def int) int {
	if v, err := strconv.Atoi(getenv(key)); err == nil && v >= 0 {
		return v
	}
	return def
}

func envBool(getenv func(string) string, key string, def bool) bool {
	if v, err := strconv.ParseBool(getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(getenv func(string) string, key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// parseClientList parses a comma-separated list of client IDs into a set.
func parseClientList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result[id] = true
		}
	}
	return result
}
