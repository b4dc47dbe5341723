// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-editor/internal/suggest"
	"github.com/jonathan/resume-editor/internal/types"
)

// Environment variables that override file values.
const (
	EnvAPIURL       = "RESUME_API_URL"
	EnvAPITimeout   = "RESUME_API_TIMEOUT"
	EnvDefaultLogo  = "RESUME_DEFAULT_LOGO"
	EnvSuggestRoute = "RESUME_SUGGEST_ROUTE"
	EnvLogFile      = "RESUME_LOG_FILE"
	EnvPort         = "RESUME_PORT"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvAuthSecret   = "RESUME_AUTH_SECRET"
	EnvAuthTTL      = "RESUME_AUTH_TTL_HOURS"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Backend
	APIURL         string `json:"api_url,omitempty" yaml:"api_url,omitempty"`                 // Resume backend base URL
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"` // Per-request timeout
	SuggestRoute   string `json:"suggest_route,omitempty" yaml:"suggest_route,omitempty"`     // "placeholder" or "unpositioned"

	// Editing
	DefaultLogo      string `json:"default_logo,omitempty" yaml:"default_logo,omitempty"`             // Logo for new experience/education drafts
	PersonalInfoFile string `json:"personal_info_file,omitempty" yaml:"personal_info_file,omitempty"` // Where the info command keeps personal info

	// Logging
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"` // Rotated log file; stderr when empty
	Verbose bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`   // Print detailed debug information

	// Reference server (serve command)
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`                 // Listen port
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL; in-memory store when empty
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`           // Gemini API key; static suggestions when empty
	Model       string `json:"model,omitempty" yaml:"model,omitempty"`               // Gemini model override

	// Shared-secret bearer auth; disabled when AuthSecret is empty
	AuthSecret   string `json:"auth_secret,omitempty" yaml:"auth_secret,omitempty"`       // HMAC secret for access tokens
	AuthTTLHours int    `json:"auth_ttl_hours,omitempty" yaml:"auth_ttl_hours,omitempty"` // Access token lifetime
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:           "http://localhost:8080",
		TimeoutSeconds:   30,
		SuggestRoute:     suggest.RoutePlaceholder.String(),
		DefaultLogo:      types.DefaultLogo,
		PersonalInfoFile: "personal_info.json",
		Port:             8080,
		AuthTTLHours:     DefaultAuthTTLHours,
	}
}

// LoadConfig loads configuration from a JSON file, or YAML when the extension is .yaml or .yml.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
// RESUME_API_TIMEOUT accepts whole seconds or a Go duration such as "45s".
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := getenv(EnvAPITimeout); v != "" {
		seconds, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("config error: %s: %w", EnvAPITimeout, err)
		}
		c.TimeoutSeconds = seconds
	}
	if v := getenv(EnvDefaultLogo); v != "" {
		c.DefaultLogo = v
	}
	if v := getenv(EnvSuggestRoute); v != "" {
		c.SuggestRoute = v
	}
	if v := getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer", EnvPort)
		}
		c.Port = port
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := getenv(EnvAuthSecret); v != "" {
		c.AuthSecret = v
	}
	if v := getenv(EnvAuthTTL); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer", EnvAuthTTL)
		}
		c.AuthTTLHours = hours
	}
	return nil
}

func parseSeconds(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	return int(d.Round(time.Second) / time.Second), nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'api_url' must be an http(s) URL, got %q", c.APIURL)
		}
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.AuthSecret != "" {
		if _, err := NewAuthConfig(c.AuthSecret, c.AuthTTLHours); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	if _, err := suggest.ParseRoute(c.SuggestRoute); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.LogFile != "" {
		if info, err := os.Stat(filepath.Dir(c.LogFile)); err != nil || !info.IsDir() {
			return fmt.Errorf("config error: log directory not found: %s", filepath.Dir(c.LogFile))
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.SuggestRoute == "" {
		result.SuggestRoute = defaults.SuggestRoute
	}
	if result.DefaultLogo == "" {
		result.DefaultLogo = defaults.DefaultLogo
	}
	if result.PersonalInfoFile == "" {
		result.PersonalInfoFile = defaults.PersonalInfoFile
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.AuthSecret == "" {
		result.AuthSecret = defaults.AuthSecret
	}

	// Int fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.AuthTTLHours == 0 {
		result.AuthTTLHours = defaults.AuthTTLHours
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Route returns the parsed suggestion route.
func (c *Config) Route() suggest.Route {
	route, _ := suggest.ParseRoute(c.SuggestRoute)
	return route
}
