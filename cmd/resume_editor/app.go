package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/resumeapi"
	"github.com/jonathan/resume-editor/internal/server"
	"github.com/jonathan/resume-editor/internal/suggest"
	"github.com/jonathan/resume-editor/internal/types"
)

var (
	configPath string
	apiURL     string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Resume backend base URL (overrides config and RESUME_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
}

// appContext holds what every command needs once flags and config are resolved.
type appContext struct {
	cfg     config.Config
	logs    *observability.Logs
	client  *resumeapi.Client
	tokens  *server.TokenService // nil without an auth secret
	printer *observability.Printer
}

var app *appContext

// setupApp resolves config in order: defaults, config file, environment, flags.
func setupApp(cmd *cobra.Command, _ []string) error {
	cfg := config.Defaults()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logs := observability.OpenLogs(observability.LogOptions{File: cfg.LogFile, Verbose: cfg.Verbose}, cmd.ErrOrStderr())

	opts := resumeapi.DefaultOptions()
	opts.Timeout = cfg.Timeout()
	opts.Logger = logs.Logger("resumeapi")
	tokens, err := tokenService(&cfg)
	if err != nil {
		_ = logs.Close()
		return err
	}
	if tokens != nil {
		token, err := tokens.IssueToken(cmd.Root().Name())
		if err != nil {
			_ = logs.Close()
			return err
		}
		opts.Headers = map[string]string{"Authorization": "Bearer " + token}
	}
	client, err := resumeapi.NewClient(cfg.APIURL, opts)
	if err != nil {
		_ = logs.Close()
		return err
	}

	app = &appContext{
		cfg:     cfg,
		logs:    logs,
		client:  client,
		tokens:  tokens,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
	}
	return nil
}

// tokenService returns nil when no auth secret is configured.
func tokenService(cfg *config.Config) (*server.TokenService, error) {
	auth, ok, err := cfg.Auth()
	if err != nil || !ok {
		return nil, err
	}
	return server.NewTokenService(auth.Secret, auth.TTL()), nil
}

func teardownApp(_ *cobra.Command, _ []string) {
	if app != nil {
		_ = app.logs.Close()
	}
}

// store creates and loads the store for a persisted kind.
func (a *appContext) store(cmd *cobra.Command, kind types.Kind) (*collection.Store, error) {
	s, err := collection.NewStore(kind, a.client, a.logs.Logger("collection"))
	if err != nil {
		return nil, err
	}
	if _, err := s.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to load %s: %s", kind, resumeapi.DisplayMessage(err))
	}
	return s, nil
}

func (a *appContext) bridge() *suggest.Bridge {
	return suggest.NewBridge(a.client, a.cfg.Route(), a.logs.Logger("suggest"))
}

// parsePersistedKind accepts only kinds the backend stores.
func parsePersistedKind(raw string) (types.Kind, error) {
	kind, err := types.ParseKind(raw)
	if err != nil {
		return "", err
	}
	if !kind.Persisted() {
		return "", fmt.Errorf("%s is edited with the info command", kind)
	}
	return kind, nil
}

func parsePosition(raw string) (int, error) {
	position, err := strconv.Atoi(raw)
	if err != nil || position < 0 {
		return 0, fmt.Errorf("position must be a non-negative integer, got %q", raw)
	}
	return position, nil
}

type fieldEdit struct {
	field string
	value string
}

// parseSets turns repeated --set field=value flags into edits, keeping their order.
func parseSets(sets []string) ([]fieldEdit, error) {
	edits := make([]fieldEdit, 0, len(sets))
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q (want field=value)", s)
		}
		edits = append(edits, fieldEdit{field: field, value: value})
	}
	return edits, nil
}
