package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/server"
	"github.com/jonathan/resume-editor/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reference resume backend",
	Long: `Start an HTTP server exposing the positional /resume/{kind} endpoints.
Uses PostgreSQL when DATABASE_URL is set, otherwise keeps data in memory.
Suggestions come from Gemini when GEMINI_API_KEY is set, otherwise from a
built-in rewriter. Suggestion and write requests are rate limited per client
(RESUME_RATE_LIMIT_* variables). When RESUME_AUTH_SECRET is set, every
route except /health requires a bearer token signed with that secret.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := app.cfg.Port
	if servePort != 0 {
		port = servePort
	}
	logger := app.logs.Logger("server")

	var store server.Store
	if app.cfg.DatabaseURL != "" {
		pg, err := server.ConnectPostgres(cmd.Context(), app.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		store = pg
		logger.Println("Using PostgreSQL store")
	} else {
		store = server.NewMemoryStore()
		logger.Println("Using in-memory store; data is lost on exit")
	}

	suggester, closeSuggester, err := newSuggester(cmd.Context())
	if err != nil {
		store.Close()
		return err
	}
	defer closeSuggester()

	srv, err := server.New(server.Config{
		Port:      port,
		Store:     store,
		Suggester: suggester,
		RateLimit: ratelimit.LoadConfig(os.Getenv),
		Auth:      app.tokens,
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving resume backend on :%d\n", port)
	return srv.Start()
}

// newSuggester picks Gemini when an API key is configured.
func newSuggester(ctx context.Context) (server.Suggester, func(), error) {
	if app.cfg.APIKey == "" {
		return server.StaticSuggester{}, func() {}, nil
	}

	llmCfg, err := llm.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if app.cfg.Model != "" {
		llmCfg = llmCfg.WithModel(app.cfg.Model)
	}

	client, err := llm.NewClient(ctx, llmCfg, app.cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	s := server.NewLLMSuggester(client, llmCfg)
	return s, func() { _ = s.Close() }, nil
}
