package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list [kind...]",
	Short: "List stored experience and education entries",
	Long:  "Fetches each collection from the backend and prints its entries with their positions. Defaults to experience and education.",
	RunE:  runList,
}

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print entries as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	kinds := []types.Kind{types.KindExperience, types.KindEducation}
	if len(args) > 0 {
		kinds = kinds[:0]
		for _, raw := range args {
			kind, err := parsePersistedKind(raw)
			if err != nil {
				return err
			}
			kinds = append(kinds, kind)
		}
	}

	// Collections are independent, so fetch them concurrently.
	mirrors := make([]collection.Mirror, len(kinds))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, kind := range kinds {
		g.Go(func() error {
			s, err := collection.NewStore(kind, app.client, app.logs.Logger("collection"))
			if err != nil {
				return err
			}
			m, err := s.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", kind, err)
			}
			mirrors[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if listJSON {
		out := make(map[types.Kind][]types.Record, len(kinds))
		for i, kind := range kinds {
			out[kind] = mirrors[i].Records()
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, kind := range kinds {
		app.printer.PrintCollection(kind, collection.NewRecordIndex(mirrors[i]).Entries())
	}
	return nil
}
