package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/resumeapi"
	"github.com/jonathan/resume-editor/internal/types"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <kind> [position]",
	Short: "Suggest rewrites of a description",
	Long: `Asks the backend for rewrites of a description. With a position and no
--description, the stored entry's description is used. Nothing is saved.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSuggest,
}

var suggestDescription string

func init() {
	suggestCmd.Flags().StringVarP(&suggestDescription, "description", "d", "", "Description text to rewrite")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	kind, err := parsePersistedKind(args[0])
	if err != nil {
		return err
	}

	description := suggestDescription
	var pos *collection.Position
	if len(args) == 2 {
		position, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		store, err := app.store(cmd, kind)
		if err != nil {
			return err
		}
		entry, err := store.Entry(position)
		if err != nil {
			return fmt.Errorf("no %s entry at position %d (%d stored)", kind, position, store.Mirror().Len())
		}
		pos = &entry.Position
		if description == "" {
			description = entry.Record[types.FieldDescription]
		}
	}

	set, err := app.bridge().Suggest(cmd.Context(), kind, pos, description)
	if err != nil {
		return fmt.Errorf("failed to get suggestions: %s", resumeapi.DisplayMessage(err))
	}
	app.printer.PrintSuggestions(set)
	return nil
}
