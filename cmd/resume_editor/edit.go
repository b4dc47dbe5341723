package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/form"
	"github.com/jonathan/resume-editor/internal/resumeapi"
	"github.com/jonathan/resume-editor/internal/types"
)

var addCmd = &cobra.Command{
	Use:   "add <kind>",
	Short: "Add an experience or education entry",
	Long:  "Opens a new entry, applies --set field=value edits, and commits it. New entries start with the configured default logo.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <kind> <position>",
	Short: "Edit a stored experience or education entry",
	Long:  "Opens the entry at a position from a fresh listing, applies --set field=value edits, and replaces it.",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

var (
	addSets        []string
	addSuggestion  int
	editSets       []string
	editSuggestion int
)

func init() {
	addCmd.Flags().StringArrayVarP(&addSets, "set", "s", nil, "Field assignment field=value (repeatable)")
	addCmd.Flags().IntVar(&addSuggestion, "use-suggestion", 0, "Request description suggestions and use the Nth (1-based) before committing")
	editCmd.Flags().StringArrayVarP(&editSets, "set", "s", nil, "Field assignment field=value (repeatable)")
	editCmd.Flags().IntVar(&editSuggestion, "use-suggestion", 0, "Request description suggestions and use the Nth (1-based) before committing")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	kind, err := parsePersistedKind(args[0])
	if err != nil {
		return err
	}
	edits, err := parseSets(addSets)
	if err != nil {
		return err
	}

	store, err := app.store(cmd, kind)
	if err != nil {
		return err
	}
	if err := runForm(cmd, store, nil, edits, addSuggestion); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s entry (%d total)\n", kind, store.Mirror().Len())
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	kind, err := parsePersistedKind(args[0])
	if err != nil {
		return err
	}
	position, err := parsePosition(args[1])
	if err != nil {
		return err
	}
	edits, err := parseSets(editSets)
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
	if err := runForm(cmd, store, &entry, edits, editSuggestion); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s entry %d\n", kind, position)
	return nil
}

// runForm drives one form session: open, edit, optionally take a suggestion, commit.
func runForm(cmd *cobra.Command, store form.Collection, existing *collection.Entry, edits []fieldEdit, suggestion int) error {
	workspace := form.NewWorkspace(form.Options{
		DefaultLogo: app.cfg.DefaultLogo,
		Suggester:   app.bridge(),
		Logger:      app.logs.Logger("form"),
	})
	if _, err := workspace.Add(store); err != nil {
		return err
	}
	session, err := workspace.Open(store.Kind(), existing)
	if err != nil {
		return err
	}
	defer workspace.CancelAll()

	for _, e := range edits {
		if err := session.Edit(e.field, e.value); err != nil {
			return err
		}
	}

	if suggestion > 0 {
		set, err := session.RequestSuggestions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get suggestions: %s", resumeapi.DisplayMessage(err))
		}
		app.printer.PrintSuggestions(set)
		if err := session.AcceptSuggestion(suggestion - 1); err != nil {
			return err
		}
	}

	if err := session.Commit(cmd.Context()); err != nil {
		var refreshErr *collection.RefreshError
		if errors.As(err, &refreshErr) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: saved, but reloading failed: %s\n", resumeapi.DisplayMessage(refreshErr.Cause))
			return nil
		}
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			app.printer.PrintError(err)
			return fmt.Errorf("%s entry not saved", store.Kind())
		}
		if errors.Is(err, resumeapi.ErrStalePosition) {
			return fmt.Errorf("entry moved or was removed; list again and retry: %s", resumeapi.DisplayMessage(err))
		}
		return fmt.Errorf("failed to save %s: %s", store.Kind(), resumeapi.DisplayMessage(err))
	}
	return nil
}
