package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/resumeapi"
)

var removeCmd = &cobra.Command{
	Use:   "remove <kind> <position>",
	Short: "Remove a stored experience or education entry",
	Long:  "Deletes the entry at a position from a fresh listing. Entries after it move up by one.",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	kind, err := parsePersistedKind(args[0])
	if err != nil {
		return err
	}
	position, err := parsePosition(args[1])
	if err != nil {
		return err
	}

	store, err := app.store(cmd, kind)
	if err != nil {
		return err
	}
	pos, err := store.PositionAt(position)
	if err != nil {
		return fmt.Errorf("no %s entry at position %d (%d stored)", kind, position, store.Mirror().Len())
	}

	if err := store.Delete(cmd.Context(), pos); err != nil {
		var refreshErr *collection.RefreshError
		if !errors.As(err, &refreshErr) {
			return fmt.Errorf("failed to remove %s: %s", kind, resumeapi.DisplayMessage(err))
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: removed, but reloading failed: %s\n", resumeapi.DisplayMessage(refreshErr.Cause))
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s entry %d\n", kind, position)
	return nil
}
