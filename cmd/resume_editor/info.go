package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/types"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show or edit personal info",
	Long: `Personal info (name, phone_number, email) has no backend endpoint; it is
validated locally and kept in the personal info file. Without --set, the current
values are printed.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

var (
	infoSets []string
	infoFile string
)

func init() {
	infoCmd.Flags().StringArrayVarP(&infoSets, "set", "s", nil, "Field assignment field=value (repeatable)")
	infoCmd.Flags().StringVar(&infoFile, "file", "", "Personal info JSON file (overrides config)")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	path := infoFile
	if path == "" {
		path = app.cfg.PersonalInfoFile
	}

	store, err := loadPersonalInfo(path)
	if err != nil {
		return err
	}

	if len(infoSets) == 0 {
		rec, ok := store.Mirror().At(0)
		if !ok {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No personal info saved in %s\n", path)
			return nil
		}
		app.printer.PrintRecord(types.KindPersonalInfo, "PERSONAL INFO", rec)
		return nil
	}

	edits, err := parseSets(infoSets)
	if err != nil {
		return err
	}

	var existing *collection.Entry
	if entry, err := store.Index().Entry(0); err == nil {
		existing = &entry
	}
	if err := runForm(cmd, store, existing, edits, 0); err != nil {
		return err
	}

	rec, _ := store.Mirror().At(0)
	if err := savePersonalInfo(path, rec); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved personal info to %s\n", path)
	return nil
}

func loadPersonalInfo(path string) (*collection.MemoryStore, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return collection.NewMemoryStore(types.KindPersonalInfo), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read personal info: %w", err)
	}

	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse personal info %s: %w", path, err)
	}
	return collection.NewMemoryStore(types.KindPersonalInfo, rec), nil
}

func savePersonalInfo(path string, rec types.Record) error {
	jsonBytes, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal personal info: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write personal info: %w", err)
	}
	return nil
}
