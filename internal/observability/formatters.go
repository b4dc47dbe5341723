// Package observability provides log setup and formatted output utilities for the CLI.
package observability

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-editor/internal/collection"
	"github.com/jonathan/resume-editor/internal/suggest"
	"github.com/jonathan/resume-editor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxFieldWidth is where long field values are truncated
	maxFieldWidth = 40
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintCollection outputs one line per stored record with its position.
func (p *Printer) PrintCollection(kind types.Kind, entries []collection.Entry) {
	var sb strings.Builder
	if len(entries) == 0 {
		sb.WriteString("(no entries)")
	}
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("[%d] %s", e.Position.Index, types.Summary(kind, e.Record)))
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(strings.ToUpper(string(kind)), sb.String())
}

// PrintRecord outputs every schema field of a record, then any extra fields.
func (p *Printer) PrintRecord(kind types.Kind, title string, rec types.Record) {
	var sb strings.Builder
	seen := make(map[string]bool)
	for _, field := range types.Fields(kind) {
		seen[field] = true
		sb.WriteString(fmt.Sprintf("%-13s %s\n", field+":", truncate(rec[field], maxFieldWidth)))
	}
	for _, field := range rec.Keys() {
		if !seen[field] {
			sb.WriteString(fmt.Sprintf("%-13s %s\n", field+":", truncate(rec[field], maxFieldWidth)))
		}
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggestions outputs numbered candidates.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSuggestions(set suggest.Set) {
	if set.Empty() {
		fmt.Fprintln(p.out, "No suggestions returned.")
		return
	}
	for i, c := range set.Candidates() {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, c)
	}
}

// PrintError outputs an error; validation failures are listed per field.
func (p *Printer) PrintError(err error) {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		var sb strings.Builder
		for i, fe := range verr.Errors {
			sb.WriteString(fmt.Sprintf("⚠ %s %s", fe.Field, fe.Message))
			if i < len(verr.Errors)-1 {
				sb.WriteString("\n")
			}
		}
		p.printBox("VALIDATION FAILED", sb.String())
		return
	}
	p.printBox("ERROR", err.Error())
}
