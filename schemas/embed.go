// Package schemas holds the JSON Schemas describing the backend's response bodies.
// The files are embedded so validation works regardless of the working directory.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// ListSchemaFile returns the schema file name for a collection's list response.
func ListSchemaFile(kind string) string {
	return kind + "_list.schema.json"
}

// SuggestionsSchemaFile is the schema for suggestion responses.
const SuggestionsSchemaFile = "suggestions.schema.json"
