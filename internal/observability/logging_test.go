package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLogs_DiscardByDefault(t *testing.T) {
	var stderr bytes.Buffer
	logs := OpenLogs(LogOptions{}, &stderr)
	logs.Logger("collection").Print("hidden")

	assert.Empty(t, stderr.String())
	assert.NoError(t, logs.Close())
}

func TestOpenLogs_Verbose(t *testing.T) {
	var stderr bytes.Buffer
	logs := OpenLogs(LogOptions{Verbose: true}, &stderr)
	logs.Logger("resumeapi").Print("GET /resume/experience -> 200")

	assert.Contains(t, stderr.String(), "[resumeapi] ")
	assert.Contains(t, stderr.String(), "-> 200")
}

func TestOpenLogs_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.log")
	var stderr bytes.Buffer
	logs := OpenLogs(LogOptions{File: path, Verbose: true}, &stderr)

	logs.Logger("form").Print("form opened")
	require.NoError(t, logs.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[form] ")
	assert.Contains(t, stderr.String(), "form opened")
}
