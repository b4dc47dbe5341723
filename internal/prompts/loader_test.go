package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("suggestions.json", "rewrite-description")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Description}}")
	assert.Contains(t, prompt, `{"suggestions": [string, ...]}`)
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("suggestions.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetOr_FallsBack(t *testing.T) {
	prompt, err := GetOr("suggestions.json", "guidance-personal_info", "guidance-default")
	require.NoError(t, err)
	assert.Equal(t, "Keep the original meaning.", prompt)

	prompt, err = GetOr("suggestions.json", "guidance-experience", "guidance-default")
	require.NoError(t, err)
	assert.Contains(t, prompt, "outcome")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet("suggestions.json", "rewrite-description"))
	})
}

func TestFormat(t *testing.T) {
	result := Format("Rewrite this {{.Section}} text: {{.Description}}", map[string]string{
		"Section":     "experience",
		"Description": "uses {{.Section}} literally",
	})
	assert.Equal(t, "Rewrite this experience text: uses {{.Section}} literally", result)
}

func TestFormat_UnknownPlaceholderKept(t *testing.T) {
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", map[string]string{}))
	assert.Equal(t, "No placeholders", Format("No placeholders", map[string]string{"Key": "Value"}))
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("suggestions.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"guidance-default", "guidance-education", "guidance-experience", "rewrite-description"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	first, err := Get("suggestions.json", "rewrite-description")
	require.NoError(t, err)
	cacheMu.RLock()
	_, cached := cache["suggestions.json"]
	cacheMu.RUnlock()
	assert.True(t, cached)

	second, err := Get("suggestions.json", "rewrite-description")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
