package server

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	response string
	err      error
	closed   bool
}

func (s *stubLLM) GenerateJSON(_ context.Context, _ string) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Close() error {
	s.closed = true
	return nil
}

func TestStaticSuggester(t *testing.T) {
	got, err := StaticSuggester{}.Suggest(context.Background(), types.KindExperience, "  built   the billing pipeline.  ")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Built the billing pipeline.",
		"Delivered results: built the billing pipeline.",
		"Key contribution: built the billing pipeline.",
	}, got)
}

func TestStaticSuggester_Blank(t *testing.T) {
	got, err := StaticSuggester{}.Suggest(context.Background(), types.KindEducation, "   ")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLLMSuggester(t *testing.T) {
	client := &stubLLM{response: "```json\n{\"suggestions\": [\"Led X\", \"Led X\", \"Drove Y\"]}\n```"}
	s := NewLLMSuggester(client, nil)

	got, err := s.Suggest(context.Background(), types.KindExperience, "did x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Led X", "Drove Y"}, got)

	require.NoError(t, s.Close())
	assert.True(t, client.closed)
}

func TestLLMSuggester_ErrorMapsToBadGateway(t *testing.T) {
	s := NewLLMSuggester(&stubLLM{err: errors.New("quota")}, llm.DefaultConfig())

	_, err := s.Suggest(context.Background(), types.KindExperience, "did x")
	var unavailable *ErrSuggestionUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 502, HTTPStatus(err))
}
