package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantService_OwnsOneSession(t *testing.T) {
	answerer := NewAnswerer(&mockVectorIndex{results: retrieved("ctx")}, newCountingEmbedder(), &mockLLM{})
	first := NewAssistantService(answerer)
	second := NewAssistantService(answerer)

	_, err := first.Ask(context.Background(), "hello")
	require.NoError(t, err)

	assert.Len(t, first.History(), 1)
	assert.Empty(t, second.History())
	assert.NotEqual(t, first.SessionID(), second.SessionID())
	assert.Equal(t, first.SessionID(), first.Session().ID())
}

func TestAssistantService_NotReady(t *testing.T) {
	assistant := NewAssistantService(NewAnswerer(nil, newCountingEmbedder(), &mockLLM{}))

	_, err := assistant.Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.Empty(t, assistant.History())
}
