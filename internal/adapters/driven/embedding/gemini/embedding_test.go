package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{})

	assert.ErrorContains(t, err, "API key is required")
	assert.Nil(t, svc)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
}

func TestNewEmbeddingService_UnknownModelDimensions(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "test-key", Model: "embedding-next"})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, "embedding-next", svc.ModelName())
	assert.Zero(t, svc.Dimensions())
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	defer svc.Close()

	vectors, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}
