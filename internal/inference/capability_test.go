package inference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/config"
	"herald/internal/logger"
)

func TestNew_SelectsProvider(t *testing.T) {
	capability, err := New(config.InferenceConfig{Provider: "stub"}, logger.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, ProviderStub, capability.Name())

	capability, err = New(config.InferenceConfig{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
		MaxRPS:    5,
		MaxTokens: 256,
	}, logger.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, capability.Name())

	_, err = New(config.InferenceConfig{Provider: "oracle"}, logger.NopLogger())
	assert.Error(t, err)
}

func TestStubClient_Deterministic(t *testing.T) {
	c := NewStubClient()
	ctx := context.Background()

	first, err := c.Complete(ctx, "Classifique: reunião amanhã às 10h")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Complete(ctx, "Classifique: reunião amanhã às 10h")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, first, `"urgent": false`)
}

func TestStubClient_MarkerMatch(t *testing.T) {
	c := NewStubClient()

	out, err := c.Complete(context.Background(), "Classifique: preciso de ajuda URGENTE")
	require.NoError(t, err)
	assert.Contains(t, out, `"urgent": true`)
}

func TestStubClient_CannedResponse(t *testing.T) {
	c := NewStubClientWith(`{"urgent": true, "confidence": 0.95}`, nil)
	out, err := c.Complete(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, `{"urgent": true, "confidence": 0.95}`, out)

	failing := NewStubClientWith("", errors.New("model unavailable"))
	_, err = failing.Complete(context.Background(), "anything")
	assert.Error(t, err)
}

func TestStubClient_RespectsContext(t *testing.T) {
	c := NewStubClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
