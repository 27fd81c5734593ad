package inference

import (
	"context"
	"strings"

	"herald/pkg/metrics"
)

// StubClient is a deterministic offline capability for local development
// and tests. It answers with a canned urgency verdict based on a couple
// of obvious markers in the prompt.
type StubClient struct {
	response string
	err      error
}

func NewStubClient() *StubClient {
	return &StubClient{}
}

// NewStubClientWith returns a stub that always answers with the given
// response and error.
func NewStubClientWith(response string, err error) *StubClient {
	return &StubClient{response: response, err: err}
}

func (c *StubClient) Name() string {
	return ProviderStub
}

func (c *StubClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return "", c.err
	}

	metrics.InferenceRequestsTotal.WithLabelValues(c.Name(), "success").Inc()
	if c.response != "" {
		return c.response, nil
	}

	lower := strings.ToLower(prompt)
	for _, marker := range []string{"urgente", "urgent", "emergência", "emergency"} {
		if strings.Contains(lower, marker) {
			return `{"urgent": true, "confidence": 0.8, "reasoning": "stub marker match"}`, nil
		}
	}
	return `{"urgent": false, "confidence": 0.3, "reasoning": "stub default"}`, nil
}
