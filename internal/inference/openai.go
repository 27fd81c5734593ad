package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"herald/internal/config"
	"herald/internal/logger"
	"herald/pkg/metrics"
)

// OpenAIClient talks to an OpenAI-compatible completion endpoint. Every
// call is rate limited and bounded by the configured timeout.
type OpenAIClient struct {
	llm       *openai.LLM
	limiter   *rate.Limiter
	timeout   time.Duration
	maxTokens int
	log       logger.Logger
}

func NewOpenAIClient(cfg config.InferenceConfig, log logger.Logger) (*OpenAIClient, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	rps := cfg.MaxRPS
	if rps <= 0 {
		rps = 1
	}

	return &OpenAIClient{
		llm:       llm,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}, nil
}

func (c *OpenAIClient) Name() string {
	return ProviderOpenAI
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(callCtx); err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(c.Name(), "rate_limited").Inc()
		return "", fmt.Errorf("inference rate limit wait: %w", err)
	}

	start := time.Now()
	completion, err := llms.GenerateFromSinglePrompt(callCtx, c.llm, prompt,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(c.maxTokens),
	)
	metrics.ObserveInferenceDuration(c.Name(), time.Since(start))

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		c.log.WarnwCtx(ctx, "inference call failed",
			"provider", c.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", fmt.Errorf("inference call failed: %w", err)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(c.Name(), "success").Inc()
	return completion, nil
}
