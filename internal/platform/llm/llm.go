// Package llm assembles a generation.Generator from LLM configuration: it
// selects the provider transport and wraps it in the retrying client.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/recruiter-api/internal/config"
	"github.com/phrazzld/recruiter-api/internal/generation"
	"github.com/phrazzld/recruiter-api/internal/metrics"
	"github.com/phrazzld/recruiter-api/internal/platform/gemini"
	"github.com/phrazzld/recruiter-api/internal/platform/openai"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// NewCompleter builds the transport for the configured provider. It returns
// nil without error when no API key is set.
func NewCompleter(ctx context.Context, cfg config.LLMConfig) (generation.Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case ProviderGemini:
		return gemini.NewClient(ctx, cfg.APIKey)
	case ProviderOpenAI, "":
		return openai.NewClient(cfg.BaseURL, cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

// NewGenerator builds the generation client for cfg. When no API key is set
// it returns a nil Generator and no error; callers decide whether that is
// fatal.
func NewGenerator(
	ctx context.Context,
	cfg config.LLMConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...generation.Option,
) (generation.Generator, error) {
	completer, err := NewCompleter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM transport: %w", err)
	}
	if completer == nil {
		return nil, nil
	}

	opts = append([]generation.Option{generation.WithMetrics(m)}, opts...)
	client, err := generation.NewClient(
		completer,
		generation.Config{
			Model:          cfg.Model,
			Temperature:    cfg.Temperature,
			RequestTimeout: cfg.RequestTimeout,
			MaxAttempts:    cfg.MaxAttempts,
			BackoffBase:    cfg.BackoffBase,
		},
		logger.With("component", "generation_client", "provider", completer.Name()),
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}
	return client, nil
}
