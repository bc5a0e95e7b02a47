package api

import (
	"fmt"

	"github.com/JaimeStill/docket/internal/assistant"
	"github.com/JaimeStill/docket/internal/cases"
	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/infrastructure"
	"github.com/JaimeStill/docket/internal/prompts"
)

// Domain holds the systems served under the API base path.
type Domain struct {
	Cases     cases.System
	Prompts   prompts.System
	Assistant assistant.System
}

// NewDomain builds the systems on infra, whose logger is already module scoped.
func NewDomain(cfg *config.Config, infra *infrastructure.Infrastructure) (*Domain, error) {
	casesSystem := cases.New(
		infra.Database.Connection(),
		infra.Storage,
		infra.Logger,
		cases.Options{
			MaxDocumentSize: cfg.Cases.MaxDocumentSizeBytes(),
			CacheSize:       cfg.Cases.CacheSize,
			CacheTTL:        cfg.Cases.CacheTTLDuration(),
			Concurrency:     cfg.Cases.HydrationConcurrency,
		},
	)

	promptsSystem := prompts.New(infra.Database.Connection(), infra.Logger)

	model, err := assistant.NewGemini(
		infra.Lifecycle.Context(),
		cfg.Assistant.APIKey,
		cfg.Assistant.Model,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("assistant model: %w", err)
	}

	assistantSystem := assistant.New(
		model,
		promptsSystem,
		assistant.NewMetrics(infrastructure.MetricsNamespace, infra.Metrics),
		assistant.Options{
			MaxDocumentSize:   cfg.Cases.MaxDocumentSizeBytes(),
			Timeout:           cfg.Assistant.TimeoutDuration(),
			Attempts:          uint(cfg.Assistant.Retries),
			RetryDelay:        cfg.Assistant.RetryDelayDuration(),
			RequestsPerSecond: cfg.Assistant.RequestsPerSecond,
			Burst:             cfg.Assistant.Burst,
		},
		infra.Logger,
	)

	return &Domain{
		Cases:     casesSystem,
		Prompts:   promptsSystem,
		Assistant: assistantSystem,
	}, nil
}
