package inkwell

import (
	"context"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/pipeline"
)

// Processor is the public surface of the text-processing core: single and
// batched requests, invalidation, and health/metrics introspection.
type Processor interface {
	Process(ctx context.Context, req *Request) (*Response, error)
	ProcessBatch(ctx context.Context, reqs []*Request) ([]BatchItem, error)
	ProcessBatchN(ctx context.Context, reqs []*Request, limit int64) ([]BatchItem, error)
	Invalidate(ctx context.Context, req *Request) error
	InvalidateOperation(ctx context.Context, op Operation) error
	Health() Health
	MetricsSnapshot() MetricsSnapshot
	Close() error
}

// New creates a processor with default configuration.
func New(llm LLMClient, opts ...ProcessorOption) (Processor, error) {
	return NewFromConfig(config.DefaultConfig(), llm, opts...)
}

// NewFromConfig creates a processor from configuration.
func NewFromConfig(cfg *config.Config, llm LLMClient, opts ...ProcessorOption) (Processor, error) {
	po := &processorOptions{}
	for _, opt := range opts {
		opt(po)
	}
	po.applyConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return pipeline.New(cfg, llm, pipeline.Options{
		Logger:    po.logger,
		Metrics:   po.metrics,
		Validator: po.validator,
		Fallbacks: po.fallbacks,
	})
}

// NewFromFile creates a processor from a JSON config file with environment
// overrides applied.
func NewFromFile(path string, llm LLMClient, opts ...ProcessorOption) (Processor, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, llm, opts...)
}

// NewWithoutRedis creates a processor using only the in-process hot tier.
func NewWithoutRedis(llm LLMClient, opts ...ProcessorOption) (Processor, error) {
	cfg := config.DefaultConfig()
	cfg.Redis.Enabled = false
	return NewFromConfig(cfg, llm, opts...)
}

// Config returns a default configuration for modification before creating
// a processor.
func Config() *config.Config {
	return config.DefaultConfig()
}

// TestConfig returns a configuration suitable for unit tests.
func TestConfig() *config.Config {
	return config.ForTesting()
}
