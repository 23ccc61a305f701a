package inkwell

import (
	"context"
	"errors"
	"testing"
)

func stubClient(payload string) LLMClient {
	return LLMClientFunc(func(ctx context.Context, req *Request) ([]byte, error) {
		return []byte(payload), nil
	})
}

func TestNewWithoutRedis(t *testing.T) {
	proc, err := NewFromConfig(TestConfig(), stubClient("summary"))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer proc.Close()

	ctx := context.Background()
	resp, err := proc.Process(ctx, NewRequest(OpSummarize, "a document"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if string(resp.Payload) != "summary" {
		t.Errorf("payload = %q", resp.Payload)
	}
	if resp.FromCache {
		t.Error("first call reported FromCache")
	}

	resp, err = proc.Process(ctx, NewRequest(OpSummarize, "a document"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !resp.FromCache {
		t.Error("repeat call not served from cache")
	}
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil LLM client")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := TestConfig()
	cfg.Batch.MaxConcurrency = 0

	if _, err := NewFromConfig(cfg, stubClient("x")); err == nil {
		t.Error("expected config validation to fail construction")
	}
}

func TestWithFallbackOption(t *testing.T) {
	failing := LLMClientFunc(func(ctx context.Context, req *Request) ([]byte, error) {
		return nil, MarkPermanent(errors.New("offline"))
	})

	proc, err := NewFromConfig(TestConfig(), failing,
		WithFallback(OpSummarize, func(ctx context.Context, cause error) ([]byte, error) {
			return []byte("degraded"), nil
		}),
	)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer proc.Close()

	resp, err := proc.Process(context.Background(), NewRequest(OpSummarize, "doc"))
	if err != nil {
		t.Fatalf("expected fallback result, got %v", err)
	}
	if string(resp.Payload) != "degraded" {
		t.Errorf("payload = %q", resp.Payload)
	}
}

func TestWithValidatorOption(t *testing.T) {
	proc, err := NewFromConfig(TestConfig(), stubClient("bad output"),
		WithValidator(func(ctx context.Context, req *Request, payload []byte) error {
			return errors.New("rejected")
		}),
	)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer proc.Close()

	_, err = proc.Process(context.Background(), NewRequest(OpSummarize, "doc"))
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var pe *ProcessingError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ProcessingError", err)
	}
	if pe.Category != FailureInvalidInput {
		t.Errorf("category = %v, want invalid input", pe.Category)
	}
}

func TestWithoutRedisOptionOverridesConfig(t *testing.T) {
	cfg := TestConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Address = "unreachable.invalid:6379"
	cfg.Redis.HealthCheckInterval = 0

	proc, err := NewFromConfig(cfg, stubClient("x"), WithoutRedis())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer proc.Close()

	h := proc.Health()
	if h.Durable.Enabled {
		t.Error("durable tier enabled despite WithoutRedis")
	}
}

func TestHealthOnFreshProcessor(t *testing.T) {
	proc, err := NewFromConfig(TestConfig(), stubClient("x"))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer proc.Close()

	h := proc.Health()
	if h.Status != HealthStatusHealthy {
		t.Errorf("status = %v, want healthy", h.Status)
	}
	if !h.HotTier.Enabled {
		t.Error("hot tier should be enabled")
	}
	if len(h.Operations) != 0 {
		t.Errorf("operations = %v, want empty before any calls", h.Operations)
	}
}
