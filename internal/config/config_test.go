package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestForTestingIsValid(t *testing.T) {
	cfg := ForTesting()
	if err := cfg.Validate(); err != nil {
		t.Errorf("test config invalid: %v", err)
	}
	if cfg.Redis.Enabled {
		t.Error("test config should not require Redis")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			"non-positive hot tier ceiling",
			func(c *Config) { c.HotTier.MaxEntries = 0 },
			"hotTier.maxEntries",
		},
		{
			"redis enabled without address",
			func(c *Config) { c.Redis.Enabled = true; c.Redis.Address = "" },
			"redis.address",
		},
		{
			"zero streaming cutoff",
			func(c *Config) { c.Keys.StreamingCutoffBytes = 0 },
			"keys.streamingCutoffBytes",
		},
		{
			"tier thresholds out of order",
			func(c *Config) { c.Tiers.MediumMaxBytes = c.Tiers.SmallMaxBytes - 1 },
			"tiers.mediumMaxBytes",
		},
		{
			"non-positive tier TTL",
			func(c *Config) { c.Tiers.Small.TTL = 0 },
			"tiers.small.ttl",
		},
		{
			"unknown operation in overrides",
			func(c *Config) { c.Operations.TTLOverrides = map[string]time.Duration{"translate": time.Minute} },
			"operations.ttlOverrides",
		},
		{
			"unresolvable strategy reference",
			func(c *Config) { c.Operations.Strategies = map[string]string{"qa": "heroic"} },
			"operations.strategies",
		},
		{
			"bad unknown-error policy",
			func(c *Config) { c.Resilience.UnknownErrorPolicy = "hopeful" },
			"resilience.unknownErrorPolicy",
		},
		{
			"zero retry attempts",
			func(c *Config) {
				s := c.Resilience.Strategies[StrategyBalanced]
				s.MaxAttempts = 0
				c.Resilience.Strategies[StrategyBalanced] = s
			},
			"maxAttempts",
		},
		{
			"non-positive batch concurrency",
			func(c *Config) { c.Batch.MaxConcurrency = 0 },
			"batch.maxConcurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention field %q", err, tt.field)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HotTier.MaxEntries = 512
	cfg.Redis.KeyPrefix = "loaded:"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.HotTier.MaxEntries != 512 {
		t.Errorf("maxEntries = %d, want 512", loaded.HotTier.MaxEntries)
	}
	if loaded.Redis.KeyPrefix != "loaded:" {
		t.Errorf("keyPrefix = %q, want loaded:", loaded.Redis.KeyPrefix)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INKWELL_HOT_TIER_MAX_ENTRIES", "4096")
	t.Setenv("INKWELL_REDIS_ENABLED", "true")
	t.Setenv("INKWELL_REDIS_ADDRESS", "redis.internal:6380")
	t.Setenv("INKWELL_REDIS_PASSWORD", "hunter2")
	t.Setenv("INKWELL_UNKNOWN_ERROR_POLICY", "optimistic")
	t.Setenv("INKWELL_BATCH_MAX_CONCURRENCY", "16")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.HotTier.MaxEntries != 4096 {
		t.Errorf("maxEntries = %d, want 4096", cfg.HotTier.MaxEntries)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Address != "redis.internal:6380" {
		t.Errorf("redis = %v/%q, want enabled at redis.internal:6380", cfg.Redis.Enabled, cfg.Redis.Address)
	}
	if cfg.Redis.Password.Value() != "hunter2" {
		t.Error("redis password override not applied")
	}
	if cfg.Resilience.UnknownErrorPolicy != UnknownPolicyOptimistic {
		t.Errorf("policy = %q, want optimistic", cfg.Resilience.UnknownErrorPolicy)
	}
	if cfg.Batch.MaxConcurrency != 16 {
		t.Errorf("maxConcurrency = %d, want 16", cfg.Batch.MaxConcurrency)
	}
}

func TestSecretRedaction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redis.Password = NewSecret("super-secret")

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Error("serialized config leaks the password")
	}
	if cfg.Redis.Password.Value() != "super-secret" {
		t.Error("secret lost its value")
	}
	if s := cfg.Redis.Password.String(); strings.Contains(s, "super-secret") {
		t.Errorf("String() leaks the password: %q", s)
	}
}

func TestDefaultTTLsByTier(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Tiers.Small.TTL <= cfg.Tiers.XLarge.TTL {
		t.Error("small inputs should outlive xlarge ones in cache")
	}
	if !cfg.Tiers.XLarge.Compress {
		t.Error("xlarge responses should be compressed")
	}
	if cfg.Tiers.XLarge.HotEligible {
		t.Error("xlarge responses should not occupy hot tier slots")
	}
}
