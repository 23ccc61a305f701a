// Package config provides configuration management for the inkwell core.
package config

import (
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

// Secret is a string type that redacts its value when marshaled to JSON.
type Secret = types.Secret

// NewSecret creates a new Secret with the provided value.
func NewSecret(value string) Secret {
	return types.NewSecret(value)
}

// Config contains all configuration for an inkwell processor.
type Config struct {
	HotTier    HotTierConfig    `json:"hotTier"`
	Redis      RedisConfig      `json:"redis"`
	Keys       KeyConfig        `json:"keys"`
	Tiers      TiersConfig      `json:"tiers"`
	Operations OperationsConfig `json:"operations"`
	Resilience ResilienceConfig `json:"resilience"`
	Batch      BatchConfig      `json:"batch"`
	Metrics    MetricsConfig    `json:"metrics"`
}

// HotTierConfig configures the bounded in-process cache tier.
type HotTierConfig struct {
	Enabled    bool `json:"enabled"`
	MaxEntries int  `json:"maxEntries"`
}

// RedisConfig configures the durable key-value tier.
type RedisConfig struct {
	Enabled             bool          `json:"enabled"`
	Address             string        `json:"address"`
	Password            Secret        `json:"password"`
	DB                  int           `json:"db"`
	KeyPrefix           string        `json:"keyPrefix"`
	PoolSize            int           `json:"poolSize"`
	MinIdleConns        int           `json:"minIdleConns"`
	DialTimeout         time.Duration `json:"dialTimeout"`
	ReadTimeout         time.Duration `json:"readTimeout"`
	WriteTimeout        time.Duration `json:"writeTimeout"`
	PoolTimeout         time.Duration `json:"poolTimeout"`
	HealthCheckInterval time.Duration `json:"healthCheckInterval"`
	EnableTLS           bool          `json:"enableTLS"`
	TLSSkipVerify       bool          `json:"tlsSkipVerify"`
}

// KeyConfig configures cache key generation.
type KeyConfig struct {
	// StreamingCutoffBytes is the input size at which key generation
	// switches from a single full-buffer hash write to fixed-size chunked
	// writes. The resulting digest is identical either way.
	StreamingCutoffBytes int `json:"streamingCutoffBytes"`
	ChunkSizeBytes       int `json:"chunkSizeBytes"`
}

// TiersConfig configures size-based cache policy buckets. Inputs up to
// SmallMaxBytes are small, up to MediumMaxBytes medium, up to LargeMaxBytes
// large, and everything above is xlarge.
type TiersConfig struct {
	SmallMaxBytes  int             `json:"smallMaxBytes"`
	MediumMaxBytes int             `json:"mediumMaxBytes"`
	LargeMaxBytes  int             `json:"largeMaxBytes"`
	Small          TierClassConfig `json:"small"`
	Medium         TierClassConfig `json:"medium"`
	Large          TierClassConfig `json:"large"`
	XLarge         TierClassConfig `json:"xlarge"`
}

// TierClassConfig is the policy tuple applied to one size bucket.
type TierClassConfig struct {
	TTL         time.Duration `json:"ttl"`
	Compress    bool          `json:"compress"`
	HotEligible bool          `json:"hotEligible"`
}

// OperationsConfig configures per-operation behavior, keyed by operation
// name (summarize, sentiment, key_points, questions, qa).
type OperationsConfig struct {
	// TTLOverrides replaces the size-derived TTL for specific operations.
	TTLOverrides map[string]time.Duration `json:"ttlOverrides"`
	// Strategies assigns a named resilience strategy per operation.
	Strategies map[string]string `json:"strategies"`
	// DefaultStrategy applies to operations with no explicit assignment.
	DefaultStrategy string `json:"defaultStrategy"`
}

// ResilienceConfig configures retry and circuit-breaker behavior.
type ResilienceConfig struct {
	// UnknownErrorPolicy decides how unclassifiable LLM errors are treated:
	// "strict" (no retry) or "optimistic" (retry). This is the single
	// policy switch for unknown failures.
	UnknownErrorPolicy string                    `json:"unknownErrorPolicy"`
	Strategies         map[string]StrategyConfig `json:"strategies"`
}

// StrategyConfig is one named resilience strategy.
type StrategyConfig struct {
	MaxAttempts      int           `json:"maxAttempts"`
	BaseDelay        time.Duration `json:"baseDelay"`
	MaxDelay         time.Duration `json:"maxDelay"`
	AttemptTimeout   time.Duration `json:"attemptTimeout"`
	FailureThreshold int           `json:"failureThreshold"`
	RecoveryTimeout  time.Duration `json:"recoveryTimeout"`
	Jitter           bool          `json:"jitter"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	// MaxConcurrency bounds the number of outstanding LLM calls a batch
	// may have in flight at once.
	MaxConcurrency int `json:"maxConcurrency"`
}

// MetricsConfig contains configuration for metrics publishing.
type MetricsConfig struct {
	Enabled         bool          `json:"enabled"`
	PublishInterval time.Duration `json:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog"`
}

// DataDogConfig contains configuration for DataDog StatsD publishing.
type DataDogConfig struct {
	Enabled   bool     `json:"enabled"`
	AgentHost string   `json:"agentHost"`
	Port      int      `json:"port"`
	Prefix    string   `json:"prefix"`
	Tags      []string `json:"tags"`
}

// UnknownPolicyStrict and UnknownPolicyOptimistic are the accepted values
// for ResilienceConfig.UnknownErrorPolicy.
const (
	UnknownPolicyStrict     = "strict"
	UnknownPolicyOptimistic = "optimistic"
)

// Built-in strategy names.
const (
	StrategyAggressive   = "aggressive"
	StrategyBalanced     = "balanced"
	StrategyConservative = "conservative"
)
