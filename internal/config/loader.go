package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

// ConfigError describes an invalid configuration value. Construction fails
// rather than limping along with undefined behavior.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("inkwell: invalid configuration: %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// Load loads configuration from a JSON file. If the file doesn't exist,
// returns default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads configuration from a JSON file and applies environment
// overrides. Configuration is read once at startup; changing it requires
// constructing a new processor.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INKWELL_HOT_TIER_ENABLED"); v != "" {
		cfg.HotTier.Enabled = parseBool(v)
	}
	if v := os.Getenv("INKWELL_HOT_TIER_MAX_ENTRIES"); v != "" {
		cfg.HotTier.MaxEntries = parseInt(v, cfg.HotTier.MaxEntries)
	}

	if v := os.Getenv("INKWELL_REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("INKWELL_REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("INKWELL_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = NewSecret(v)
	}
	if v := os.Getenv("INKWELL_REDIS_DB"); v != "" {
		cfg.Redis.DB = parseInt(v, cfg.Redis.DB)
	}
	if v := os.Getenv("INKWELL_REDIS_KEY_PREFIX"); v != "" {
		cfg.Redis.KeyPrefix = v
	}
	if v := os.Getenv("INKWELL_REDIS_DIAL_TIMEOUT"); v != "" {
		cfg.Redis.DialTimeout = parseDuration(v, cfg.Redis.DialTimeout)
	}
	if v := os.Getenv("INKWELL_REDIS_HEALTH_CHECK_INTERVAL"); v != "" {
		cfg.Redis.HealthCheckInterval = parseDuration(v, cfg.Redis.HealthCheckInterval)
	}
	if v := os.Getenv("INKWELL_REDIS_ENABLE_TLS"); v != "" {
		cfg.Redis.EnableTLS = parseBool(v)
	}
	if v := os.Getenv("INKWELL_REDIS_TLS_SKIP_VERIFY"); v != "" {
		cfg.Redis.TLSSkipVerify = parseBool(v)
	}

	if v := os.Getenv("INKWELL_KEYS_STREAMING_CUTOFF"); v != "" {
		cfg.Keys.StreamingCutoffBytes = parseInt(v, cfg.Keys.StreamingCutoffBytes)
	}

	if v := os.Getenv("INKWELL_BATCH_MAX_CONCURRENCY"); v != "" {
		cfg.Batch.MaxConcurrency = parseInt(v, cfg.Batch.MaxConcurrency)
	}

	if v := os.Getenv("INKWELL_DEFAULT_STRATEGY"); v != "" {
		cfg.Operations.DefaultStrategy = v
	}
	if v := os.Getenv("INKWELL_UNKNOWN_ERROR_POLICY"); v != "" {
		cfg.Resilience.UnknownErrorPolicy = v
	}

	if v := os.Getenv("INKWELL_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("DD_AGENT_HOST"); v != "" {
		cfg.Metrics.DataDog.AgentHost = v
		cfg.Metrics.DataDog.Enabled = true
	}
	if v := os.Getenv("DD_DOGSTATSD_PORT"); v != "" {
		cfg.Metrics.DataDog.Port = parseInt(v, cfg.Metrics.DataDog.Port)
	}
	if v := os.Getenv("DD_SERVICE"); v != "" {
		cfg.Metrics.DataDog.Prefix = v
	}
	if v := os.Getenv("DD_ENV"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "env:"+v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.HotTier.Enabled && c.HotTier.MaxEntries <= 0 {
		return invalid("hotTier.maxEntries", "must be positive")
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return invalid("redis.address", "required when redis is enabled")
		}
		if c.Redis.PoolSize <= 0 {
			return invalid("redis.poolSize", "must be positive")
		}
	}

	if c.Keys.StreamingCutoffBytes <= 0 {
		return invalid("keys.streamingCutoffBytes", "must be positive")
	}
	if c.Keys.ChunkSizeBytes <= 0 {
		return invalid("keys.chunkSizeBytes", "must be positive")
	}

	if c.Tiers.SmallMaxBytes <= 0 {
		return invalid("tiers.smallMaxBytes", "must be positive")
	}
	if c.Tiers.MediumMaxBytes <= c.Tiers.SmallMaxBytes {
		return invalid("tiers.mediumMaxBytes", "must exceed smallMaxBytes")
	}
	if c.Tiers.LargeMaxBytes <= c.Tiers.MediumMaxBytes {
		return invalid("tiers.largeMaxBytes", "must exceed mediumMaxBytes")
	}
	for name, tc := range map[string]TierClassConfig{
		"tiers.small":  c.Tiers.Small,
		"tiers.medium": c.Tiers.Medium,
		"tiers.large":  c.Tiers.Large,
		"tiers.xlarge": c.Tiers.XLarge,
	} {
		if tc.TTL <= 0 {
			return invalid(name+".ttl", "must be positive")
		}
	}

	for op, ttl := range c.Operations.TTLOverrides {
		if _, err := types.ParseOperation(op); err != nil {
			return invalid("operations.ttlOverrides", "unknown operation "+strconv.Quote(op))
		}
		if ttl <= 0 {
			return invalid("operations.ttlOverrides."+op, "must be positive")
		}
	}
	for op, strategy := range c.Operations.Strategies {
		if _, err := types.ParseOperation(op); err != nil {
			return invalid("operations.strategies", "unknown operation "+strconv.Quote(op))
		}
		if _, ok := c.Resilience.Strategies[strategy]; !ok {
			return invalid("operations.strategies."+op, "unknown strategy "+strconv.Quote(strategy))
		}
	}
	if _, ok := c.Resilience.Strategies[c.Operations.DefaultStrategy]; !ok {
		return invalid("operations.defaultStrategy", "unknown strategy "+strconv.Quote(c.Operations.DefaultStrategy))
	}

	switch c.Resilience.UnknownErrorPolicy {
	case UnknownPolicyStrict, UnknownPolicyOptimistic:
	default:
		return invalid("resilience.unknownErrorPolicy", `must be "strict" or "optimistic"`)
	}
	for name, s := range c.Resilience.Strategies {
		if s.MaxAttempts <= 0 {
			return invalid("resilience.strategies."+name+".maxAttempts", "must be positive")
		}
		if s.FailureThreshold <= 0 {
			return invalid("resilience.strategies."+name+".failureThreshold", "must be positive")
		}
		if s.RecoveryTimeout <= 0 {
			return invalid("resilience.strategies."+name+".recoveryTimeout", "must be positive")
		}
	}

	if c.Batch.MaxConcurrency <= 0 {
		return invalid("batch.maxConcurrency", "must be positive")
	}

	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}
