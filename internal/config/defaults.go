package config

import "time"

// DefaultConfig returns a configuration with sensible defaults. The system
// is usable unconfigured: Redis is off, the hot tier is on, and all five
// operations resolve to the balanced strategy.
func DefaultConfig() *Config {
	return &Config{
		HotTier: HotTierConfig{
			Enabled:    true,
			MaxEntries: 2048,
		},
		Redis: RedisConfig{
			Enabled:             false,
			Address:             "localhost:6379",
			Password:            Secret{},
			DB:                  0,
			KeyPrefix:           "inkwell:",
			PoolSize:            100,
			MinIdleConns:        10,
			DialTimeout:         5 * time.Second,
			ReadTimeout:         3 * time.Second,
			WriteTimeout:        3 * time.Second,
			PoolTimeout:         4 * time.Second,
			HealthCheckInterval: 5 * time.Second,
			EnableTLS:           false,
			TLSSkipVerify:       false,
		},
		Keys: KeyConfig{
			StreamingCutoffBytes: 32 * 1024,
			ChunkSizeBytes:       8 * 1024,
		},
		Tiers: TiersConfig{
			SmallMaxBytes:  4 * 1024,
			MediumMaxBytes: 64 * 1024,
			LargeMaxBytes:  512 * 1024,
			Small:          TierClassConfig{TTL: 1 * time.Hour, Compress: false, HotEligible: true},
			Medium:         TierClassConfig{TTL: 30 * time.Minute, Compress: false, HotEligible: true},
			Large:          TierClassConfig{TTL: 15 * time.Minute, Compress: true, HotEligible: false},
			XLarge:         TierClassConfig{TTL: 5 * time.Minute, Compress: true, HotEligible: false},
		},
		Operations: OperationsConfig{
			TTLOverrides: map[string]time.Duration{
				"qa": 10 * time.Minute,
			},
			Strategies:      map[string]string{},
			DefaultStrategy: StrategyBalanced,
		},
		Resilience: ResilienceConfig{
			UnknownErrorPolicy: UnknownPolicyStrict,
			Strategies: map[string]StrategyConfig{
				StrategyAggressive: {
					MaxAttempts:      5,
					BaseDelay:        100 * time.Millisecond,
					MaxDelay:         5 * time.Second,
					AttemptTimeout:   10 * time.Second,
					FailureThreshold: 3,
					RecoveryTimeout:  15 * time.Second,
					Jitter:           true,
				},
				StrategyBalanced: {
					MaxAttempts:      3,
					BaseDelay:        250 * time.Millisecond,
					MaxDelay:         4 * time.Second,
					AttemptTimeout:   30 * time.Second,
					FailureThreshold: 5,
					RecoveryTimeout:  30 * time.Second,
					Jitter:           true,
				},
				StrategyConservative: {
					MaxAttempts:      2,
					BaseDelay:        1 * time.Second,
					MaxDelay:         8 * time.Second,
					AttemptTimeout:   60 * time.Second,
					FailureThreshold: 8,
					RecoveryTimeout:  60 * time.Second,
					Jitter:           true,
				},
			},
		},
		Batch: BatchConfig{
			MaxConcurrency: 8,
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			PublishInterval: 10 * time.Second,
			DataDog: DataDogConfig{
				Enabled:   false,
				AgentHost: "127.0.0.1",
				Port:      8125,
				Prefix:    "inkwell",
				Tags:      []string{},
			},
		},
	}
}

// ForTesting returns a minimal configuration suitable for unit tests:
// tiny hot tier, no Redis, no retry delays worth waiting for.
func ForTesting() *Config {
	cfg := DefaultConfig()
	cfg.HotTier.MaxEntries = 64
	cfg.Redis.Enabled = false
	cfg.Redis.KeyPrefix = "test:"
	cfg.Redis.DialTimeout = 1 * time.Second
	cfg.Redis.HealthCheckInterval = 0
	cfg.Keys.StreamingCutoffBytes = 1024
	cfg.Keys.ChunkSizeBytes = 256
	cfg.Metrics.Enabled = false
	for name, s := range cfg.Resilience.Strategies {
		s.BaseDelay = 1 * time.Millisecond
		s.MaxDelay = 5 * time.Millisecond
		s.RecoveryTimeout = 50 * time.Millisecond
		s.Jitter = false
		cfg.Resilience.Strategies[name] = s
	}
	return cfg
}

// ForTestingWithRedis returns a test config with Redis enabled.
func ForTestingWithRedis(addr string) *Config {
	cfg := ForTesting()
	cfg.Redis.Enabled = true
	cfg.Redis.Address = addr
	return cfg
}
