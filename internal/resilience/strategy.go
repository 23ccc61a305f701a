package resilience

import (
	"fmt"
	"time"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/types"
)

// Strategy is a resolved retry/breaker profile for one operation.
type Strategy struct {
	Name             string
	MaxAttempts      int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	AttemptTimeout   time.Duration
	FailureThreshold int
	RecoveryTimeout  time.Duration
	Jitter           bool
}

func strategyFromConfig(name string, cfg config.StrategyConfig) Strategy {
	return Strategy{
		Name:             name,
		MaxAttempts:      cfg.MaxAttempts,
		BaseDelay:        cfg.BaseDelay,
		MaxDelay:         cfg.MaxDelay,
		AttemptTimeout:   cfg.AttemptTimeout,
		FailureThreshold: cfg.FailureThreshold,
		RecoveryTimeout:  cfg.RecoveryTimeout,
		Jitter:           cfg.Jitter,
	}
}

// ResolveStrategies maps every operation to its strategy: the per-operation
// assignment when present, the default strategy otherwise. Unknown strategy
// names are a configuration error.
func ResolveStrategies(cfg config.ResilienceConfig, ops config.OperationsConfig) (map[types.Operation]Strategy, error) {
	resolved := make(map[types.Operation]Strategy, len(types.Operations()))

	defaultName := ops.DefaultStrategy
	if defaultName == "" {
		defaultName = config.StrategyBalanced
	}

	for _, op := range types.Operations() {
		name := defaultName
		if assigned, ok := ops.Strategies[op.String()]; ok && assigned != "" {
			name = assigned
		}
		sc, ok := cfg.Strategies[name]
		if !ok {
			return nil, fmt.Errorf("operation %q references unknown strategy %q", op, name)
		}
		resolved[op] = strategyFromConfig(name, sc)
	}

	return resolved, nil
}
