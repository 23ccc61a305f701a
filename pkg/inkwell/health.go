package inkwell

import "github.com/tildesmith/inkwell/internal/types"

// Health and metrics views, re-exported for callers.
type (
	Health          = types.Health
	HealthStatus    = types.HealthStatus
	HotTierHealth   = types.HotTierHealth
	DurableHealth   = types.DurableHealth
	OperationHealth = types.OperationHealth
	MetricsSnapshot = types.MetricsSnapshot
)

const (
	HealthStatusHealthy   = types.HealthStatusHealthy
	HealthStatusDegraded  = types.HealthStatusDegraded
	HealthStatusUnhealthy = types.HealthStatusUnhealthy
)
