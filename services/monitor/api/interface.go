package api

import (
	"context"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
)

// Engine defines the monitoring core operations used by the web server
type Engine interface {
	// Record appends a sample for a registered metric
	Record(metric string, value float64, labels map[string]string, timestamp time.Time) error

	// Latest returns the most recently recorded sample of a metric
	Latest(metric string) (common.Sample, error)

	// History returns the retained samples of a metric in insertion order
	History(metric string, limit int) ([]common.Sample, error)

	// Definitions returns all registered metric definitions in registration order
	Definitions() []common.MetricDefinition

	// EvaluateNow runs one alert evaluation cycle over all registered metrics
	EvaluateNow()

	// Alerts returns the tracked alerts, optionally including the resolved ones
	Alerts(includeResolved bool) []common.Alert

	// HealthStatus runs all health checks and returns the aggregated status
	HealthStatus(ctx context.Context) common.HealthStatus

	// Stats returns counters describing the engine state
	Stats() common.EngineStats

	IsInterfaceNil() bool
}

// Journal defines the alert transition history source used by the web server
type Journal interface {
	// GetTransitions returns the journaled transitions of a metric in chronological order
	GetTransitions(ctx context.Context, metric string, limit int) ([]common.AlertTransition, error)

	IsInterfaceNil() bool
}
