package engine

import (
	"context"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/health"
)

// Registry defines the metric definitions holder used by the engine
type Registry interface {
	Register(def common.MetricDefinition) error
	Get(name string) (common.MetricDefinition, error)
	Names() []string
	Definitions() []common.MetricDefinition
	Len() int
	IsInterfaceNil() bool
}

// Store defines the bounded per-metric time series holder used by the engine
type Store interface {
	InitSeries(name string)
	Record(sample common.Sample) error
	Latest(name string) (common.Sample, error)
	History(name string, limit int) ([]common.Sample, error)
	IsInterfaceNil() bool
}

// AlertEvaluator defines the threshold evaluation and alert lifecycle component
type AlertEvaluator interface {
	// EvaluateAll evaluates every registered metric in registration order
	EvaluateAll()

	// Alerts returns the tracked alerts, optionally including the resolved ones
	Alerts(includeResolved bool) []common.Alert

	// Count returns the total number of tracked alerts, resolved included
	Count() int

	// ActiveCount returns the number of unresolved alerts
	ActiveCount() int

	IsInterfaceNil() bool
}

// HealthAggregator defines the health check registry and status reducer
type HealthAggregator interface {
	AddCheck(name string, probe health.Probe) error
	RunChecks(ctx context.Context) common.HealthStatus
	IsInterfaceNil() bool
}

// Collector defines an external sample source polled on every collection tick
type Collector interface {
	// Name identifies the collector in logs
	Name() string

	// Collect gathers the current samples of this source
	Collect(ctx context.Context) ([]common.Sample, error)

	IsInterfaceNil() bool
}
