package factory

import (
	"context"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/api"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/health"
)

// Engine defines the monitoring core operations
type Engine interface {
	api.Engine
	RegisterMetric(def common.MetricDefinition) error
	AddHealthCheck(name string, probe health.Probe) error
	Process(ctx context.Context)
}

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// Scheduler defines the periodic tick driver operations
type Scheduler interface {
	Start()
	Close() error
	IsInterfaceNil() bool
}

// Journal defines the alert transition persistence component
type Journal interface {
	api.Journal
	Ping(ctx context.Context) (bool, error)
	Close() error
}
