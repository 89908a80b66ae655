package alerts

import "github.com/iulianpascalau/agent-monitoring/services/monitor/common"

// Registry defines the metric definitions source used during evaluation
type Registry interface {
	// Get returns the definition of the provided metric or an unknown-metric error
	Get(name string) (common.MetricDefinition, error)

	// Names returns all registered metric names in registration order
	Names() []string

	IsInterfaceNil() bool
}

// Store defines the sample source used during evaluation
type Store interface {
	// Latest returns the most recently appended sample of a metric
	Latest(name string) (common.Sample, error)

	IsInterfaceNil() bool
}
