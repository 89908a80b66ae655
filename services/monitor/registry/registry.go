package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
)

// metricRegistry holds the metric definitions, preserving registration order so
// evaluation cycles are deterministic
type metricRegistry struct {
	mut         sync.RWMutex
	definitions map[string]common.MetricDefinition
	order       []string
}

// NewMetricRegistry creates an empty metric registry
func NewMetricRegistry() *metricRegistry {
	return &metricRegistry{
		definitions: make(map[string]common.MetricDefinition),
	}
}

// Register inserts or replaces a metric definition by name. Replacing a definition
// does not retroactively alter existing samples or open alerts. A definition with
// the critical threshold below the warning one is rejected.
func (r *metricRegistry) Register(def common.MetricDefinition) error {
	if len(def.Name) == 0 {
		return errors.New("empty metric name")
	}
	if def.Thresholds.Critical < def.Thresholds.Warning {
		return fmt.Errorf("%w: metric %s", common.ErrInvalidThresholds, def.Name)
	}

	r.mut.Lock()
	defer r.mut.Unlock()

	_, exists := r.definitions[def.Name]
	if !exists {
		r.order = append(r.order, def.Name)
	}
	r.definitions[def.Name] = def

	return nil
}

// Get returns the definition for the provided metric name
func (r *metricRegistry) Get(name string) (common.MetricDefinition, error) {
	r.mut.RLock()
	defer r.mut.RUnlock()

	def, exists := r.definitions[name]
	if !exists {
		return common.MetricDefinition{}, fmt.Errorf("%w: %s", common.ErrUnknownMetric, name)
	}

	return def, nil
}

// Names returns all registered metric names in registration order. Re-registering
// an existing metric keeps its original position.
func (r *metricRegistry) Names() []string {
	r.mut.RLock()
	defer r.mut.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Definitions returns all registered definitions in registration order
func (r *metricRegistry) Definitions() []common.MetricDefinition {
	r.mut.RLock()
	defer r.mut.RUnlock()

	defs := make([]common.MetricDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.definitions[name])
	}

	return defs
}

// Len returns the number of registered metrics
func (r *metricRegistry) Len() int {
	r.mut.RLock()
	defer r.mut.RUnlock()

	return len(r.definitions)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *metricRegistry) IsInterfaceNil() bool {
	return r == nil
}
