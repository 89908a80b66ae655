package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("health")

// Probe is a boolean-or-failure check representing one subsystem's health
type Probe interface {
	// Evaluate returns true when the subsystem is healthy. An error marks the
	// subsystem status as unknown.
	Evaluate(ctx context.Context) (bool, error)

	IsInterfaceNil() bool
}

// ProbeFunc adapts a plain function to the Probe interface
type ProbeFunc func(ctx context.Context) (bool, error)

// Evaluate calls the wrapped function
func (f ProbeFunc) Evaluate(ctx context.Context) (bool, error) {
	return f(ctx)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (f ProbeFunc) IsInterfaceNil() bool {
	return f == nil
}

// healthAggregator runs all registered probes and reduces their statuses into one
// overall value. Results are recomputed on every call, never persisted.
type healthAggregator struct {
	mut       sync.RWMutex
	probes    map[string]Probe
	order     []string
	startTime time.Time
}

// NewHealthAggregator creates an empty health aggregator
func NewHealthAggregator() *healthAggregator {
	return &healthAggregator{
		probes:    make(map[string]Probe),
		startTime: time.Now(),
	}
}

// AddCheck registers or replaces a named probe
func (h *healthAggregator) AddCheck(name string, probe Probe) error {
	if len(name) == 0 {
		return errors.New("empty check name")
	}
	if check.IfNil(probe) {
		return fmt.Errorf("nil probe for check %s", name)
	}

	h.mut.Lock()
	defer h.mut.Unlock()

	_, exists := h.probes[name]
	if !exists {
		h.order = append(h.order, name)
	}
	h.probes[name] = probe

	return nil
}

// RunChecks executes every registered probe and aggregates the outcome. A probe
// returning an error or panicking yields an unknown component status with a
// diagnostic message and never aborts the remaining checks.
func (h *healthAggregator) RunChecks(ctx context.Context) common.HealthStatus {
	h.mut.RLock()
	names := make([]string, len(h.order))
	copy(names, h.order)
	probes := make(map[string]Probe, len(h.probes))
	for name, probe := range h.probes {
		probes[name] = probe
	}
	h.mut.RUnlock()

	components := make(map[string]common.HealthCheckResult, len(names))
	for _, name := range names {
		components[name] = runProbe(ctx, name, probes[name])
	}

	now := time.Now()

	return common.HealthStatus{
		Overall:    reduce(components),
		Components: components,
		Uptime:     now.Sub(h.startTime),
		LastUpdate: now,
	}
}

func runProbe(ctx context.Context, name string, probe Probe) (result common.HealthCheckResult) {
	defer func() {
		r := recover()
		if r != nil {
			log.Warn("health check panicked", "name", name, "reason", r)
			result = common.HealthCheckResult{
				Status:    common.StatusUnknown,
				LastCheck: time.Now(),
				Message:   fmt.Sprintf("check panicked: %v", r),
			}
		}
	}()

	healthy, err := probe.Evaluate(ctx)
	if err != nil {
		return common.HealthCheckResult{
			Status:    common.StatusUnknown,
			LastCheck: time.Now(),
			Message:   err.Error(),
		}
	}

	status := common.StatusHealthy
	if !healthy {
		status = common.StatusCritical
	}

	return common.HealthCheckResult{
		Status:    status,
		LastCheck: time.Now(),
	}
}

// reduce applies the fixed precedence: critical, then warning, then unknown
func reduce(components map[string]common.HealthCheckResult) common.HealthState {
	overall := common.StatusHealthy
	hasWarning := false
	hasUnknown := false
	for _, result := range components {
		switch result.Status {
		case common.StatusCritical:
			return common.StatusCritical
		case common.StatusWarning:
			hasWarning = true
		case common.StatusUnknown:
			hasUnknown = true
		}
	}

	if hasWarning {
		return common.StatusWarning
	}
	if hasUnknown {
		return common.StatusUnknown
	}

	return overall
}

// Uptime returns the duration since the aggregator was created
func (h *healthAggregator) Uptime() time.Duration {
	return time.Since(h.startTime)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (h *healthAggregator) IsInterfaceNil() bool {
	return h == nil
}
