package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/events"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/health"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("engine")

// ArgsMonitorEngine holds the dependencies of the monitor engine
type ArgsMonitorEngine struct {
	Registry   Registry
	Store      Store
	Alerts     AlertEvaluator
	Health     HealthAggregator
	Notifier   events.Notifier
	Collectors []Collector
}

// monitorEngine is the facade of the monitoring core. It exclusively owns the
// registry, the sample store and the alert map for its lifetime; all mutation goes
// through the operations defined here.
type monitorEngine struct {
	registry   Registry
	store      Store
	alerts     AlertEvaluator
	health     HealthAggregator
	notifier   events.Notifier
	collectors []Collector
	startTime  time.Time
}

// NewMonitorEngine creates a new monitor engine instance
func NewMonitorEngine(args ArgsMonitorEngine) (*monitorEngine, error) {
	if check.IfNil(args.Registry) {
		return nil, errors.New("nil registry")
	}
	if check.IfNil(args.Store) {
		return nil, errors.New("nil store")
	}
	if check.IfNil(args.Alerts) {
		return nil, errors.New("nil alerts evaluator")
	}
	if check.IfNil(args.Health) {
		return nil, errors.New("nil health aggregator")
	}
	if check.IfNil(args.Notifier) {
		return nil, errors.New("nil notifier")
	}
	for idx, collector := range args.Collectors {
		if check.IfNil(collector) {
			return nil, fmt.Errorf("nil collector at index %d", idx)
		}
	}

	return &monitorEngine{
		registry:   args.Registry,
		store:      args.Store,
		alerts:     args.Alerts,
		health:     args.Health,
		notifier:   args.Notifier,
		collectors: args.Collectors,
		startTime:  time.Now(),
	}, nil
}

// RegisterMetric inserts or replaces a metric definition and makes sure an empty
// sample series exists for it
func (e *monitorEngine) RegisterMetric(def common.MetricDefinition) error {
	err := e.registry.Register(def)
	if err != nil {
		return err
	}

	e.store.InitSeries(def.Name)
	log.Debug("metric registered", "name", def.Name, "kind", string(def.Kind),
		"warning", def.Thresholds.Warning, "critical", def.Thresholds.Critical)

	return nil
}

// Record appends a sample for a registered metric and emits one metric-update
// event. A zero timestamp is replaced with the current time.
func (e *monitorEngine) Record(metric string, value float64, labels map[string]string, timestamp time.Time) error {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	err := e.store.Record(common.Sample{
		Metric:    metric,
		Value:     value,
		Timestamp: timestamp,
		Labels:    labels,
	})
	if err != nil {
		return err
	}

	e.notifier.MetricUpdated(metric, value, timestamp)

	return nil
}

// Latest returns the most recently recorded sample of a metric
func (e *monitorEngine) Latest(metric string) (common.Sample, error) {
	return e.store.Latest(metric)
}

// History returns the retained samples of a metric in insertion order, optionally
// truncated to the most recent limit entries
func (e *monitorEngine) History(metric string, limit int) ([]common.Sample, error) {
	return e.store.History(metric, limit)
}

// Definitions returns all registered metric definitions in registration order
func (e *monitorEngine) Definitions() []common.MetricDefinition {
	return e.registry.Definitions()
}

// EvaluateNow runs one alert evaluation cycle over all registered metrics. It is
// safe to call concurrently with a scheduled tick.
func (e *monitorEngine) EvaluateNow() {
	e.alerts.EvaluateAll()
}

// Alerts returns the tracked alerts, optionally including the resolved ones
func (e *monitorEngine) Alerts(includeResolved bool) []common.Alert {
	return e.alerts.Alerts(includeResolved)
}

// AddHealthCheck registers or replaces a named health probe
func (e *monitorEngine) AddHealthCheck(name string, probe health.Probe) error {
	return e.health.AddCheck(name, probe)
}

// HealthStatus runs all health checks and returns the aggregated status. The
// uptime reported is the duration since the engine was created.
func (e *monitorEngine) HealthStatus(ctx context.Context) common.HealthStatus {
	status := e.health.RunChecks(ctx)
	status.Uptime = time.Since(e.startTime)

	return status
}

// Stats returns counters describing the engine state. The health score degrades by
// 0.1 per active alert, floored at zero.
func (e *monitorEngine) Stats() common.EngineStats {
	numActive := e.alerts.ActiveCount()
	score := 1 - 0.1*float64(numActive)
	if score < 0 {
		score = 0
	}

	return common.EngineStats{
		NumMetrics:      e.registry.Len(),
		NumAlerts:       e.alerts.Count(),
		NumActiveAlerts: numActive,
		HealthScore:     score,
	}
}

// Process runs one collection and evaluation tick: every collector is polled for
// new samples, then all registered metrics are evaluated. A failing collector or a
// rejected sample is logged and does not stop the tick.
func (e *monitorEngine) Process(ctx context.Context) {
	log.Debug("waking up to collect samples", "collectors", len(e.collectors))

	for _, collector := range e.collectors {
		samples, err := collector.Collect(ctx)
		if err != nil {
			log.Warn("collector failed", "name", collector.Name(), "error", err)
			continue
		}

		for _, sample := range samples {
			err = e.Record(sample.Metric, sample.Value, sample.Labels, sample.Timestamp)
			if err != nil {
				log.Warn("failed to record collected sample",
					"collector", collector.Name(), "metric", sample.Metric, "error", err)
			}
		}
	}

	e.alerts.EvaluateAll()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *monitorEngine) IsInterfaceNil() bool {
	return e == nil
}
