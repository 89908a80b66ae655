package alerts

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/events"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("alerts")

const keySeparator = "-"

// alertEngine evaluates the latest sample of each metric against its thresholds and
// keeps one logical alert per (metric, severity) key. At most one unresolved alert
// exists per key at any time.
type alertEngine struct {
	registry Registry
	store    Store
	notifier events.Notifier
	mut      sync.RWMutex
	alerts   map[string]common.Alert
}

// NewAlertEngine creates a new alert engine instance
func NewAlertEngine(registry Registry, store Store, notifier events.Notifier) (*alertEngine, error) {
	if check.IfNil(registry) {
		return nil, errors.New("nil registry")
	}
	if check.IfNil(store) {
		return nil, errors.New("nil store")
	}
	if check.IfNil(notifier) {
		return nil, errors.New("nil notifier")
	}

	return &alertEngine{
		registry: registry,
		store:    store,
		notifier: notifier,
		alerts:   make(map[string]common.Alert),
	}, nil
}

func alertKey(metric string, severity common.AlertSeverity) string {
	return metric + keySeparator + string(severity)
}

// EvaluateAll evaluates every registered metric in registration order. Evaluation
// errors are logged and do not stop the cycle.
func (e *alertEngine) EvaluateAll() {
	for _, name := range e.registry.Names() {
		err := e.Evaluate(name)
		if err != nil {
			log.Warn("metric evaluation failed", "metric", name, "error", err)
		}
	}
}

// Evaluate runs one evaluation cycle for a single metric using only its latest
// sample. A metric with no samples is skipped. The bands are exclusive: a value at
// or above the critical threshold opens only the critical key in this cycle.
func (e *alertEngine) Evaluate(name string) error {
	def, err := e.registry.Get(name)
	if err != nil {
		return err
	}

	sample, err := e.store.Latest(name)
	if errors.Is(err, common.ErrNoSamples) {
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now()

	e.mut.Lock()
	var triggered []common.Alert
	var resolved []common.Alert
	switch {
	case sample.Value >= def.Thresholds.Critical:
		triggered = e.ensureOpen(name, common.SeverityCritical, sample.Value, def.Thresholds.Critical, now)
	case sample.Value >= def.Thresholds.Warning:
		triggered = e.ensureOpen(name, common.SeverityWarning, sample.Value, def.Thresholds.Warning, now)
	default:
		resolved = append(resolved, e.resolve(name, common.SeverityWarning, now)...)
		resolved = append(resolved, e.resolve(name, common.SeverityCritical, now)...)
	}
	e.mut.Unlock()

	// events are emitted outside the state lock, exactly once per transition;
	// concurrent evaluation cycles may deliver their events to the notifier in
	// a different order than the transitions were applied
	for _, alert := range triggered {
		e.notifier.AlertTriggered(alert)
	}
	for _, alert := range resolved {
		e.notifier.AlertResolved(alert)
	}

	return nil
}

// ensureOpen creates an open alert for the key unless one is already unresolved.
// A breach while the key is open is a no-op: neither the value nor the timestamp
// of the existing alert is updated. Must be called under the mutex.
func (e *alertEngine) ensureOpen(metric string, severity common.AlertSeverity, value float64, threshold float64, now time.Time) []common.Alert {
	key := alertKey(metric, severity)

	existing, exists := e.alerts[key]
	if exists && !existing.Resolved {
		return nil
	}

	alert := common.Alert{
		ID:        key,
		Metric:    metric,
		Severity:  severity,
		Value:     value,
		Threshold: threshold,
		Timestamp: now,
	}
	e.alerts[key] = alert

	return []common.Alert{alert}
}

// resolve marks the alert of the key as resolved if one is open. Resolving an
// already-resolved key is a no-op. Must be called under the mutex.
func (e *alertEngine) resolve(metric string, severity common.AlertSeverity, now time.Time) []common.Alert {
	key := alertKey(metric, severity)

	alert, exists := e.alerts[key]
	if !exists || alert.Resolved {
		return nil
	}

	resolvedAt := now
	alert.Resolved = true
	alert.ResolvedAt = &resolvedAt
	e.alerts[key] = alert

	return []common.Alert{alert}
}

// Alerts returns a copy of the tracked alerts ordered by trigger time then key.
// With includeResolved set to false only unresolved alerts are returned.
func (e *alertEngine) Alerts(includeResolved bool) []common.Alert {
	e.mut.RLock()
	result := make([]common.Alert, 0, len(e.alerts))
	for _, alert := range e.alerts {
		if !includeResolved && alert.Resolved {
			continue
		}
		result = append(result, alert)
	}
	e.mut.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.Before(result[j].Timestamp)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns the tracked alert for the provided metric and severity
func (e *alertEngine) Get(metric string, severity common.AlertSeverity) (common.Alert, error) {
	e.mut.RLock()
	defer e.mut.RUnlock()

	alert, exists := e.alerts[alertKey(metric, severity)]
	if !exists {
		return common.Alert{}, fmt.Errorf("no alert tracked for key %s", alertKey(metric, severity))
	}

	return alert, nil
}

// Count returns the total number of tracked alerts, resolved included
func (e *alertEngine) Count() int {
	e.mut.RLock()
	defer e.mut.RUnlock()

	return len(e.alerts)
}

// ActiveCount returns the number of unresolved alerts
func (e *alertEngine) ActiveCount() int {
	e.mut.RLock()
	defer e.mut.RUnlock()

	count := 0
	for _, alert := range e.alerts {
		if !alert.Resolved {
			count++
		}
	}

	return count
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *alertEngine) IsInterfaceNil() bool {
	return e == nil
}
