package common

import "time"

// MetricKind documents the intended aggregation semantics of a metric. The engine
// stores all kinds the same way; the kind is carried for downstream consumers.
type MetricKind string

const (
	// KindCounter is a monotonically increasing value
	KindCounter MetricKind = "counter"
	// KindGauge is a value that can go up and down
	KindGauge MetricKind = "gauge"
	// KindHistogram is a distribution of observed values
	KindHistogram MetricKind = "histogram"
	// KindSummary is a client-side computed distribution
	KindSummary MetricKind = "summary"
)

// Thresholds holds the alerting limits of a metric
type Thresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// MetricDefinition describes one registered metric
type MetricDefinition struct {
	Name       string     `json:"name"`
	Kind       MetricKind `json:"kind"`
	Unit       string     `json:"unit"`
	Thresholds Thresholds `json:"thresholds"`
}

// Sample is one recorded value of a metric at a point in time
type Sample struct {
	Metric    string            `json:"metric"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// AlertSeverity is the severity band of a threshold breach
type AlertSeverity string

const (
	// SeverityWarning marks a value at or above the warning threshold
	SeverityWarning AlertSeverity = "warning"
	// SeverityCritical marks a value at or above the critical threshold
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a stateful record of a threshold breach for one (metric, severity) pair
type Alert struct {
	ID         string        `json:"id"`
	Metric     string        `json:"metric"`
	Severity   AlertSeverity `json:"severity"`
	Value      float64       `json:"value"`
	Threshold  float64       `json:"threshold"`
	Timestamp  time.Time     `json:"timestamp"`
	Resolved   bool          `json:"resolved"`
	ResolvedAt *time.Time    `json:"resolvedAt,omitempty"`
}

// HealthState is the status of one component or of the whole engine
type HealthState string

const (
	// StatusHealthy means the component works as expected
	StatusHealthy HealthState = "healthy"
	// StatusWarning means the component is degraded but functional
	StatusWarning HealthState = "warning"
	// StatusCritical means the component does not work
	StatusCritical HealthState = "critical"
	// StatusUnknown means the component status could not be determined
	StatusUnknown HealthState = "unknown"
)

// HealthCheckResult is the outcome of one health probe execution
type HealthCheckResult struct {
	Status    HealthState `json:"status"`
	LastCheck time.Time   `json:"lastCheck"`
	Message   string      `json:"message,omitempty"`
}

// HealthStatus is the aggregated health of all registered checks
type HealthStatus struct {
	Overall    HealthState                  `json:"overall"`
	Components map[string]HealthCheckResult `json:"components"`
	Uptime     time.Duration                `json:"uptime"`
	LastUpdate time.Time                    `json:"lastUpdate"`
}

// EngineStats holds counters describing the engine state
type EngineStats struct {
	NumMetrics      int     `json:"numMetrics"`
	NumAlerts       int     `json:"numAlerts"`
	NumActiveAlerts int     `json:"numActiveAlerts"`
	HealthScore     float64 `json:"healthScore"`
}

// AlertTransition is one journaled alert lifecycle event
type AlertTransition struct {
	AlertKey   string  `json:"alertKey"`
	Metric     string  `json:"metric"`
	Severity   string  `json:"severity"`
	Transition string  `json:"transition"`
	Value      float64 `json:"value"`
	Threshold  float64 `json:"threshold"`
	OccurredAt int64   `json:"occurredAt"`
}
