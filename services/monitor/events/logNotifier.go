package events

import (
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("events")

// logNotifier writes every engine event to the structured logger
type logNotifier struct {
}

// NewLogNotifier creates a notifier backed by the structured logger
func NewLogNotifier() *logNotifier {
	return &logNotifier{}
}

// MetricUpdated logs a recorded sample
func (n *logNotifier) MetricUpdated(metric string, value float64, timestamp time.Time) {
	log.Debug("metric updated", "metric", metric, "value", value, "timestamp", timestamp.Unix())
}

// AlertTriggered logs a newly opened alert
func (n *logNotifier) AlertTriggered(alert common.Alert) {
	log.Warn("alert triggered",
		"metric", alert.Metric,
		"severity", string(alert.Severity),
		"value", alert.Value,
		"threshold", alert.Threshold,
	)
}

// AlertResolved logs a resolved alert
func (n *logNotifier) AlertResolved(alert common.Alert) {
	log.Info("alert resolved",
		"metric", alert.Metric,
		"severity", string(alert.Severity),
	)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (n *logNotifier) IsInterfaceNil() bool {
	return n == nil
}
