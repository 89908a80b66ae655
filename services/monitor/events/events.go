package events

import (
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
)

// Notifier is the event boundary of the engine. Each state transition produces
// exactly one call: implementations bridge to whatever bus, log sink or journal
// the embedding system provides.
type Notifier interface {
	// MetricUpdated is called once for every recorded sample
	MetricUpdated(metric string, value float64, timestamp time.Time)

	// AlertTriggered is called once when a new alert is opened
	AlertTriggered(alert common.Alert)

	// AlertResolved is called once when an open alert transitions to resolved
	AlertResolved(alert common.Alert)

	IsInterfaceNil() bool
}
