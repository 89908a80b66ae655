package testsCommon

import (
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
)

// NotifierStub -
type NotifierStub struct {
	MetricUpdatedHandler  func(metric string, value float64, timestamp time.Time)
	AlertTriggeredHandler func(alert common.Alert)
	AlertResolvedHandler  func(alert common.Alert)
}

// MetricUpdated -
func (stub *NotifierStub) MetricUpdated(metric string, value float64, timestamp time.Time) {
	if stub.MetricUpdatedHandler != nil {
		stub.MetricUpdatedHandler(metric, value, timestamp)
	}
}

// AlertTriggered -
func (stub *NotifierStub) AlertTriggered(alert common.Alert) {
	if stub.AlertTriggeredHandler != nil {
		stub.AlertTriggeredHandler(alert)
	}
}

// AlertResolved -
func (stub *NotifierStub) AlertResolved(alert common.Alert) {
	if stub.AlertResolvedHandler != nil {
		stub.AlertResolvedHandler(alert)
	}
}

// IsInterfaceNil -
func (stub *NotifierStub) IsInterfaceNil() bool {
	return stub == nil
}
