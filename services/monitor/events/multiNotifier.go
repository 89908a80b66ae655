package events

import (
	"fmt"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

// multiNotifier fans every event out to all inner notifiers
type multiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that forwards events to all provided notifiers
func NewMultiNotifier(notifiers ...Notifier) (*multiNotifier, error) {
	for idx, n := range notifiers {
		if check.IfNil(n) {
			return nil, fmt.Errorf("nil notifier at index %d", idx)
		}
	}

	return &multiNotifier{
		notifiers: notifiers,
	}, nil
}

// MetricUpdated forwards the event to all inner notifiers
func (m *multiNotifier) MetricUpdated(metric string, value float64, timestamp time.Time) {
	for _, n := range m.notifiers {
		n.MetricUpdated(metric, value, timestamp)
	}
}

// AlertTriggered forwards the event to all inner notifiers
func (m *multiNotifier) AlertTriggered(alert common.Alert) {
	for _, n := range m.notifiers {
		n.AlertTriggered(alert)
	}
}

// AlertResolved forwards the event to all inner notifiers
func (m *multiNotifier) AlertResolved(alert common.Alert) {
	for _, n := range m.notifiers {
		n.AlertResolved(alert)
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (m *multiNotifier) IsInterfaceNil() bool {
	return m == nil
}
