package journal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteJournal_InvalidRetention(t *testing.T) {
	t.Parallel()

	j, err := NewSQLiteJournal(":memory:", 0)
	require.Nil(t, j)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid retention interval")
}

func resolvedAlert(metric string, severity common.AlertSeverity, resolvedAt time.Time) common.Alert {
	return common.Alert{
		ID:         metric + "-" + string(severity),
		Metric:     metric,
		Severity:   severity,
		Resolved:   true,
		ResolvedAt: &resolvedAt,
	}
}

func TestSQLiteJournal_SaveAndGet(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:", 3600)
	require.NoError(t, err)
	require.False(t, j.IsInterfaceNil())
	defer func() {
		_ = j.Close()
	}()

	now := time.Now()

	j.AlertTriggered(common.Alert{
		ID:        "response_time-warning",
		Metric:    "response_time",
		Severity:  common.SeverityWarning,
		Value:     150,
		Threshold: 100,
		Timestamp: now.Add(-10 * time.Second),
	})
	j.AlertTriggered(common.Alert{
		ID:        "response_time-critical",
		Metric:    "response_time",
		Severity:  common.SeverityCritical,
		Value:     600,
		Threshold: 500,
		Timestamp: now.Add(-5 * time.Second),
	})
	j.AlertResolved(resolvedAlert("response_time", common.SeverityWarning, now))

	// a different metric should not show up in the query below
	j.AlertTriggered(common.Alert{
		ID:       "error_rate-warning",
		Metric:   "error_rate",
		Severity: common.SeverityWarning,
	})

	ctx := context.Background()
	transitions, err := j.GetTransitions(ctx, "response_time", 0)
	require.NoError(t, err)
	require.Len(t, transitions, 3)

	require.Equal(t, TransitionTriggered, transitions[0].Transition)
	require.Equal(t, "response_time-warning", transitions[0].AlertKey)
	require.Equal(t, float64(150), transitions[0].Value)
	require.Equal(t, float64(100), transitions[0].Threshold)

	require.Equal(t, TransitionTriggered, transitions[1].Transition)
	require.Equal(t, "response_time-critical", transitions[1].AlertKey)

	require.Equal(t, TransitionResolved, transitions[2].Transition)
	require.Equal(t, now.Unix(), transitions[2].OccurredAt)

	// limit keeps the most recent entries
	transitions, err = j.GetTransitions(ctx, "response_time", 1)
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	require.Equal(t, TransitionResolved, transitions[0].Transition)
}

func TestSQLiteJournal_RetentionCleaner(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:", 3)
	require.NoError(t, err)
	defer func() {
		_ = j.Close()
	}()

	// insert a stale transition (older than the 3 seconds retention)
	staleTime := time.Now().Add(-10 * time.Second)
	j.AlertTriggered(common.Alert{
		ID:        "old_metric-warning",
		Metric:    "old_metric",
		Severity:  common.SeverityWarning,
		Timestamp: staleTime,
	})

	// call the synchronous cleaner instead of waiting for the ticker
	err = j.cleanRetainedEvents(context.Background())
	require.NoError(t, err)

	transitions, err := j.GetTransitions(context.Background(), "old_metric", 0)
	require.NoError(t, err)
	require.Empty(t, transitions)
}

func TestSQLiteJournal_Ping(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:", 3600)
	require.NoError(t, err)

	ok, err := j.Ping(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_ = j.Close()
}

func TestSQLiteJournal_ConcurrentAccess(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:", 3600)
	require.NoError(t, err)
	defer func() {
		_ = j.Close()
	}()

	// writers and readers racing must all land on the same in-memory database,
	// not on private per-connection ones
	numGoroutines := 10
	numEventsPerGoroutine := 20

	var wg sync.WaitGroup
	errCh := make(chan error, numGoroutines)

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			for k := 0; k < numEventsPerGoroutine; k++ {
				j.AlertTriggered(common.Alert{
					ID:        "response_time-warning",
					Metric:    "response_time",
					Severity:  common.SeverityWarning,
					Value:     150,
					Threshold: 100,
					Timestamp: time.Now(),
				})

				_, errGet := j.GetTransitions(context.Background(), "response_time", 0)
				if errGet != nil {
					errCh <- errGet
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for errGet := range errCh {
		require.NoError(t, errGet)
	}

	transitions, err := j.GetTransitions(context.Background(), "response_time", 0)
	require.NoError(t, err)
	require.Len(t, transitions, numGoroutines*numEventsPerGoroutine)
}

func TestSQLiteJournal_MetricUpdatedIsNotJournaled(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:", 3600)
	require.NoError(t, err)
	defer func() {
		_ = j.Close()
	}()

	j.MetricUpdated("response_time", 42, time.Now())

	transitions, err := j.GetTransitions(context.Background(), "response_time", 0)
	require.NoError(t, err)
	require.Empty(t, transitions)
}
