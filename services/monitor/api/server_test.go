package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/alerts"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/engine"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/events"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/health"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/journal"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/registry"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/store"
	"github.com/stretchr/testify/require"
)

// fullEngine exposes the registration operations on top of the served ones
type fullEngine interface {
	Engine
	RegisterMetric(def common.MetricDefinition) error
	AddHealthCheck(name string, probe health.Probe) error
}

func setupTestServer(t *testing.T) (*server, fullEngine, func()) {
	j, err := journal.NewSQLiteJournal(":memory:", 3600)
	require.NoError(t, err)

	notifier, err := events.NewMultiNotifier(events.NewLogNotifier(), j)
	require.NoError(t, err)

	reg := registry.NewMetricRegistry()
	st := store.NewSampleStore()
	alertEngine, err := alerts.NewAlertEngine(reg, st, notifier)
	require.NoError(t, err)

	eng, err := engine.NewMonitorEngine(engine.ArgsMonitorEngine{
		Registry: reg,
		Store:    st,
		Alerts:   alertEngine,
		Health:   health.NewHealthAggregator(),
		Notifier: notifier,
	})
	require.NoError(t, err)

	require.NoError(t, eng.RegisterMetric(common.MetricDefinition{
		Name:       "response_time",
		Kind:       common.KindGauge,
		Unit:       "ms",
		Thresholds: common.Thresholds{Warning: 100, Critical: 500},
	}))

	args := ArgsWebServer{
		ServiceKeyApi:  "test-secret",
		ListenAddress:  ":0",
		Engine:         eng,
		Journal:        j,
		GeneralHandler: func(h http.Handler) http.Handler { return h },
	}

	serv, err := NewServer(args)
	require.NoError(t, err)

	return serv, eng, func() {
		_ = j.Close()
	}
}

func reportBody(metric string, value float64) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"samples": []map[string]interface{}{
			{"metric": metric, "value": value},
		},
	})
	return body
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("nil engine should error", func(t *testing.T) {
		serv, err := NewServer(ArgsWebServer{
			GeneralHandler: func(h http.Handler) http.Handler { return h },
		})

		require.Nil(t, serv)
		require.Error(t, err)
		require.Contains(t, err.Error(), "nil engine")
	})
	t.Run("nil http handler should error", func(t *testing.T) {
		_, eng, closeComponents := setupTestServer(t)
		defer closeComponents()

		j, err := journal.NewSQLiteJournal(":memory:", 3600)
		require.NoError(t, err)
		defer func() {
			_ = j.Close()
		}()

		serv, err := NewServer(ArgsWebServer{Engine: eng, Journal: j})

		require.Nil(t, serv)
		require.Error(t, err)
		require.Contains(t, err.Error(), "nil http handler")
	})
}

func TestReportEndpoint(t *testing.T) {
	serv, eng, closeComponents := setupTestServer(t)
	defer closeComponents()

	body := reportBody("response_time", 42)

	// Unauthenticated
	req, _ := http.NewRequest("POST", "/api/report", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated
	req, _ = http.NewRequest("POST", "/api/report", bytes.NewBuffer(body))
	req.Header.Set("X-Api-Key", "test-secret")
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// The sample reached the engine
	latest, err := eng.Latest("response_time")
	require.NoError(t, err)
	require.Equal(t, float64(42), latest.Value)
}

func TestEvaluateAndAlertsEndpoints(t *testing.T) {
	serv, _, closeComponents := setupTestServer(t)
	defer closeComponents()

	// report a critical value then evaluate
	req, _ := http.NewRequest("POST", "/api/report", bytes.NewBuffer(reportBody("response_time", 600)))
	req.Header.Set("X-Api-Key", "test-secret")
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/api/evaluate", nil)
	req.Header.Set("X-Api-Key", "test-secret")
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/alerts", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var alertsResp struct {
		Alerts []common.Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alertsResp))
	require.Len(t, alertsResp.Alerts, 1)
	require.Equal(t, "response_time-critical", alertsResp.Alerts[0].ID)

	// the triggered transition was journaled and is queryable
	req, _ = http.NewRequest("GET", "/api/metrics/response_time/transitions", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var transitionsResp struct {
		Transitions []common.AlertTransition `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &transitionsResp))
	require.Len(t, transitionsResp.Transitions, 1)
	require.Equal(t, journal.TransitionTriggered, transitionsResp.Transitions[0].Transition)
}

func TestMetricsAndHistoryEndpoints(t *testing.T) {
	serv, eng, closeComponents := setupTestServer(t)
	defer closeComponents()

	// no data yet: the metric is omitted from the listing
	req, _ := http.NewRequest("GET", "/api/metrics", nil)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"metrics":[]}`, w.Body.String())

	require.NoError(t, eng.Record("response_time", 10, nil, time.Time{}))
	require.NoError(t, eng.Record("response_time", 20, nil, time.Time{}))

	req, _ = http.NewRequest("GET", "/api/metrics", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var metricsResp struct {
		Metrics []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metricsResp))
	require.Len(t, metricsResp.Metrics, 1)
	require.Equal(t, "response_time", metricsResp.Metrics[0].Name)
	require.Equal(t, float64(20), metricsResp.Metrics[0].Value)

	req, _ = http.NewRequest("GET", "/api/metrics/response_time/history?limit=1", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var historyResp struct {
		History []common.Sample `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &historyResp))
	require.Len(t, historyResp.History, 1)
	require.Equal(t, float64(20), historyResp.History[0].Value)

	req, _ = http.NewRequest("GET", "/api/metrics/never_registered/history", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndStatsEndpoints(t *testing.T) {
	serv, eng, closeComponents := setupTestServer(t)
	defer closeComponents()

	require.NoError(t, eng.AddHealthCheck("db", health.ProbeFunc(func(_ context.Context) (bool, error) {
		return true, nil
	})))
	require.NoError(t, eng.AddHealthCheck("cache", health.ProbeFunc(func(_ context.Context) (bool, error) {
		return false, nil
	})))

	req, _ := http.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var healthResp common.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &healthResp))
	require.Equal(t, common.StatusCritical, healthResp.Overall)
	require.Equal(t, common.StatusHealthy, healthResp.Components["db"].Status)
	require.Equal(t, common.StatusCritical, healthResp.Components["cache"].Status)

	req, _ = http.NewRequest("GET", "/api/stats", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var statsResp common.EngineStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statsResp))
	require.Equal(t, 1, statsResp.NumMetrics)
	require.Equal(t, float64(1), statsResp.HealthScore)
}

func TestServerStartAndClose(t *testing.T) {
	serv, _, closeComponents := setupTestServer(t)
	defer closeComponents()

	serv.Start()
	require.NotEmpty(t, serv.Address())

	resp, err := http.Get("http://" + serv.Address() + "/api/stats")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, serv.Close())
}
