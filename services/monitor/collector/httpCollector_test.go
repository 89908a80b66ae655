package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/config"
	"github.com/stretchr/testify/require"
)

func TestHTTPCollector_Collect(t *testing.T) {
	// 1. Endpoint answering with the expected numeric JSON path
	successServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"status": {"response_ms": 123.5}}}`))
	}))
	defer successServer.Close()

	// 2. Endpoint missing the path
	missingPathServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"other": 1}}`))
	}))
	defer missingPathServer.Close()

	// 3. Endpoint answering with a non-numeric value
	nonNumericServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"status": {"response_ms": "fast"}}}`))
	}))
	defer nonNumericServer.Close()

	// 4. Timeout endpoint
	timeoutServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer timeoutServer.Close()

	endpoints := []config.EndpointConfig{
		{Metric: "response_time", URL: successServer.URL, Value: "data.status.response_ms"},
		{Metric: "m2", URL: missingPathServer.URL, Value: "data.status.response_ms"},
		{Metric: "m3", URL: nonNumericServer.URL, Value: "data.status.response_ms"},
		{Metric: "m4", URL: timeoutServer.URL, Value: "data.status.response_ms"},
		{Metric: "m5", URL: "http://localhost:59999", Value: "response_ms"}, // connection refused
	}

	// 1s timeout to trip the slow endpoint
	c := NewHTTPCollector(endpoints, time.Second)
	require.False(t, c.IsInterfaceNil())
	require.Equal(t, "http", c.Name())

	samples, err := c.Collect(context.Background())
	require.NoError(t, err)

	// only the first endpoint yields a sample
	require.Len(t, samples, 1)
	require.Equal(t, "response_time", samples[0].Metric)
	require.Equal(t, 123.5, samples[0].Value)
	require.Equal(t, successServer.URL, samples[0].Labels["url"])
	require.False(t, samples[0].Timestamp.IsZero())
}

func TestHTTPCollector_CollectNoEndpoints(t *testing.T) {
	t.Parallel()

	c := NewHTTPCollector(nil, time.Second)

	samples, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Empty(t, samples)
}
