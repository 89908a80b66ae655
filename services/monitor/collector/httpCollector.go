package collector

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/config"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("collector")

// httpCollector polls configured HTTP endpoints concurrently and extracts a
// numeric value from each JSON response. Failing endpoints are logged and omitted
// from the collected samples.
type httpCollector struct {
	client    *http.Client
	endpoints []config.EndpointConfig
}

// NewHTTPCollector creates a new HTTP-based sample collector
func NewHTTPCollector(endpoints []config.EndpointConfig, timeout time.Duration) *httpCollector {
	return &httpCollector{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoints: endpoints,
	}
}

// Name identifies the collector in logs
func (c *httpCollector) Name() string {
	return "http"
}

// Collect performs concurrent HTTP GETs to all configured endpoints and returns
// one sample per endpoint that answered with the expected JSON path
func (c *httpCollector) Collect(ctx context.Context) ([]common.Sample, error) {
	samples := make([]common.Sample, 0, len(c.endpoints))
	var mut sync.Mutex
	var wg sync.WaitGroup

	wg.Add(len(c.endpoints))
	for _, ep := range c.endpoints {
		go func(endpoint config.EndpointConfig) {
			defer wg.Done()

			value, err := c.pollEndpoint(ctx, endpoint)
			if err != nil {
				log.Warn("endpoint poll failed", "metric", endpoint.Metric, "url", endpoint.URL, "error", err)
				return
			}

			mut.Lock()
			samples = append(samples, common.Sample{
				Metric:    endpoint.Metric,
				Value:     value,
				Timestamp: time.Now(),
				Labels:    map[string]string{"url": endpoint.URL},
			})
			mut.Unlock()
		}(ep)
	}

	wg.Wait()
	return samples, nil
}

func (c *httpCollector) pollEndpoint(ctx context.Context, ep config.EndpointConfig) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errStatusNotOK(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	result := gjson.GetBytes(body, ep.Value)
	if !result.Exists() {
		return 0, errPathNotFound(ep.Value)
	}

	value, err := strconv.ParseFloat(result.String(), 64)
	if err != nil {
		return 0, errNotNumeric(result.String())
	}

	return value, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *httpCollector) IsInterfaceNil() bool {
	return c == nil
}
