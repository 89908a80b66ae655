package store

import (
	"fmt"
	"sync"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
)

// maxSamplesPerMetric bounds the memory used by each series. The cap is
// load-bearing: eviction is FIFO and insertion order equals recency.
const maxSamplesPerMetric = 1000

// sampleStore is the in-memory, capacity-bounded time series store
type sampleStore struct {
	mut    sync.RWMutex
	series map[string][]common.Sample
}

// NewSampleStore creates an empty sample store
func NewSampleStore() *sampleStore {
	return &sampleStore{
		series: make(map[string][]common.Sample),
	}
}

// InitSeries makes sure a series exists for the provided metric name. It is
// idempotent: re-initializing an existing series keeps its samples.
func (s *sampleStore) InitSeries(name string) {
	s.mut.Lock()
	defer s.mut.Unlock()

	_, exists := s.series[name]
	if !exists {
		s.series[name] = make([]common.Sample, 0)
	}
}

// Record appends a sample to its metric series, evicting the oldest entries when
// the series exceeds the cap. Recording against a never-registered metric fails.
func (s *sampleStore) Record(sample common.Sample) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	series, exists := s.series[sample.Metric]
	if !exists {
		return fmt.Errorf("%w: %s", common.ErrUnknownMetric, sample.Metric)
	}

	series = append(series, sample)
	if len(series) > maxSamplesPerMetric {
		trimmed := make([]common.Sample, maxSamplesPerMetric)
		copy(trimmed, series[len(series)-maxSamplesPerMetric:])
		series = trimmed
	}
	s.series[sample.Metric] = series

	return nil
}

// Latest returns the most recently appended sample of a metric
func (s *sampleStore) Latest(name string) (common.Sample, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	series, exists := s.series[name]
	if !exists {
		return common.Sample{}, fmt.Errorf("%w: %s", common.ErrUnknownMetric, name)
	}
	if len(series) == 0 {
		return common.Sample{}, fmt.Errorf("%w: %s", common.ErrNoSamples, name)
	}

	return series[len(series)-1], nil
}

// History returns a copy of the series in insertion order. A positive limit
// truncates the result to the most recent entries.
func (s *sampleStore) History(name string, limit int) ([]common.Sample, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	series, exists := s.series[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownMetric, name)
	}

	start := 0
	if limit > 0 && limit < len(series) {
		start = len(series) - limit
	}

	result := make([]common.Sample, len(series)-start)
	copy(result, series[start:])

	return result, nil
}

// Len returns the number of retained samples for a metric
func (s *sampleStore) Len(name string) int {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return len(s.series[name])
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sampleStore) IsInterfaceNil() bool {
	return s == nil
}
