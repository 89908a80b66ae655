package collector

import (
	"context"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// systemCollector samples local CPU and memory usage percentages. An empty metric
// name disables the corresponding sampler.
type systemCollector struct {
	cpuMetric    string
	memoryMetric string
}

// NewSystemCollector creates a collector feeding the provided metrics with local
// system measurements
func NewSystemCollector(cpuMetric string, memoryMetric string) *systemCollector {
	return &systemCollector{
		cpuMetric:    cpuMetric,
		memoryMetric: memoryMetric,
	}
}

// Name identifies the collector in logs
func (c *systemCollector) Name() string {
	return "system"
}

// Collect gathers the current CPU and memory usage. A failing sampler is logged
// and its sample omitted, the other one is still returned.
func (c *systemCollector) Collect(ctx context.Context) ([]common.Sample, error) {
	samples := make([]common.Sample, 0, 2)
	now := time.Now()

	if len(c.cpuMetric) > 0 {
		percentages, err := cpu.PercentWithContext(ctx, 0, false)
		if err != nil {
			log.Warn("failed to sample cpu usage", "error", err)
		} else if len(percentages) > 0 {
			samples = append(samples, common.Sample{
				Metric:    c.cpuMetric,
				Value:     percentages[0],
				Timestamp: now,
				Labels:    map[string]string{"source": "system"},
			})
		}
	}

	if len(c.memoryMetric) > 0 {
		vmStat, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			log.Warn("failed to sample memory usage", "error", err)
		} else {
			samples = append(samples, common.Sample{
				Metric:    c.memoryMetric,
				Value:     vmStat.UsedPercent,
				Timestamp: now,
				Labels:    map[string]string{"source": "system"},
			})
		}
	}

	return samples, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *systemCollector) IsInterfaceNil() bool {
	return c == nil
}
