package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// MetricConfig defines one metric registered at startup
type MetricConfig struct {
	Name              string  `toml:"Name"`
	Kind              string  `toml:"Kind"`
	Unit              string  `toml:"Unit"`
	WarningThreshold  float64 `toml:"WarningThreshold"`
	CriticalThreshold float64 `toml:"CriticalThreshold"`
}

// EndpointConfig defines one HTTP endpoint polled for a metric value. Value holds
// the JSON sub-path extracted from the response body.
type EndpointConfig struct {
	Metric string `toml:"Metric"`
	URL    string `toml:"URL"`
	Value  string `toml:"Value"`
}

// SystemCollectorConfig wires the local system sampler to registered metrics.
// Empty metric names disable the corresponding sampler.
type SystemCollectorConfig struct {
	Enabled          bool   `toml:"Enabled"`
	CPUMetricName    string `toml:"CPUMetricName"`
	MemoryMetricName string `toml:"MemoryMetricName"`
}

// JournalConfig configures the alert transition journal
type JournalConfig struct {
	Path             string `toml:"Path"`
	RetentionSeconds int    `toml:"RetentionSeconds"`
}

// Config maps to the config.toml file for the monitor service
type Config struct {
	ListenAddress            string                `toml:"ListenAddress"`
	EvalIntervalInSeconds    uint32                `toml:"EvalIntervalInSeconds"`
	CollectTimeoutInSeconds  uint32                `toml:"CollectTimeoutInSeconds"`
	Metrics                  []MetricConfig        `toml:"Metrics"`
	Endpoints                []EndpointConfig      `toml:"Endpoints"`
	SystemCollector          SystemCollectorConfig `toml:"SystemCollector"`
	Journal                  JournalConfig         `toml:"Journal"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}
