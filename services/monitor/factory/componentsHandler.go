package factory

import (
	"fmt"
	"sync"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/alerts"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/api"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/collector"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/config"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/engine"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/events"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/health"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/journal"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/registry"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/scheduler"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/store"
)

const (
	defaultEvalIntervalInSeconds     = 30
	defaultCollectTimeoutInSeconds   = 10
	defaultJournalRetentionInSeconds = 86400 // 24h
	journalHealthCheckName           = "journal"
)

type componentsHandler struct {
	journal   Journal
	engine    Engine
	scheduler Scheduler
	server    Server
	mutStart  sync.Mutex
	started   bool
}

// NewComponentsHandler creates a new components handler, assembling and wiring all
// the monitoring service components
func NewComponentsHandler(
	serviceKeyApi string,
	cfg config.Config,
) (*componentsHandler, error) {
	retention := cfg.Journal.RetentionSeconds
	if retention == 0 {
		retention = defaultJournalRetentionInSeconds
	}

	j, err := journal.NewSQLiteJournal(cfg.Journal.Path, retention)
	if err != nil {
		return nil, err
	}

	notifier, err := events.NewMultiNotifier(events.NewLogNotifier(), j)
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	reg := registry.NewMetricRegistry()
	st := store.NewSampleStore()
	alertEngine, err := alerts.NewAlertEngine(reg, st, notifier)
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	eng, err := engine.NewMonitorEngine(engine.ArgsMonitorEngine{
		Registry:   reg,
		Store:      st,
		Alerts:     alertEngine,
		Health:     health.NewHealthAggregator(),
		Notifier:   notifier,
		Collectors: createCollectors(cfg),
	})
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	err = registerConfiguredMetrics(eng, cfg.Metrics)
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	err = eng.AddHealthCheck(journalHealthCheckName, health.ProbeFunc(j.Ping))
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	interval := cfg.EvalIntervalInSeconds
	if interval == 0 {
		interval = defaultEvalIntervalInSeconds
	}

	sched, err := scheduler.NewScheduler(eng.Process, time.Duration(interval)*time.Second)
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	server, err := api.NewServer(api.ArgsWebServer{
		ServiceKeyApi:  serviceKeyApi,
		ListenAddress:  cfg.ListenAddress,
		Engine:         eng,
		Journal:        j,
		GeneralHandler: api.CORSMiddleware,
	})
	if err != nil {
		_ = j.Close()
		return nil, err
	}

	return &componentsHandler{
		journal:   j,
		engine:    eng,
		scheduler: sched,
		server:    server,
	}, nil
}

func createCollectors(cfg config.Config) []engine.Collector {
	collectors := make([]engine.Collector, 0)

	if cfg.SystemCollector.Enabled {
		collectors = append(collectors, collector.NewSystemCollector(
			cfg.SystemCollector.CPUMetricName,
			cfg.SystemCollector.MemoryMetricName,
		))
	}

	if len(cfg.Endpoints) > 0 {
		timeout := cfg.CollectTimeoutInSeconds
		if timeout == 0 {
			timeout = defaultCollectTimeoutInSeconds
		}
		collectors = append(collectors, collector.NewHTTPCollector(
			cfg.Endpoints,
			time.Duration(timeout)*time.Second,
		))
	}

	return collectors
}

func registerConfiguredMetrics(eng Engine, metrics []config.MetricConfig) error {
	for _, m := range metrics {
		err := eng.RegisterMetric(common.MetricDefinition{
			Name: m.Name,
			Kind: common.MetricKind(m.Kind),
			Unit: m.Unit,
			Thresholds: common.Thresholds{
				Warning:  m.WarningThreshold,
				Critical: m.CriticalThreshold,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to register metric %s: %w", m.Name, err)
		}
	}

	return nil
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// GetScheduler returns the scheduler component
func (ch *componentsHandler) GetScheduler() Scheduler {
	return ch.scheduler
}

// GetJournal returns the journal component
func (ch *componentsHandler) GetJournal() Journal {
	return ch.journal
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.mutStart.Lock()
	defer ch.mutStart.Unlock()

	if ch.started {
		return
	}
	ch.started = true

	ch.scheduler.Start()
	ch.server.Start()
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.mutStart.Lock()
	defer ch.mutStart.Unlock()

	if !ch.started {
		_ = ch.journal.Close()
		return
	}
	ch.started = false

	_ = ch.scheduler.Close()
	_ = ch.server.Close()
	_ = ch.journal.Close()
}
