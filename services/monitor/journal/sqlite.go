package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("journal")

const (
	// TransitionTriggered marks a journaled alert opening
	TransitionTriggered = "triggered"
	// TransitionResolved marks a journaled alert resolution
	TransitionResolved = "resolved"
)

// sqliteJournal persists alert lifecycle transitions for post-mortem inspection.
// It implements the engine's event notifier: metric updates are high-frequency and
// already bounded in memory, so only alert transitions are journaled.
type sqliteJournal struct {
	db               *sql.DB
	retentionSeconds int
	cancelFunc       context.CancelFunc
	wg               sync.WaitGroup
}

// NewSQLiteJournal creates the database, schema, and starts the retention cleaner
func NewSQLiteJournal(dbPath string, retentionSeconds int) (*sqliteJournal, error) {
	if retentionSeconds <= 0 {
		return nil, errors.New("invalid retention interval")
	}

	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isInMemory(dbPath) {
		// every new pool connection to :memory: opens its own private database,
		// so the pool must reuse a single connection
		db.SetMaxOpenConns(1)
	}

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &sqliteJournal{
		db:               db,
		retentionSeconds: retentionSeconds,
		cancelFunc:       cancel,
	}

	j.startRetentionCleaner(ctx)

	return j, nil
}

func isInMemory(dbPath string) bool {
	return strings.HasPrefix(dbPath, ":memory:")
}

func prepareDirectories(dbPath string) error {
	if isInMemory(dbPath) {
		return nil
	}

	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS alert_events (
		alert_key   TEXT    NOT NULL,
		metric      TEXT    NOT NULL,
		severity    TEXT    NOT NULL,
		transition  TEXT    NOT NULL,
		value       REAL    NOT NULL,
		threshold   REAL    NOT NULL,
		occurred_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_alert_events_metric ON alert_events(metric);
	CREATE INDEX IF NOT EXISTS idx_alert_events_occurred_at ON alert_events(occurred_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// MetricUpdated is part of the notifier contract. Samples are bounded in memory by
// the store cap and are not journaled.
func (j *sqliteJournal) MetricUpdated(_ string, _ float64, _ time.Time) {
}

// AlertTriggered journals an alert opening
func (j *sqliteJournal) AlertTriggered(alert common.Alert) {
	j.saveTransition(alert, TransitionTriggered, alert.Timestamp)
}

// AlertResolved journals an alert resolution
func (j *sqliteJournal) AlertResolved(alert common.Alert) {
	occurredAt := time.Now()
	if alert.ResolvedAt != nil {
		occurredAt = *alert.ResolvedAt
	}

	j.saveTransition(alert, TransitionResolved, occurredAt)
}

func (j *sqliteJournal) saveTransition(alert common.Alert, transition string, occurredAt time.Time) {
	_, err := j.db.Exec(`
		INSERT INTO alert_events (alert_key, metric, severity, transition, value, threshold, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.Metric, string(alert.Severity), transition, alert.Value, alert.Threshold, occurredAt.Unix())
	if err != nil {
		log.Warn("failed to journal alert transition",
			"key", alert.ID, "transition", transition, "error", err)
	}
}

// GetTransitions returns the journaled transitions of a metric in chronological
// order, optionally truncated to the most recent limit entries
func (j *sqliteJournal) GetTransitions(ctx context.Context, metric string, limit int) ([]common.AlertTransition, error) {
	if limit <= 0 {
		limit = -1 // sqlite treats a negative LIMIT as no limit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT alert_key, metric, severity, transition, value, threshold, occurred_at
		FROM (
			SELECT alert_key, metric, severity, transition, value, threshold, occurred_at, rowid
			FROM alert_events
			WHERE metric = ?
			ORDER BY occurred_at DESC, rowid DESC
			LIMIT ?
		)
		ORDER BY occurred_at, rowid
	`, metric, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []common.AlertTransition
	for rows.Next() {
		var tr common.AlertTransition
		err = rows.Scan(&tr.AlertKey, &tr.Metric, &tr.Severity, &tr.Transition, &tr.Value, &tr.Threshold, &tr.OccurredAt)
		if err != nil {
			return nil, err
		}

		results = append(results, tr)
	}

	return results, rows.Err()
}

// Ping checks the database connection, usable as a health probe
func (j *sqliteJournal) Ping(ctx context.Context) (bool, error) {
	err := j.db.PingContext(ctx)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (j *sqliteJournal) cleanRetainedEvents(ctx context.Context) error {
	cutoff := time.Now().Unix() - int64(j.retentionSeconds)
	_, err := j.db.ExecContext(ctx, "DELETE FROM alert_events WHERE occurred_at < ?", cutoff)
	return err
}

func (j *sqliteJournal) startRetentionCleaner(ctx context.Context) {
	j.wg.Add(1)

	// max(RetentionSeconds/10, 60)
	intervalSec := j.retentionSeconds / 10
	if intervalSec < 60 {
		intervalSec = 60
	}

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer j.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Debug("running journal retention cleanup")

				err := j.cleanRetainedEvents(ctx)
				if err != nil {
					log.Warn("failed to cleanup retained alert events", "error", err)
				}
			}
		}
	}()
}

// Close closes the database and stops background routines
func (j *sqliteJournal) Close() error {
	j.cancelFunc()
	j.wg.Wait()
	return j.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (j *sqliteJournal) IsInterfaceNil() bool {
	return j == nil
}
