package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetrics records query counts, latency and connection pool state.
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowThreshold  time.Duration
	registration   metric.Registration
	logger         *zap.Logger
}

// NewDBMetrics creates the query instruments and, when sqlDB is non-nil,
// observable gauges over its pool statistics.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThreshold time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}

	m := &DBMetrics{slowThreshold: slowThreshold, logger: logger}
	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Database queries slower than the threshold", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}

	if sqlDB != nil {
		if err := m.observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, sqlDB *sql.DB) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		return nil
	}, conns, maxConns)
	if err != nil {
		return fmt.Errorf("failed to register pool callback: %w", err)
	}
	return nil
}

// Register installs query instrumentation callbacks on db.
func (m *DBMetrics) Register(db *gorm.DB) error {
	return registerAround(db, "metrics", markQueryStart, m.record)
}

// Stop unregisters the pool callback.
func (m *DBMetrics) Stop() {
	if m.registration != nil {
		if err := m.registration.Unregister(); err != nil {
			m.logger.Warn("Failed to unregister pool metrics", zap.Error(err))
		}
	}
}

func (m *DBMetrics) record(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	elapsed, ok := queryElapsed(ctx)
	if !ok {
		return
	}

	attrs := []attribute.KeyValue{
		AttrDBOperation.String(operationOf(db.Statement.SQL.String())),
		AttrDBTable.String(db.Statement.Table),
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		attrs = append(attrs, AttrOutcome.String("error"))
	} else {
		attrs = append(attrs, AttrOutcome.String("ok"))
	}

	m.queryTotal.Inc(ctx, attrs...)
	m.queryDuration.RecordDuration(ctx, elapsed, attrs...)
	if elapsed > m.slowThreshold {
		m.slowQueryTotal.Inc(ctx, attrs...)
	}
}

func operationOf(statement string) string {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return "other"
	}
	switch op := strings.ToLower(fields[0]); op {
	case "select", "insert", "update", "delete":
		return op
	default:
		return "other"
	}
}
