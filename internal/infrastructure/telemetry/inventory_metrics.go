package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// InventoryMetrics counts engine outcomes and samples stock health.
// A nil *InventoryMetrics is valid and records nothing.
type InventoryMetrics struct {
	logger *zap.Logger

	recorded   *Counter
	processed  *Counter
	violations *Counter
	conflicts  *Counter
	bulkSize   *Histogram

	lowStockCount *Gauge
	reservedStock *Gauge

	provider StockHealthProvider
	stopCh   chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

// StockHealthProvider supplies aggregates for the periodic gauges.
type StockHealthProvider interface {
	// LowStockCount counts active items whose current stock is under their minimum
	LowStockCount(ctx context.Context) (int64, error)
	// ReservedByLocation sums reserved stock per location
	ReservedByLocation(ctx context.Context) (map[uuid.UUID]int64, error)
}

// InventoryMetricsConfig configures NewInventoryMetrics.
type InventoryMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider StockHealthProvider
}

// NewInventoryMetrics creates the engine instruments.
func NewInventoryMetrics(cfg InventoryMetricsConfig) (*InventoryMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &InventoryMetrics{logger: logger, provider: cfg.Provider, stopCh: make(chan struct{})}
	var err error
	if m.recorded, err = NewCounter(cfg.Meter, "inventory_transactions_recorded_total",
		"Transactions recorded, by type and entry mode", "{transactions}"); err != nil {
		return nil, err
	}
	if m.processed, err = NewCounter(cfg.Meter, "inventory_transactions_processed_total",
		"Workflow transactions processed, by type and outcome", "{transactions}"); err != nil {
		return nil, err
	}
	if m.violations, err = NewCounter(cfg.Meter, "inventory_rule_violations_total",
		"Rejected requests by violation code", "{violations}"); err != nil {
		return nil, err
	}
	if m.conflicts, err = NewCounter(cfg.Meter, "inventory_concurrency_conflicts_total",
		"Writes refused because the item changed underneath", "{conflicts}"); err != nil {
		return nil, err
	}
	if m.bulkSize, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "inventory_bulk_batch_size",
		Description: "Entries per bulk submission",
		Unit:        "{transactions}",
		Boundaries:  []float64{1, 5, 10, 25, 50, 100},
	}); err != nil {
		return nil, err
	}
	if m.lowStockCount, err = NewGauge(cfg.Meter, "inventory_low_stock_items",
		"Active items below their minimum stock", "{items}"); err != nil {
		return nil, err
	}
	if m.reservedStock, err = NewGauge(cfg.Meter, "inventory_reserved_stock",
		"Reserved units per location", "{units}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordTransaction counts a recorded transaction.
func (m *InventoryMetrics) RecordTransaction(ctx context.Context, txType, mode string) {
	if m == nil {
		return
	}
	m.recorded.Inc(ctx, AttrTransactionType.String(txType), AttrRecordMode.String(mode))
}

// RecordProcessed counts a processing outcome (completed or failed).
func (m *InventoryMetrics) RecordProcessed(ctx context.Context, txType, outcome string) {
	if m == nil {
		return
	}
	m.processed.Inc(ctx, AttrTransactionType.String(txType), AttrOutcome.String(outcome))
}

// RecordViolation counts a rejected request.
func (m *InventoryMetrics) RecordViolation(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.violations.Inc(ctx, AttrViolationCode.String(code))
}

// RecordConflict counts a failed compare-tag-and-write.
func (m *InventoryMetrics) RecordConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.conflicts.Inc(ctx)
}

// RecordBulk records the size of a bulk submission and whether it completed.
func (m *InventoryMetrics) RecordBulk(ctx context.Context, size int, outcome string) {
	if m == nil {
		return
	}
	m.bulkSize.Record(ctx, float64(size), AttrOutcome.String(outcome))
}

// StartPeriodicCollection samples the stock health gauges every interval until Stop or ctx ends.
func (m *InventoryMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if m == nil || m.provider == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	m.runOnce.Do(func() {
		go m.run(ctx, interval)
	})
}

func (m *InventoryMetrics) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.collect(ctx)
	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect(ctx)
		}
	}
}

func (m *InventoryMetrics) collect(ctx context.Context) {
	if count, err := m.provider.LowStockCount(ctx); err != nil {
		m.logger.Warn("Failed to sample low stock count", zap.Error(err))
	} else {
		m.lowStockCount.Record(ctx, count)
	}

	reserved, err := m.provider.ReservedByLocation(ctx)
	if err != nil {
		m.logger.Warn("Failed to sample reserved stock", zap.Error(err))
		return
	}
	for locationID, qty := range reserved {
		m.reservedStock.Record(ctx, qty, AttrLocationID.String(locationID.String()))
	}
}

// Stop ends periodic collection.
func (m *InventoryMetrics) Stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() { close(m.stopCh) })
}
