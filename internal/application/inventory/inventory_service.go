package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/barcode"
	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/partner"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/erp/inventory/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const spanService = "inventory"

// SupplierFinder looks suppliers up for lead times
type SupplierFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error)
}

// ServiceConfig carries the tables and limits the service injects into the domain
type ServiceConfig struct {
	Rules    inventory.RulesConfig
	Prefixes inventory.NumberPrefixes
	// ReorderWindowDays is the usage window the reorder point averages over
	ReorderWindowDays int
	// ReorderSafetyFactor scales usage x lead time
	ReorderSafetyFactor decimal.Decimal
	// IdempotencyTTL is how long a bulk Idempotency-Key is remembered
	IdempotencyTTL time.Duration
}

// DefaultServiceConfig returns the standard configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Rules:               inventory.DefaultRulesConfig(),
		Prefixes:            inventory.DefaultNumberPrefixes(),
		ReorderWindowDays:   90,
		ReorderSafetyFactor: decimal.NewFromFloat(1.2),
		IdempotencyTTL:      24 * time.Hour,
	}
}

// InventoryService is the consistency engine's entry point: it validates,
// records and processes transactions and guards item writes with version tags.
type InventoryService struct {
	items        inventory.InventoryItemRepository
	transactions inventory.InventoryTransactionRepository
	locations    inventory.LocationFinder
	suppliers    SupplierFinder
	scope        TransactionScope
	config       ServiceConfig

	sequence       SequenceSource
	codec          *barcode.Codec
	clock          shared.Clock
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	metrics        *telemetry.InventoryMetrics
	logger         *zap.Logger
}

// NewInventoryService creates a new InventoryService.
// Numbers come from the database sequence until SetSequenceSource replaces it.
func NewInventoryService(
	items inventory.InventoryItemRepository,
	transactions inventory.InventoryTransactionRepository,
	locations inventory.LocationFinder,
	suppliers SupplierFinder,
	scope TransactionScope,
	config ServiceConfig,
) *InventoryService {
	if config.Prefixes == nil {
		config.Prefixes = inventory.DefaultNumberPrefixes()
	}
	if config.ReorderWindowDays <= 0 {
		config.ReorderWindowDays = 90
	}
	if scope == nil {
		scope = NewNoOpTransactionScope(items, transactions)
	}
	return &InventoryService{
		items:        items,
		transactions: transactions,
		locations:    locations,
		suppliers:    suppliers,
		scope:        scope,
		config:       config,
		sequence:     NewDatabaseSequence(transactions),
		codec:        barcode.NewDefaultCodec(),
		clock:        shared.SystemClock{},
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetInventoryMetrics sets the business metrics recorder (optional)
func (s *InventoryService) SetInventoryMetrics(metrics *telemetry.InventoryMetrics) {
	s.metrics = metrics
}

// SetSequenceSource replaces the transaction-number sequence source
func (s *InventoryService) SetSequenceSource(sequence SequenceSource) {
	s.sequence = sequence
}

// SetIdempotencyStore enables Idempotency-Key handling for bulk submissions
func (s *InventoryService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetClock sets the clock used for timestamps and transaction numbers
func (s *InventoryService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// SetLogger sets the logger
func (s *InventoryService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// rules builds the validator over the given item reader so that lookups made
// inside a transaction scope see that scope's state
func (s *InventoryService) rules(items inventory.ItemReader) *inventory.TransactionRules {
	return inventory.NewTransactionRules(items, s.locations, s.config.Rules)
}

// GenerateTransactionNumber returns the next number for the type on today's UTC date
func (s *InventoryService) GenerateTransactionNumber(ctx context.Context, txType inventory.TransactionType) (string, error) {
	prefix := s.config.Prefixes.PrefixFor(txType)
	day := s.clock.Now().UTC()
	seq, err := s.sequence.Next(ctx, prefix, day)
	if err != nil {
		return "", err
	}
	return inventory.FormatTransactionNumber(prefix, day, seq), nil
}

type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishDomainEvents publishes and clears the events of every aggregate once the
// write has been committed; publication failures are logged, not returned
func (s *InventoryService) publishDomainEvents(ctx context.Context, sources ...eventSource) {
	var events []shared.DomainEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// observeFailure logs err once and feeds the violation and conflict counters.
// Rule violations are expected outcomes and log at Info.
func (s *InventoryService) observeFailure(ctx context.Context, operation string, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	fields = append(fields, zap.String("operation", operation), zap.Error(err))
	log := logger.WithLogger(ctx, s.logger)
	domainErr, ok := shared.AsDomainError(err)
	switch {
	case ok && domainErr.Code == shared.CodeConcurrencyConflict:
		s.metrics.RecordConflict(ctx)
		log.Info("concurrency conflict", fields...)
	case ok:
		s.metrics.RecordViolation(ctx, domainErr.Code)
		log.Info("request rejected", append(fields, zap.String("code", domainErr.Code))...)
	default:
		log.Error("inventory operation failed", fields...)
	}
}
