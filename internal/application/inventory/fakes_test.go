package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/domain/partner"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}

// memoryIdempotencyStore keeps claimed keys in a set and ignores TTLs
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newTestIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: make(map[string]struct{})}
}

func (m *memoryIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *memoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok, nil
}

func (m *memoryIdempotencyStore) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *memoryIdempotencyStore) Close() error { return nil }

// memoryItemRepository stores copies so that unsaved mutations never leak
type memoryItemRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]inventory.InventoryItem
	// beforeSave runs inside SaveIfTagMatches before the tag compare
	beforeSave func()
}

func newMemoryItemRepository() *memoryItemRepository {
	return &memoryItemRepository{items: make(map[uuid.UUID]inventory.InventoryItem)}
}

func (r *memoryItemRepository) put(item *inventory.InventoryItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *item
	stored.ClearDomainEvents()
	r.items[item.ID] = stored
}

func (r *memoryItemRepository) get(id uuid.UUID) *inventory.InventoryItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil
	}
	return &item
}

func (r *memoryItemRepository) find(match func(inventory.InventoryItem) bool) []inventory.InventoryItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.InventoryItem
	for _, item := range r.items {
		if match(item) {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PartNumber < result[j].PartNumber })
	return result
}

func (r *memoryItemRepository) first(match func(inventory.InventoryItem) bool) (*inventory.InventoryItem, error) {
	found := r.find(match)
	if len(found) == 0 {
		return nil, shared.ErrNotFound
	}
	return &found[0], nil
}

func (r *memoryItemRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	if item := r.get(id); item != nil {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryItemRepository) FindByBarcode(_ context.Context, code string) (*inventory.InventoryItem, error) {
	return r.first(func(i inventory.InventoryItem) bool { return i.Barcode == code })
}

func (r *memoryItemRepository) FindByPartNumber(_ context.Context, partNumber string) (*inventory.InventoryItem, error) {
	return r.first(func(i inventory.InventoryItem) bool { return i.PartNumber == partNumber })
}

func (r *memoryItemRepository) FindByLocation(_ context.Context, locationID uuid.UUID) ([]inventory.InventoryItem, error) {
	return r.find(func(i inventory.InventoryItem) bool { return i.LocationID == locationID }), nil
}

func (r *memoryItemRepository) FindActive(_ context.Context) ([]inventory.InventoryItem, error) {
	return r.find(func(i inventory.InventoryItem) bool { return i.IsActive }), nil
}

func (r *memoryItemRepository) CountByLocation(_ context.Context, locationID uuid.UUID) (int64, error) {
	return int64(len(r.find(func(i inventory.InventoryItem) bool { return i.LocationID == locationID }))), nil
}

func (r *memoryItemRepository) CountsByLocation(_ context.Context) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	for _, item := range r.find(func(inventory.InventoryItem) bool { return true }) {
		counts[item.LocationID]++
	}
	return counts, nil
}

func (r *memoryItemRepository) ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error) {
	_, err := r.FindByPartNumber(ctx, partNumber)
	return err == nil, nil
}

func (r *memoryItemRepository) ExistsByBarcode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByBarcode(ctx, code)
	return err == nil, nil
}

func (r *memoryItemRepository) Create(_ context.Context, item *inventory.InventoryItem) error {
	r.put(item)
	return nil
}

func (r *memoryItemRepository) SaveIfTagMatches(_ context.Context, item *inventory.InventoryItem, expectedTag string) error {
	if r.beforeSave != nil {
		r.beforeSave()
	}
	stored := r.get(item.ID)
	if stored == nil {
		return shared.ErrNotFound
	}
	if inventory.Tag(stored) != expectedTag {
		return shared.ErrConcurrencyConflict
	}
	r.put(item)
	return nil
}

type memoryTransactionRepository struct {
	mu  sync.Mutex
	txs map[uuid.UUID]inventory.InventoryTransaction
}

func newMemoryTransactionRepository() *memoryTransactionRepository {
	return &memoryTransactionRepository{txs: make(map[uuid.UUID]inventory.InventoryTransaction)}
}

func (r *memoryTransactionRepository) all() []inventory.InventoryTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.InventoryTransaction, 0, len(r.txs))
	for _, tx := range r.txs {
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TransactionNumber < result[j].TransactionNumber })
	return result
}

func (r *memoryTransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &tx, nil
}

func (r *memoryTransactionRepository) FindByNumber(_ context.Context, number string) (*inventory.InventoryTransaction, error) {
	for _, tx := range r.all() {
		if tx.TransactionNumber == number {
			return &tx, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryTransactionRepository) List(_ context.Context, filter shared.Filter) ([]inventory.InventoryTransaction, int64, error) {
	var result []inventory.InventoryTransaction
	for _, tx := range r.all() {
		if id, ok := filter.Filters["inventory_item_id"]; ok && tx.InventoryItemID != id {
			continue
		}
		if status, ok := filter.Filters["status"]; ok && string(tx.Status) != status {
			continue
		}
		result = append(result, tx)
	}
	return result, int64(len(result)), nil
}

func (r *memoryTransactionRepository) Create(_ context.Context, tx *inventory.InventoryTransaction) error {
	if _, err := r.FindByNumber(context.Background(), tx.TransactionNumber); err == nil {
		return shared.NewDomainError(shared.CodeAlreadyExists, "duplicate transaction number")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *tx
	stored.ClearDomainEvents()
	r.txs[tx.ID] = stored
	return nil
}

func (r *memoryTransactionRepository) Update(_ context.Context, tx *inventory.InventoryTransaction, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.txs[tx.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	updated := *tx
	updated.ClearDomainEvents()
	r.txs[tx.ID] = updated
	return nil
}

func (r *memoryTransactionRepository) LatestNumber(_ context.Context, prefix string, day time.Time) (string, error) {
	latest := ""
	stem := prefix + "-" + inventory.NumberDate(day) + "-"
	for _, tx := range r.all() {
		if strings.HasPrefix(tx.TransactionNumber, stem) && tx.TransactionNumber > latest {
			latest = tx.TransactionNumber
		}
	}
	return latest, nil
}

func (r *memoryTransactionRepository) CountActiveByItem(_ context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	for _, tx := range r.all() {
		if tx.InventoryItemID == itemID && tx.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *memoryTransactionRepository) SumCompletedQuantity(_ context.Context, itemID uuid.UUID, txType inventory.TransactionType, since time.Time) (int64, error) {
	var sum int64
	for _, tx := range r.all() {
		if tx.InventoryItemID != itemID || tx.Type != txType || tx.Status != inventory.TransactionStatusCompleted {
			continue
		}
		if tx.ProcessedAt != nil && !tx.ProcessedAt.Before(since) {
			sum += tx.Quantity
		}
	}
	return sum, nil
}

type memoryLocations map[uuid.UUID]*location.Location

func (m memoryLocations) FindByID(_ context.Context, id uuid.UUID) (*location.Location, error) {
	if loc, ok := m[id]; ok {
		return loc, nil
	}
	return nil, shared.ErrNotFound
}

type memorySuppliers map[uuid.UUID]*partner.Supplier

func (m memorySuppliers) FindByID(_ context.Context, id uuid.UUID) (*partner.Supplier, error) {
	if supplier, ok := m[id]; ok {
		return supplier, nil
	}
	return nil, shared.ErrNotFound
}
