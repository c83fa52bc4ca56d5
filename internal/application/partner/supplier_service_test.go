package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/inventory/internal/domain/partner"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestSupplierService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates supplier and publishes events", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		publisher := &recordingPublisher{}
		service := NewSupplierService(repo)
		service.SetEventPublisher(publisher)

		repo.On("ExistsByCode", ctx, "ACME").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Supplier")).Return(nil)

		resp, err := service.Create(ctx, CreateSupplierRequest{
			Code:         "acme",
			Name:         "Acme Fasteners",
			Email:        "orders@acme.test",
			LeadTimeDays: 14,
		})
		require.NoError(t, err)
		assert.Equal(t, "ACME", resp.Code)
		assert.Equal(t, 14, resp.LeadTimeDays)
		assert.Equal(t, "orders@acme.test", resp.Email)
		assert.Equal(t, string(partner.SupplierStatusActive), resp.Status)
		require.Len(t, publisher.events, 2)
		assert.Equal(t, partner.EventTypeSupplierCreated, publisher.events[0].EventType())
		repo.AssertExpectations(t)
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo)
		repo.On("ExistsByCode", ctx, "ACME").Return(true, nil)

		_, err := service.Create(ctx, CreateSupplierRequest{Code: "ACME", Name: "Acme"})
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("lead time out of range", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo)

		_, err := service.Create(ctx, CreateSupplierRequest{Code: "ACME", Name: "Acme", LeadTimeDays: partner.MaxLeadTimeDays + 1})
		assert.True(t, shared.HasCode(err, "INVALID_LEAD_TIME"))
	})

	t.Run("save failure is returned", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo)
		repo.On("ExistsByCode", ctx, "ACME").Return(false, nil)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := service.Create(ctx, CreateSupplierRequest{Code: "ACME", Name: "Acme"})
		assert.EqualError(t, err, "connection reset")
	})
}

func TestSupplierService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("changes lead time and keeps other fields", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo)
		supplier, err := partner.NewSupplier("ACME", "Acme", 10)
		require.NoError(t, err)
		require.NoError(t, supplier.Update("Acme", "Jo", "jo@acme.test", "555"))

		repo.On("FindByID", ctx, supplier.ID).Return(supplier, nil)
		repo.On("Save", ctx, supplier).Return(nil)

		days := 21
		resp, err := service.Update(ctx, supplier.ID, UpdateSupplierRequest{LeadTimeDays: &days})
		require.NoError(t, err)
		assert.Equal(t, 21, resp.LeadTimeDays)
		assert.Equal(t, "jo@acme.test", resp.Email)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.NotFound("Supplier not found"))

		_, err := service.Update(ctx, id, UpdateSupplierRequest{})
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestSupplierService_Deactivate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo)
	supplier, err := partner.NewSupplier("ACME", "Acme", 10)
	require.NoError(t, err)

	repo.On("FindByID", ctx, supplier.ID).Return(supplier, nil)
	repo.On("Save", ctx, supplier).Return(nil)

	resp, err := service.Deactivate(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, string(partner.SupplierStatusInactive), resp.Status)

	_, err = service.Deactivate(ctx, supplier.ID)
	assert.True(t, shared.HasCode(err, "ALREADY_INACTIVE"))
}
