package partner

import (
	"context"

	"github.com/erp/inventory/internal/domain/partner"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo   partner.SupplierRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for supplier events
func (s *SupplierService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger
func (s *SupplierService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.Code, req.Name, req.LeadTimeDays)
	if err != nil {
		return nil, err
	}

	exists, err := s.supplierRepo.ExistsByCode(ctx, supplier.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Supplier with this code already exists")
	}

	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := supplier.Update(supplier.Name, req.ContactName, req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	supplier.Notes = req.Notes

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		s.logger.Error("failed to save supplier", zap.String("code", supplier.Code), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByCode retrieves a supplier by code
func (s *SupplierService) GetByCode(ctx context.Context, code string) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Update updates contact details and lead time
func (s *SupplierService) Update(ctx context.Context, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.ContactName != nil || req.Email != nil || req.Phone != nil {
		name, contactName, email, phone := supplier.Name, supplier.ContactName, supplier.Email, supplier.Phone
		if req.Name != nil {
			name = *req.Name
		}
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := supplier.Update(name, contactName, email, phone); err != nil {
			return nil, err
		}
	}
	if req.LeadTimeDays != nil {
		if err := supplier.SetLeadTime(*req.LeadTimeDays); err != nil {
			return nil, err
		}
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.publish(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Deactivate deactivates a supplier. Items keep their reference; a
// deactivated supplier still contributes its lead time to reorder points.
func (s *SupplierService) Deactivate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if err := supplier.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

func (s *SupplierService) publish(ctx context.Context, supplier *partner.Supplier) {
	events := supplier.GetDomainEvents()
	supplier.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish supplier events", zap.String("supplier_id", supplier.ID.String()), zap.Error(err))
	}
}
