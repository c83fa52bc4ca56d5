package partner

import (
	"strings"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "ACTIVE"
	SupplierStatusInactive SupplierStatus = "INACTIVE"
	SupplierStatusBlocked  SupplierStatus = "BLOCKED" // quality or delivery issues
)

// MaxLeadTimeDays bounds the replenishment lead time a supplier may declare
const MaxLeadTimeDays = 365

// Supplier is a vendor that replenishes inventory items.
// Its lead time feeds the reorder point calculation.
type Supplier struct {
	shared.BaseAggregateRoot
	Code         string
	Name         string
	ContactName  string
	Email        string
	Phone        string
	LeadTimeDays int
	Status       SupplierStatus
	Notes        string
}

// NewSupplier creates an active supplier
func NewSupplier(code, name string, leadTimeDays int) (*Supplier, error) {
	if err := validateSupplierCode(code); err != nil {
		return nil, err
	}
	if err := validateSupplierName(name); err != nil {
		return nil, err
	}
	if err := validateLeadTime(leadTimeDays); err != nil {
		return nil, err
	}

	supplier := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              strings.TrimSpace(name),
		LeadTimeDays:      leadTimeDays,
		Status:            SupplierStatusActive,
	}
	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))
	return supplier, nil
}

// Update updates the supplier's name and contact details
func (s *Supplier) Update(name, contactName, email, phone string) error {
	if err := validateSupplierName(name); err != nil {
		return err
	}
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	s.Name = strings.TrimSpace(name)
	s.ContactName = contactName
	s.Email = email
	s.Phone = phone
	s.touch()
	s.AddDomainEvent(NewSupplierUpdatedEvent(s))
	return nil
}

// SetLeadTime changes the replenishment lead time in days
func (s *Supplier) SetLeadTime(days int) error {
	if err := validateLeadTime(days); err != nil {
		return err
	}
	s.LeadTimeDays = days
	s.touch()
	s.AddDomainEvent(NewSupplierUpdatedEvent(s))
	return nil
}

// Deactivate deactivates the supplier
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}
	s.Status = SupplierStatusInactive
	s.touch()
	return nil
}

// Block blocks the supplier
func (s *Supplier) Block() error {
	if s.Status == SupplierStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "Supplier is already blocked")
	}
	s.Status = SupplierStatusBlocked
	s.touch()
	return nil
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

func (s *Supplier) touch() {
	s.Touch(time.Now())
	s.IncrementVersion()
}

func validateSupplierCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Supplier code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Supplier code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateSupplierName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	return nil
}

func validateLeadTime(days int) error {
	if days < 0 || days > MaxLeadTimeDays {
		return shared.NewDomainError("INVALID_LEAD_TIME", "Lead time must be between 0 and 365 days")
	}
	return nil
}
