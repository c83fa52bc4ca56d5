package models

import "github.com/erp/inventory/internal/domain/partner"

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	Code         string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_suppliers_code"`
	Name         string                 `gorm:"type:varchar(200);not null"`
	ContactName  string                 `gorm:"type:varchar(100)"`
	Email        string                 `gorm:"type:varchar(200)"`
	Phone        string                 `gorm:"type:varchar(50)"`
	LeadTimeDays int                    `gorm:"not null;default:0"`
	Status       partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Notes        string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		ContactName:       m.ContactName,
		Email:             m.Email,
		Phone:             m.Phone,
		LeadTimeDays:      m.LeadTimeDays,
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Supplier.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Name = s.Name
	m.ContactName = s.ContactName
	m.Email = s.Email
	m.Phone = s.Phone
	m.LeadTimeDays = s.LeadTimeDays
	m.Status = s.Status
	m.Notes = s.Notes
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
