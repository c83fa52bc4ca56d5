package models

import (
	"github.com/erp/inventory/internal/domain/location"
	"github.com/google/uuid"
)

// LocationModel is the persistence model for the Location aggregate.
type LocationModel struct {
	AggregateModel
	Code             string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_locations_code"`
	Name             string                `gorm:"type:varchar(200);not null"`
	Description      string                `gorm:"type:text"`
	LocationType     location.LocationType `gorm:"type:varchar(30);not null"`
	ParentLocationID *uuid.UUID            `gorm:"type:uuid;index:idx_locations_parent"`
	MaxCapacity      *int64
	IsActive         bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location.
func (m *LocationModel) ToDomain() *location.Location {
	return &location.Location{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		Type:              m.LocationType,
		ParentLocationID:  m.ParentLocationID,
		MaxCapacity:       m.MaxCapacity,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Location.
func (m *LocationModel) FromDomain(l *location.Location) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.Code = l.Code
	m.Name = l.Name
	m.Description = l.Description
	m.LocationType = l.Type
	m.ParentLocationID = l.ParentLocationID
	m.MaxCapacity = l.MaxCapacity
	m.IsActive = l.IsActive
}

// LocationModelFromDomain creates a new persistence model from a domain Location.
func LocationModelFromDomain(l *location.Location) *LocationModel {
	m := &LocationModel{}
	m.FromDomain(l)
	return m
}
