// Package location models storage locations and the rules that keep their tree coherent.
package location

import (
	"regexp"
	"strings"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// LocationType classifies what a location is used for
type LocationType string

const (
	LocationTypeWarehouse        LocationType = "WAREHOUSE"
	LocationTypeProductionFloor  LocationType = "PRODUCTION_FLOOR"
	LocationTypeCustomerSite     LocationType = "CUSTOMER_SITE"
	LocationTypeSupplierLocation LocationType = "SUPPLIER_LOCATION"
	LocationTypeTransit          LocationType = "TRANSIT"
	LocationTypeQuarantine       LocationType = "QUARANTINE"
	LocationTypeOther            LocationType = "OTHER"
)

// AllLocationTypes returns every location type
func AllLocationTypes() []LocationType {
	return []LocationType{
		LocationTypeWarehouse,
		LocationTypeProductionFloor,
		LocationTypeCustomerSite,
		LocationTypeSupplierLocation,
		LocationTypeTransit,
		LocationTypeQuarantine,
		LocationTypeOther,
	}
}

// String returns the string representation of LocationType
func (t LocationType) String() string {
	return string(t)
}

// IsValid checks if the location type is valid
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeProductionFloor, LocationTypeCustomerSite,
		LocationTypeSupplierLocation, LocationTypeTransit, LocationTypeQuarantine, LocationTypeOther:
		return true
	}
	return false
}

// CanReceive reports whether stock may be received into a location of this type
func (t LocationType) CanReceive() bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeProductionFloor, LocationTypeCustomerSite, LocationTypeOther:
		return true
	}
	return false
}

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Location is a place where inventory items are stored.
// Locations form a tree through ParentLocationID; parents hold no child list.
type Location struct {
	shared.BaseAggregateRoot
	Code             string
	Name             string
	Description      string
	Type             LocationType
	ParentLocationID *uuid.UUID
	MaxCapacity      *int64
	IsActive         bool
}

// NewLocation creates an active root location
func NewLocation(code, name string, locationType LocationType) (*Location, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !locationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION_TYPE", "Invalid location type")
	}

	return &Location{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              strings.TrimSpace(name),
		Type:              locationType,
		IsActive:          true,
	}, nil
}

// IsRoot reports whether the location has no parent
func (l *Location) IsRoot() bool {
	return l.ParentLocationID == nil
}

// Label renders the location as "CODE (Name)"
func (l *Location) Label() string {
	return l.Code + " (" + l.Name + ")"
}

// AssignParent sets the parent. Callers validate the assignment with Hierarchy first.
func (l *Location) AssignParent(parentID *uuid.UUID) {
	if parentID == nil {
		l.ParentLocationID = nil
	} else {
		id := *parentID
		l.ParentLocationID = &id
	}
	l.touch()
}

// SetMaxCapacity sets or clears the capacity limit
func (l *Location) SetMaxCapacity(capacity *int64) error {
	if capacity != nil && *capacity <= 0 {
		return shared.NewDomainError("INVALID_CAPACITY", "Max capacity must be positive")
	}
	l.MaxCapacity = capacity
	l.touch()
	return nil
}

// Update changes the descriptive fields
func (l *Location) Update(name, description string) error {
	if err := validateName(name); err != nil {
		return err
	}
	l.Name = strings.TrimSpace(name)
	l.Description = description
	l.touch()
	return nil
}

// Deactivate marks the location inactive
func (l *Location) Deactivate() {
	l.IsActive = false
	l.touch()
}

func (l *Location) touch() {
	l.Touch(time.Now())
	l.IncrementVersion()
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Location code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Location code cannot exceed 50 characters")
	}
	if !codePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Location code may only contain letters, digits, '-' and '_'")
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Location name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Location name cannot exceed 200 characters")
	}
	return nil
}
