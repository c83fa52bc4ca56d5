package location

import (
	"time"

	"github.com/erp/inventory/internal/domain/location"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLocationRequest represents a request to create a location
type CreateLocationRequest struct {
	Code             string     `json:"code" binding:"required,min=1,max=50"`
	Name             string     `json:"name" binding:"required,min=1,max=200"`
	Description      string     `json:"description" binding:"max=2000"`
	Type             string     `json:"type" binding:"required,location_type"`
	ParentLocationID *uuid.UUID `json:"parent_location_id"`
	MaxCapacity      *int64     `json:"max_capacity" binding:"omitempty,min=1"`
}

// UpdateLocationRequest represents a request to update a location's descriptive fields
type UpdateLocationRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	MaxCapacity *int64  `json:"max_capacity" binding:"omitempty,min=1"`
}

// MoveLocationRequest re-parents a location; a nil parent makes it a root
type MoveLocationRequest struct {
	ParentLocationID *uuid.UUID `json:"parent_location_id"`
}

// ValidateParentRequest asks whether a location may be placed under a parent
type ValidateParentRequest struct {
	LocationID       uuid.UUID  `json:"location_id" binding:"required"`
	ParentLocationID *uuid.UUID `json:"parent_location_id"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Type             string     `json:"type"`
	ParentLocationID *uuid.UUID `json:"parent_location_id,omitempty"`
	MaxCapacity      *int64     `json:"max_capacity,omitempty"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Version          int        `json:"version"`
}

// ToLocationResponse converts a domain location to a response DTO
func ToLocationResponse(loc *location.Location) LocationResponse {
	return LocationResponse{
		ID:               loc.ID,
		Code:             loc.Code,
		Name:             loc.Name,
		Description:      loc.Description,
		Type:             loc.Type.String(),
		ParentLocationID: loc.ParentLocationID,
		MaxCapacity:      loc.MaxCapacity,
		IsActive:         loc.IsActive,
		CreatedAt:        loc.CreatedAt,
		UpdatedAt:        loc.UpdatedAt,
		Version:          loc.Version,
	}
}

// ToLocationResponses converts a slice of locations
func ToLocationResponses(locs []location.Location) []LocationResponse {
	responses := make([]LocationResponse, len(locs))
	for i := range locs {
		responses[i] = ToLocationResponse(&locs[i])
	}
	return responses
}

// LocationNodeResponse is one node of the location tree
type LocationNodeResponse struct {
	ID        uuid.UUID               `json:"id"`
	Code      string                  `json:"code"`
	Name      string                  `json:"name"`
	Type      string                  `json:"type"`
	IsActive  bool                    `json:"is_active"`
	Level     int                     `json:"level"`
	Path      string                  `json:"path"`
	ItemCount int64                   `json:"item_count"`
	Children  []*LocationNodeResponse `json:"children"`
}

// ToLocationNodeResponses converts the tree recursively
func ToLocationNodeResponses(nodes []*location.Node) []*LocationNodeResponse {
	responses := make([]*LocationNodeResponse, len(nodes))
	for i, node := range nodes {
		responses[i] = &LocationNodeResponse{
			ID:        node.ID,
			Code:      node.Code,
			Name:      node.Name,
			Type:      node.Type.String(),
			IsActive:  node.IsActive,
			Level:     node.Level,
			Path:      node.Path,
			ItemCount: node.ItemCount,
			Children:  ToLocationNodeResponses(node.Children),
		}
	}
	return responses
}

// CapacityResponse reports capacity utilisation of a location
type CapacityResponse struct {
	LocationID         uuid.UUID       `json:"location_id"`
	ItemCount          int64           `json:"item_count"`
	MaxCapacity        *int64          `json:"max_capacity,omitempty"`
	UtilizationPercent decimal.Decimal `json:"utilization_percent"`
	Note               string          `json:"note,omitempty"`
}
