package location

import (
	"context"

	"github.com/google/uuid"
)

// LocationReader looks locations up. Missing locations yield shared.ErrNotFound.
type LocationReader interface {
	// FindByID finds a location by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)
	// FindByCode finds a location by its unique code
	FindByCode(ctx context.Context, code string) (*Location, error)
	// FindChildren returns the direct children of a location
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Location, error)
	// FindAll returns every location
	FindAll(ctx context.Context) ([]Location, error)
	// HasChildren reports whether any location names id as its parent
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
}

// LocationRepository adds writes to LocationReader
type LocationRepository interface {
	LocationReader
	// Save creates or updates a location
	Save(ctx context.Context, loc *Location) error
	// Delete removes a location
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsByCode checks whether a location code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// ItemCounter counts inventory items stored at locations
type ItemCounter interface {
	// CountByLocation counts items directly at a location
	CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error)
	// CountsByLocation returns item counts keyed by location ID
	CountsByLocation(ctx context.Context) (map[uuid.UUID]int64, error)
}
