package location

import (
	"context"
	"fmt"

	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const spanService = "location"

// LocationService manages the location tree
type LocationService struct {
	locations location.LocationRepository
	hierarchy *location.Hierarchy
	logger    *zap.Logger
}

// NewLocationService creates a LocationService. items counts inventory items per location.
func NewLocationService(locations location.LocationRepository, items location.ItemCounter, config location.HierarchyConfig) *LocationService {
	return &LocationService{
		locations: locations,
		hierarchy: location.NewHierarchy(locations, items, config),
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *LocationService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create creates a location, optionally under a parent
func (s *LocationService) Create(ctx context.Context, req CreateLocationRequest) (*LocationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "create")
	defer span.End()

	loc, err := location.NewLocation(req.Code, req.Name, location.LocationType(req.Type))
	if err != nil {
		return nil, err
	}
	exists, err := s.locations.ExistsByCode(ctx, loc.Code)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Location code %s is already in use", loc.Code))
	}

	loc.Description = req.Description
	if req.MaxCapacity != nil {
		if err := loc.SetMaxCapacity(req.MaxCapacity); err != nil {
			return nil, err
		}
	}
	if req.ParentLocationID != nil {
		if err := s.hierarchy.ValidatePlacement(ctx, loc, req.ParentLocationID); err != nil {
			return nil, err
		}
		loc.AssignParent(req.ParentLocationID)
	}

	if err := s.locations.Save(ctx, loc); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to save location", zap.String("code", loc.Code), zap.Error(err))
		return nil, err
	}
	s.logger.Info("location created", zap.String("location_id", loc.ID.String()), zap.String("code", loc.Code))

	response := ToLocationResponse(loc)
	return &response, nil
}

// GetByID retrieves a location
func (s *LocationService) GetByID(ctx context.Context, locationID uuid.UUID) (*LocationResponse, error) {
	loc, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	response := ToLocationResponse(loc)
	return &response, nil
}

// Update changes name, description and capacity
func (s *LocationService) Update(ctx context.Context, locationID uuid.UUID, req UpdateLocationRequest) (*LocationResponse, error) {
	loc, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil || req.Description != nil {
		name, description := loc.Name, loc.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := loc.Update(name, description); err != nil {
			return nil, err
		}
	}
	if req.MaxCapacity != nil {
		if err := loc.SetMaxCapacity(req.MaxCapacity); err != nil {
			return nil, err
		}
	}
	if err := s.locations.Save(ctx, loc); err != nil {
		return nil, err
	}
	response := ToLocationResponse(loc)
	return &response, nil
}

// ValidateParent reports whether locationID may be placed under parentID without changing anything
func (s *LocationService) ValidateParent(ctx context.Context, req ValidateParentRequest) error {
	return s.hierarchy.ValidateParentAssignment(ctx, req.LocationID, req.ParentLocationID)
}

// Move re-parents a location after validating the new placement
func (s *LocationService) Move(ctx context.Context, locationID uuid.UUID, req MoveLocationRequest) (*LocationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "move",
		telemetry.SpanAttrLocationID, locationID.String(),
	)
	defer span.End()

	loc, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if err := s.hierarchy.ValidatePlacement(ctx, loc, req.ParentLocationID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	loc.AssignParent(req.ParentLocationID)
	if err := s.locations.Save(ctx, loc); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	response := ToLocationResponse(loc)
	return &response, nil
}

// Delete removes a location that has no children and holds no items
func (s *LocationService) Delete(ctx context.Context, locationID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "delete",
		telemetry.SpanAttrLocationID, locationID.String(),
	)
	defer span.End()

	if err := s.hierarchy.ValidateDeletion(ctx, locationID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.locations.Delete(ctx, locationID); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to delete location", zap.String("location_id", locationID.String()), zap.Error(err))
		return err
	}
	return nil
}

// Tree returns every root location with its subtree
func (s *LocationService) Tree(ctx context.Context) ([]*LocationNodeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "tree")
	defer span.End()

	nodes, err := s.hierarchy.BuildHierarchy(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return ToLocationNodeResponses(nodes), nil
}

// Ancestors returns the parent chain, nearest first
func (s *LocationService) Ancestors(ctx context.Context, locationID uuid.UUID) ([]LocationResponse, error) {
	ancestors, err := s.hierarchy.Ancestors(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return ToLocationResponses(ancestors), nil
}

// Descendants returns the whole subtree below a location, breadth first
func (s *LocationService) Descendants(ctx context.Context, locationID uuid.UUID) ([]LocationResponse, error) {
	descendants, err := s.hierarchy.Descendants(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return ToLocationResponses(descendants), nil
}

// Capacity reports capacity utilisation
func (s *LocationService) Capacity(ctx context.Context, locationID uuid.UUID) (*CapacityResponse, error) {
	report, err := s.hierarchy.CapacityUtilization(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return &CapacityResponse{
		LocationID:         report.LocationID,
		ItemCount:          report.ItemCount,
		MaxCapacity:        report.MaxCapacity,
		UtilizationPercent: report.UtilizationPercent,
		Note:               report.Note,
	}, nil
}
