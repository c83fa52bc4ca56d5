package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by its ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*location.Location, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCode finds a location by its code
func (r *GormLocationRepository) FindByCode(ctx context.Context, code string) (*location.Location, error) {
	return r.findOne(ctx, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

func (r *GormLocationRepository) findOne(ctx context.Context, query string, args ...any) (*location.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Location not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindChildren returns the direct children of a location ordered by code
func (r *GormLocationRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]location.Location, error) {
	return r.findMany(r.db.WithContext(ctx).Where("parent_location_id = ?", parentID))
}

// FindAll returns every location ordered by code
func (r *GormLocationRepository) FindAll(ctx context.Context) ([]location.Location, error) {
	return r.findMany(r.db.WithContext(ctx))
}

func (r *GormLocationRepository) findMany(query *gorm.DB) ([]location.Location, error) {
	var rows []models.LocationModel
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	locations := make([]location.Location, len(rows))
	for i := range rows {
		locations[i] = *rows[i].ToDomain()
	}
	return locations, nil
}

// HasChildren reports whether any location names id as its parent
func (r *GormLocationRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LocationModel{}).
		Where("parent_location_id = ?", id).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByCode checks whether a location code is taken
func (r *GormLocationRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LocationModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, loc *location.Location) error {
	if err := r.db.WithContext(ctx).Save(models.LocationModelFromDomain(loc)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A location with this code already exists")
		}
		return err
	}
	return nil
}

// Delete removes a location
func (r *GormLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LocationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Location not found")
	}
	return nil
}

// Ensure GormLocationRepository implements LocationRepository
var _ location.LocationRepository = (*GormLocationRepository)(nil)
