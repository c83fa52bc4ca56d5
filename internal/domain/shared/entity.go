package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch records a modification at the given instant.
// Timestamps are kept at microsecond precision so they survive a database round trip
// unchanged, and UpdatedAt strictly increases so anything derived from it changes on every write.
func (e *BaseEntity) Touch(at time.Time) {
	at = StorageTime(at)
	if !at.After(e.UpdatedAt) {
		at = e.UpdatedAt.Add(time.Microsecond)
	}
	e.UpdatedAt = at
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	return NewBaseEntityAt(time.Now())
}

// NewBaseEntityAt creates a new base entity stamped with the given instant
func NewBaseEntityAt(now time.Time) BaseEntity {
	now = StorageTime(now)
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StorageTime normalises t to UTC with microsecond precision
func StorageTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
