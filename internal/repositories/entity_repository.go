package repositories

import (
	"context"

	"github.com/asakaida/unicatalog/internal/entities"
)

// EntityRepository defines the interface for entity and value data access
type EntityRepository interface {
	// Create inserts an entity and its initial attributes atomically and returns its ID
	Create(ctx context.Context, input *entities.EntityInput) (int64, error)

	// GetByID retrieves a reconstructed entity
	// Returns entities.ErrEntityNotFound if there is none
	GetByID(ctx context.Context, id int64) (*entities.Entity, error)

	// List retrieves entities newest first, active ones only unless includeInactive is set
	List(ctx context.Context, includeInactive bool) ([]*entities.Entity, error)

	// ListChildren retrieves the entities grouped under parentID
	ListChildren(ctx context.Context, parentID int64, includeInactive bool) ([]*entities.Entity, error)

	// Update applies a partial patch and returns the re-read entity
	Update(ctx context.Context, id int64, patch *entities.EntityPatch) (*entities.Entity, error)

	// Delete removes an entity together with all of its values
	Delete(ctx context.Context, id int64) error

	// SetAttribute stores or, for a nil value, clears one attribute value
	SetAttribute(ctx context.Context, entityID int64, name string, value interface{}, dataType entities.DataType) error

	// SetAttributes applies every provided entry independently
	SetAttributes(ctx context.Context, entityID int64, attrs map[string]entities.AttributeInput) error

	// Search matches term against active entity names and string/text values,
	// optionally narrowed to one attribute name
	Search(ctx context.Context, term string, attributeName string) ([]*entities.Entity, error)
}
