package repositories

import (
	"context"

	"github.com/asakaida/unicatalog/internal/entities"
)

// AttributeRepository defines the interface for the attribute dictionary
type AttributeRepository interface {
	// GetOrCreate returns the attribute named name, creating it with dataType
	// when it does not exist yet. An existing attribute keeps its stored type.
	GetOrCreate(ctx context.Context, name string, dataType entities.DataType) (*entities.Attribute, error)

	// GetByName retrieves an attribute by name
	// Returns entities.ErrAttributeNotFound if there is none
	GetByName(ctx context.Context, name string) (*entities.Attribute, error)

	// List retrieves all attributes ordered by name
	List(ctx context.Context) ([]*entities.Attribute, error)

	// Register creates all declared attributes in a single transaction
	Register(ctx context.Context, defs []*entities.AttributeDefinition) ([]*entities.Attribute, error)
}
