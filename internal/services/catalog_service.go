package services

import (
	"context"
	"fmt"
	"time"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/asakaida/unicatalog/internal/repositories"
	"github.com/asakaida/unicatalog/internal/retry"
	"github.com/asakaida/unicatalog/internal/services/filter"
	"go.uber.org/zap"
)

// CatalogServiceInterface defines the data-access contract of the course catalog
type CatalogServiceInterface interface {
	CreateEntity(ctx context.Context, input *entities.EntityInput) (int64, error)
	GetEntityByID(ctx context.Context, id int64) (*entities.Entity, error)
	GetAllEntities(ctx context.Context, includeInactive bool) ([]*entities.Entity, error)
	UpdateEntity(ctx context.Context, id int64, patch *entities.EntityPatch) (*entities.Entity, error)
	DeleteEntity(ctx context.Context, id int64) error
	SetAttributeValue(ctx context.Context, entityID int64, name string, value interface{}, dataType entities.DataType) error
	SetEntityAttributes(ctx context.Context, entityID int64, attrs map[string]entities.AttributeInput) error
	GetAllAttributes(ctx context.Context) ([]*entities.Attribute, error)
	SearchEntities(ctx context.Context, term string, attributeName string) ([]*entities.Entity, error)
	FilterEntities(ctx context.Context, expression string, includeInactive bool) ([]*entities.Entity, error)
	ListChildren(ctx context.Context, parentID int64, includeInactive bool) ([]*entities.Entity, error)
	RegisterAttributes(ctx context.Context, defs []*entities.AttributeDefinition) ([]*entities.Attribute, error)
}

// CatalogService implements the catalog contract on top of the repositories.
// Writes are retried when they fail with a retryable storage error.
type CatalogService struct {
	entityRepo    repositories.EntityRepository
	attributeRepo repositories.AttributeRepository
	filters       *filter.Engine

	retry  retry.Config
	logger *zap.Logger
}

// Option configures a CatalogService
type Option func(*CatalogService)

// WithRetry overrides the retry policy for writes
func WithRetry(cfg *retry.Config) Option {
	return func(s *CatalogService) {
		if cfg != nil {
			s.retry = *cfg
		}
	}
}

// WithLogger sets the logger used for retry diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(s *CatalogService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	entityRepo repositories.EntityRepository,
	attributeRepo repositories.AttributeRepository,
	filters *filter.Engine,
	opts ...Option,
) *CatalogService {
	s := &CatalogService{
		entityRepo:    entityRepo,
		attributeRepo: attributeRepo,
		filters:       filters,
		retry:         *retry.DefaultConfig(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEntity creates an entity with its initial attributes
func (s *CatalogService) CreateEntity(ctx context.Context, input *entities.EntityInput) (int64, error) {
	if input == nil {
		return 0, entities.ErrEntityNameRequired
	}

	var id int64
	err := s.write(ctx, "create_entity", func() error {
		var err error
		id, err = s.entityRepo.Create(ctx, input)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create entity: %w", err)
	}
	return id, nil
}

// GetEntityByID retrieves one reconstructed entity
func (s *CatalogService) GetEntityByID(ctx context.Context, id int64) (*entities.Entity, error) {
	return s.entityRepo.GetByID(ctx, id)
}

// GetAllEntities lists entities newest first
func (s *CatalogService) GetAllEntities(ctx context.Context, includeInactive bool) ([]*entities.Entity, error) {
	return s.entityRepo.List(ctx, includeInactive)
}

// UpdateEntity applies patch and returns the updated entity
func (s *CatalogService) UpdateEntity(ctx context.Context, id int64, patch *entities.EntityPatch) (*entities.Entity, error) {
	var updated *entities.Entity
	err := s.write(ctx, "update_entity", func() error {
		var err error
		updated, err = s.entityRepo.Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update entity %d: %w", id, err)
	}
	return updated, nil
}

// DeleteEntity removes an entity and its values
func (s *CatalogService) DeleteEntity(ctx context.Context, id int64) error {
	err := s.write(ctx, "delete_entity", func() error {
		return s.entityRepo.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete entity %d: %w", id, err)
	}
	return nil
}

// SetAttributeValue stores one attribute value; a nil value clears it
func (s *CatalogService) SetAttributeValue(ctx context.Context, entityID int64, name string, value interface{}, dataType entities.DataType) error {
	return s.write(ctx, "set_attribute", func() error {
		return s.entityRepo.SetAttribute(ctx, entityID, name, value, dataType)
	})
}

// SetEntityAttributes applies several attribute entries; entries already
// written stay written when a later one fails
func (s *CatalogService) SetEntityAttributes(ctx context.Context, entityID int64, attrs map[string]entities.AttributeInput) error {
	if len(attrs) == 0 {
		return nil
	}
	return s.write(ctx, "set_attributes", func() error {
		return s.entityRepo.SetAttributes(ctx, entityID, attrs)
	})
}

// GetAllAttributes lists the attribute dictionary
func (s *CatalogService) GetAllAttributes(ctx context.Context) ([]*entities.Attribute, error) {
	return s.attributeRepo.List(ctx)
}

// SearchEntities finds active entities by substring
func (s *CatalogService) SearchEntities(ctx context.Context, term string, attributeName string) ([]*entities.Entity, error) {
	return s.entityRepo.Search(ctx, term, attributeName)
}

// FilterEntities returns the entities matching a CEL expression over the
// flattened record. The expression is compiled before anything is read.
func (s *CatalogService) FilterEntities(ctx context.Context, expression string, includeInactive bool) ([]*entities.Entity, error) {
	if s.filters == nil {
		return nil, fmt.Errorf("%w: filtering is not configured", entities.ErrInvalidFilter)
	}

	f, err := s.filters.Compile(expression)
	if err != nil {
		return nil, err
	}

	list, err := s.entityRepo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	return f.Apply(list), nil
}

// ListChildren lists the entities grouped under parentID
func (s *CatalogService) ListChildren(ctx context.Context, parentID int64, includeInactive bool) ([]*entities.Entity, error) {
	return s.entityRepo.ListChildren(ctx, parentID, includeInactive)
}

// RegisterAttributes declares attributes ahead of first use
func (s *CatalogService) RegisterAttributes(ctx context.Context, defs []*entities.AttributeDefinition) ([]*entities.Attribute, error) {
	var attrs []*entities.Attribute
	err := s.write(ctx, "register_attributes", func() error {
		var err error
		attrs, err = s.attributeRepo.Register(ctx, defs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register attributes: %w", err)
	}
	return attrs, nil
}

func (s *CatalogService) write(ctx context.Context, op string, fn func() error) error {
	cfg := s.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		s.logger.Debug("retrying catalog write",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}
	return retry.Do(ctx, &cfg, fn)
}
