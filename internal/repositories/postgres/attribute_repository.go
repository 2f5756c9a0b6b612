package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/asakaida/unicatalog/pkg/cache"
)

const (
	attributeCachePrefix     = "attribute:"
	defaultAttributeCacheTTL = time.Hour
)

// AttributeRepositoryConfig holds optional collaborators of the attribute repository
type AttributeRepositoryConfig struct {
	// Descriptions resolves the description of newly created attributes
	Descriptions *entities.DescriptionTable

	// Cache, when set, holds name -> attribute lookups. Attributes are
	// immutable and never deleted, so entries never go stale.
	Cache    cache.Cache
	CacheTTL time.Duration
}

// PostgresAttributeRepository implements AttributeRepository using PostgreSQL
type PostgresAttributeRepository struct {
	db           *sql.DB
	descriptions *entities.DescriptionTable
	cache        cache.Cache
	cacheTTL     time.Duration
}

// NewPostgresAttributeRepository creates a new PostgreSQL attribute repository
func NewPostgresAttributeRepository(db *sql.DB, cfg *AttributeRepositoryConfig) *PostgresAttributeRepository {
	r := &PostgresAttributeRepository{
		db:           db,
		descriptions: entities.NewDescriptionTable(nil),
		cacheTTL:     defaultAttributeCacheTTL,
	}
	if cfg != nil {
		if cfg.Descriptions != nil {
			r.descriptions = cfg.Descriptions
		}
		r.cache = cfg.Cache
		if cfg.CacheTTL > 0 {
			r.cacheTTL = cfg.CacheTTL
		}
	}
	return r
}

// GetOrCreate returns the attribute named name, creating it when missing
func (r *PostgresAttributeRepository) GetOrCreate(ctx context.Context, name string, dataType entities.DataType) (*entities.Attribute, error) {
	return r.ensure(ctx, r.db, name, dataType, "")
}

// GetByName retrieves an attribute by name
func (r *PostgresAttributeRepository) GetByName(ctx context.Context, name string) (*entities.Attribute, error) {
	if attr, ok := r.cached(ctx, name); ok {
		return attr, nil
	}

	attr, err := r.selectByName(ctx, r.db, name)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, r.db, attr)
	return attr, nil
}

// List retrieves all attributes ordered by name
func (r *PostgresAttributeRepository) List(ctx context.Context) ([]*entities.Attribute, error) {
	query := `
		SELECT id, name, data_type, description, created_at
		FROM eav_attributes
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	defer rows.Close()

	var attrs []*entities.Attribute
	for rows.Next() {
		attr, err := scanAttribute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attribute: %w", err)
		}
		attrs = append(attrs, attr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attributes: %w", err)
	}

	return attrs, nil
}

// Register creates all declared attributes in a single transaction.
// Attributes that already exist are returned as stored.
func (r *PostgresAttributeRepository) Register(ctx context.Context, defs []*entities.AttributeDefinition) ([]*entities.Attribute, error) {
	for _, def := range defs {
		if err := def.Normalize(); err != nil {
			return nil, fmt.Errorf("invalid attribute definition: %w", err)
		}
	}

	attrs := make([]*entities.Attribute, 0, len(defs))
	err := inTransaction(ctx, r.db, func(tx *sql.Tx) error {
		for _, def := range defs {
			attr, err := r.ensure(ctx, tx, def.Name, def.DataType, def.Description)
			if err != nil {
				return err
			}
			attrs = append(attrs, attr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, attr := range attrs {
		r.remember(ctx, r.db, attr)
	}
	return attrs, nil
}

// ensure looks up name and inserts it when absent. A description of ""
// falls back to the description table.
func (r *PostgresAttributeRepository) ensure(ctx context.Context, q querier, name string, dataType entities.DataType, description string) (*entities.Attribute, error) {
	if name == "" {
		return nil, entities.ErrAttributeNameRequired
	}
	dataType, err := entities.ParseDataType(string(dataType))
	if err != nil {
		return nil, err
	}

	if attr, ok := r.cached(ctx, name); ok {
		return attr, nil
	}

	attr, err := r.selectByName(ctx, q, name)
	if err == nil {
		r.remember(ctx, q, attr)
		return attr, nil
	}
	if !errors.Is(err, entities.ErrAttributeNotFound) {
		return nil, err
	}

	if description == "" {
		description = r.descriptions.Describe(name)
	}

	query := `
		INSERT INTO eav_attributes (name, data_type, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, data_type, description, created_at
	`
	attr, err = scanAttribute(q.QueryRowContext(ctx, query, name, string(dataType), description, time.Now()))
	if errors.Is(err, sql.ErrNoRows) {
		// Another writer inserted the name between our lookup and insert
		attr, err = r.selectByName(ctx, q, name)
		if errors.Is(err, entities.ErrAttributeNotFound) {
			return nil, &entities.DuplicateAttributeError{Name: name}
		}
	}
	if err != nil {
		var dup *entities.DuplicateAttributeError
		if err = classify(err); errors.As(err, &dup) {
			dup.Name = name
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create attribute %q: %w", name, err)
	}

	r.remember(ctx, q, attr)
	return attr, nil
}

func (r *PostgresAttributeRepository) selectByName(ctx context.Context, q querier, name string) (*entities.Attribute, error) {
	query := `
		SELECT id, name, data_type, description, created_at
		FROM eav_attributes
		WHERE name = $1
	`
	attr, err := scanAttribute(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", entities.ErrAttributeNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attribute: %w", err)
	}
	return attr, nil
}

func (r *PostgresAttributeRepository) cached(ctx context.Context, name string) (*entities.Attribute, bool) {
	if r.cache == nil {
		return nil, false
	}
	v, ok := r.cache.Get(ctx, attributeCachePrefix+name)
	if !ok {
		return nil, false
	}
	attr, ok := v.(entities.Attribute)
	if !ok {
		return nil, false
	}
	return &attr, true
}

// remember caches attr unless q is a transaction: rows read inside an open
// transaction may still be rolled back.
func (r *PostgresAttributeRepository) remember(ctx context.Context, q querier, attr *entities.Attribute) {
	if r.cache == nil {
		return
	}
	if _, inTx := q.(*sql.Tx); inTx {
		return
	}
	_ = r.cache.Set(ctx, attributeCachePrefix+attr.Name, *attr, r.cacheTTL)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttribute(row rowScanner) (*entities.Attribute, error) {
	var attr entities.Attribute
	var dataType string
	if err := row.Scan(&attr.ID, &attr.Name, &dataType, &attr.Description, &attr.CreatedAt); err != nil {
		return nil, err
	}
	attr.DataType = entities.DataType(dataType)
	return &attr, nil
}
