package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/asakaida/unicatalog/internal/entities"
)

// PostgresEntityRepository implements EntityRepository using PostgreSQL.
// Values are stored in eav_values with attributes resolved through the
// attribute repository.
type PostgresEntityRepository struct {
	db         *sql.DB
	attributes *PostgresAttributeRepository
}

// NewPostgresEntityRepository creates a new PostgreSQL entity repository
func NewPostgresEntityRepository(db *sql.DB, attributes *PostgresAttributeRepository) *PostgresEntityRepository {
	return &PostgresEntityRepository{db: db, attributes: attributes}
}

// Create inserts an entity and its initial attributes in one transaction
func (r *PostgresEntityRepository) Create(ctx context.Context, input *entities.EntityInput) (int64, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, entities.ErrEntityNameRequired
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	var id int64
	err := inTransaction(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO eav_entities (name, is_active, parent_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		now := time.Now()
		if err := tx.QueryRowContext(ctx, query, name, isActive, nullInt64(input.ParentID), now, now).Scan(&id); err != nil {
			return fmt.Errorf("failed to create entity: %w", classify(err))
		}

		return r.setAttributes(ctx, tx, id, input.Attributes)
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetByID retrieves a reconstructed entity
func (r *PostgresEntityRepository) GetByID(ctx context.Context, id int64) (*entities.Entity, error) {
	list, err := r.load(ctx, r.db, "e.id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %d", entities.ErrEntityNotFound, id)
	}
	return list[0], nil
}

// List retrieves entities ordered by creation time, newest first
func (r *PostgresEntityRepository) List(ctx context.Context, includeInactive bool) ([]*entities.Entity, error) {
	if includeInactive {
		return r.load(ctx, r.db, "TRUE")
	}
	return r.load(ctx, r.db, "e.is_active = TRUE")
}

// ListChildren retrieves the entities grouped under parentID
func (r *PostgresEntityRepository) ListChildren(ctx context.Context, parentID int64, includeInactive bool) ([]*entities.Entity, error) {
	if includeInactive {
		return r.load(ctx, r.db, "e.parent_id = $1", parentID)
	}
	return r.load(ctx, r.db, "e.parent_id = $1 AND e.is_active = TRUE", parentID)
}

// Update applies the fields present in patch, always refreshing updated_at,
// then re-reads the entity. A missing entity leaves the database untouched
// and yields ErrEntityNotFound from the re-read.
func (r *PostgresEntityRepository) Update(ctx context.Context, id int64, patch *entities.EntityPatch) (*entities.Entity, error) {
	if patch == nil {
		patch = &entities.EntityPatch{}
	}

	sets := []string{}
	args := []interface{}{}
	argIdx := 1

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, entities.ErrEntityNameRequired
		}
		sets = append(sets, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, name)
		argIdx++
	}
	if patch.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *patch.IsActive)
		argIdx++
	}
	if patch.ClearParent {
		sets = append(sets, "parent_id = NULL")
	} else if patch.ParentID != nil {
		sets = append(sets, fmt.Sprintf("parent_id = $%d", argIdx))
		args = append(args, *patch.ParentID)
		argIdx++
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	query := fmt.Sprintf("UPDATE eav_entities SET %s WHERE id = $%d", strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	err := inTransaction(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update entity: %w", classify(err))
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil
		}

		return r.setAttributes(ctx, tx, id, patch.Attributes)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes the entity and all of its values in one transaction.
// Deleting a missing entity is a no-op.
func (r *PostgresEntityRepository) Delete(ctx context.Context, id int64) error {
	return inTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM eav_values WHERE entity_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete entity values: %w", classify(err))
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM eav_entities WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete entity: %w", classify(err))
		}
		return nil
	})
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
