package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/lib/pq"
)

// Search returns active entities whose name or string/text values contain
// term, case-insensitively. attributeName, when set, restricts matching to
// entities having that attribute and to that attribute's values. An empty
// term applies no text filter.
func (r *PostgresEntityRepository) Search(ctx context.Context, term string, attributeName string) ([]*entities.Entity, error) {
	conditions := []string{}
	args := []interface{}{}
	argIdx := 1

	if attributeName != "" {
		conditions = append(conditions, fmt.Sprintf("a.name = $%d", argIdx))
		args = append(args, attributeName)
		argIdx++
	}
	if term != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(m.name ILIKE $%d OR v.value_string ILIKE $%d OR v.value_text ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+escapeLike(term)+"%")
		argIdx++
	}

	join := "LEFT JOIN"
	if attributeName != "" {
		join = "JOIN"
	}
	where := "TRUE"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	filter := fmt.Sprintf(`
		e.is_active = TRUE AND e.id IN (
			SELECT m.id
			FROM eav_entities m
			%[1]s eav_values v ON v.entity_id = m.id
			%[1]s eav_attributes a ON a.id = v.attribute_id
			WHERE %[2]s
		)
	`, join, where)

	return r.load(ctx, r.db, filter, args...)
}

// load reads the entities matching where and attaches all of their values
// with a single batched query.
func (r *PostgresEntityRepository) load(ctx context.Context, q querier, where string, args ...interface{}) ([]*entities.Entity, error) {
	query := fmt.Sprintf(`
		SELECT e.id, e.name, e.is_active, e.parent_id, e.created_at, e.updated_at
		FROM eav_entities e
		WHERE %s
		ORDER BY e.created_at DESC, e.id DESC
	`, where)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}
	defer rows.Close()

	var list []*entities.Entity
	byID := make(map[int64]*entities.Entity)
	for rows.Next() {
		var e entities.Entity
		var parentID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &e.IsActive, &parentID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		if parentID.Valid {
			p := parentID.Int64
			e.ParentID = &p
		}
		e.Attributes = make(map[string]entities.Value)
		list = append(list, &e)
		byID[e.ID] = &e
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	if len(list) == 0 {
		return list, nil
	}

	if err := r.attachValues(ctx, q, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresEntityRepository) attachValues(ctx context.Context, q querier, byID map[int64]*entities.Entity) error {
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query := `
		SELECT v.entity_id, a.name,
			v.value_string, v.value_number, v.value_text, v.value_boolean, v.value_date
		FROM eav_values v
		JOIN eav_attributes a ON a.id = v.attribute_id
		WHERE v.entity_id = ANY($1)
		ORDER BY v.entity_id, a.name
	`
	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to read attribute values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entityID int64
		var name string
		var c columns
		if err := rows.Scan(&entityID, &name, &c.str, &c.num, &c.text, &c.boolean, &c.date); err != nil {
			return fmt.Errorf("failed to scan attribute value: %w", err)
		}
		v, ok := c.value()
		if !ok {
			continue
		}
		if e := byID[entityID]; e != nil {
			e.Attributes[name] = v
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating attribute values: %w", err)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so term matches literally
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
