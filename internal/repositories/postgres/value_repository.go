package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/asakaida/unicatalog/internal/entities"
)

// SetAttribute stores one attribute value, or deletes it when value is nil.
// The attribute is created on first use; an existing attribute keeps its
// stored data type and the value is converted to it.
func (r *PostgresEntityRepository) SetAttribute(ctx context.Context, entityID int64, name string, value interface{}, dataType entities.DataType) error {
	return r.setAttribute(ctx, r.db, entityID, name, value, dataType)
}

// SetAttributes applies every provided entry independently; a failing entry
// does not undo the entries written before it.
func (r *PostgresEntityRepository) SetAttributes(ctx context.Context, entityID int64, attrs map[string]entities.AttributeInput) error {
	return r.setAttributes(ctx, r.db, entityID, attrs)
}

func (r *PostgresEntityRepository) setAttributes(ctx context.Context, q querier, entityID int64, attrs map[string]entities.AttributeInput) error {
	names := make([]string, 0, len(attrs))
	for name, in := range attrs {
		if in.Provided() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		in := attrs[name]
		if err := r.setAttribute(ctx, q, entityID, name, in.Value, in.Type); err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	return nil
}

func (r *PostgresEntityRepository) setAttribute(ctx context.Context, q querier, entityID int64, name string, value interface{}, dataType entities.DataType) error {
	// Reject unknown types before anything is written
	dataType, err := entities.ParseDataType(string(dataType))
	if err != nil {
		return err
	}

	attr, err := r.attributes.ensure(ctx, q, name, dataType, "")
	if err != nil {
		return err
	}

	if entities.IsNull(value) {
		query := `DELETE FROM eav_values WHERE entity_id = $1 AND attribute_id = $2`
		if _, err := q.ExecContext(ctx, query, entityID, attr.ID); err != nil {
			return fmt.Errorf("failed to clear attribute value: %w", classify(err))
		}
		return nil
	}

	v, err := entities.NewValue(attr.DataType, value)
	if err != nil {
		return err
	}
	cols := valueColumns(v)

	query := `
		INSERT INTO eav_values (
			entity_id, attribute_id,
			value_string, value_number, value_text, value_boolean, value_date,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (entity_id, attribute_id)
		DO UPDATE SET
			value_string = EXCLUDED.value_string,
			value_number = EXCLUDED.value_number,
			value_text = EXCLUDED.value_text,
			value_boolean = EXCLUDED.value_boolean,
			value_date = EXCLUDED.value_date,
			updated_at = EXCLUDED.updated_at
	`
	_, err = q.ExecContext(ctx, query,
		entityID, attr.ID,
		cols.str, cols.num, cols.text, cols.boolean, cols.date,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set attribute value: %w", classify(err))
	}

	return nil
}

// columns holds the five typed value columns of one eav_values row.
// Exactly one of them is valid for a stored value.
type columns struct {
	str     sql.NullString
	num     sql.NullFloat64
	text    sql.NullString
	boolean sql.NullInt16
	date    sql.NullTime
}

func valueColumns(v entities.Value) columns {
	var c columns
	switch val := v.(type) {
	case entities.StringValue:
		c.str = sql.NullString{String: string(val), Valid: true}
	case entities.NumberValue:
		c.num = sql.NullFloat64{Float64: float64(val), Valid: true}
	case entities.TextValue:
		c.text = sql.NullString{String: string(val), Valid: true}
	case entities.BoolValue:
		c.boolean = sql.NullInt16{Int16: val.Int(), Valid: true}
	case entities.DateValue:
		c.date = sql.NullTime{Time: time.Time(val), Valid: true}
	}
	return c
}

// value returns the first populated column as its variant. The order does
// not consult the attribute's data type.
func (c columns) value() (entities.Value, bool) {
	switch {
	case c.str.Valid:
		return entities.StringValue(c.str.String), true
	case c.num.Valid:
		return entities.NumberValue(c.num.Float64), true
	case c.text.Valid:
		return entities.TextValue(c.text.String), true
	case c.boolean.Valid:
		return entities.BoolValue(c.boolean.Int16 != 0), true
	case c.date.Valid:
		return entities.DateValue(c.date.Time), true
	}
	return nil, false
}
