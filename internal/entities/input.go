package entities

import (
	"encoding/json"
	"fmt"
)

// AttributeInput is one entry of an attribute batch write.
// An entry that was never provided is skipped; a provided entry with a nil
// Value clears the attribute.
type AttributeInput struct {
	Value    interface{}
	Type     DataType
	provided bool
}

// SetTo returns an input that stores value as dataType
func SetTo(value interface{}, dataType DataType) AttributeInput {
	return AttributeInput{Value: value, Type: dataType, provided: true}
}

// Clear returns an input that removes the attribute value
func Clear(dataType DataType) AttributeInput {
	return AttributeInput{Type: dataType, provided: true}
}

// Provided reports whether the entry carries a value or an explicit clear
func (in AttributeInput) Provided() bool {
	return in.provided
}

// UnmarshalJSON decodes {"value": ..., "type": "..."}. A missing "value" key
// leaves the entry unprovided, while "value": null clears the attribute.
func (in *AttributeInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode attribute input: %w", err)
	}

	*in = AttributeInput{}
	if t, ok := raw["type"]; ok {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return fmt.Errorf("failed to decode attribute type: %w", err)
		}
		in.Type = DataType(s)
	}
	if v, ok := raw["value"]; ok {
		in.provided = true
		if err := json.Unmarshal(v, &in.Value); err != nil {
			return fmt.Errorf("failed to decode attribute value: %w", err)
		}
	}
	return nil
}

// MarshalJSON encodes the input; an unprovided entry omits "value"
func (in AttributeInput) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"type": in.Type}
	if in.provided {
		out["value"] = in.Value
	}
	return json.Marshal(out)
}

// EntityInput describes a new entity. IsActive defaults to true.
type EntityInput struct {
	Name       string                    `json:"name"`
	IsActive   *bool                     `json:"is_active,omitempty"`
	ParentID   *int64                    `json:"parent_id,omitempty"`
	Attributes map[string]AttributeInput `json:"attributes,omitempty"`
}

// EntityPatch is a partial update; nil fields are left untouched.
// ClearParent detaches the entity from its grouping entity.
type EntityPatch struct {
	Name        *string                   `json:"name,omitempty"`
	IsActive    *bool                     `json:"is_active,omitempty"`
	ParentID    *int64                    `json:"parent_id,omitempty"`
	ClearParent bool                      `json:"clear_parent,omitempty"`
	Attributes  map[string]AttributeInput `json:"attributes,omitempty"`
}
