package entities

import (
	"encoding/json"
	"time"
)

// Entity is one logical catalog record (e.g. a course) together with its
// dynamic attributes.
// Example: course 42 "Intro to Databases" {course_code: "CS101", credits: 3}
type Entity struct {
	ID         int64
	Name       string
	IsActive   bool
	ParentID   *int64 // grouping entity (e.g. the subject a course belongs to)
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Attributes map[string]Value
}

// Attribute returns the value stored under name
func (e *Entity) Attribute(name string) (Value, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

// Flatten returns the flat record view: first-class columns followed by the
// dynamic attributes. An attribute named like a first-class column overwrites it.
func (e *Entity) Flatten() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Attributes)+6)
	out["id"] = e.ID
	out["name"] = e.Name
	out["is_active"] = e.IsActive
	if e.ParentID != nil {
		out["parent_id"] = *e.ParentID
	} else {
		out["parent_id"] = nil
	}
	out["created_at"] = e.CreatedAt
	out["updated_at"] = e.UpdatedAt

	for name, v := range e.Attributes {
		out[name] = v.Interface()
	}
	return out
}

// MarshalJSON encodes the flat record view
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Flatten())
}
