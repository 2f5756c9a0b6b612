package entities

import (
	"fmt"
	"time"
)

// Attribute is an entry of the attribute dictionary shared by all entities.
// Name and DataType are fixed once the attribute exists.
type Attribute struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DataType    DataType  `json:"data_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// String returns a string representation of the attribute
// Format: name:data_type
func (a *Attribute) String() string {
	return fmt.Sprintf("%s:%s", a.Name, a.DataType)
}

// Validate checks if the attribute is valid
func (a *Attribute) Validate() error {
	if a.Name == "" {
		return ErrAttributeNameRequired
	}
	if !a.DataType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDataType, a.DataType)
	}
	return nil
}
