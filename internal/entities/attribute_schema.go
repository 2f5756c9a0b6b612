package entities

import "fmt"

// AttributeDefinition declares an attribute ahead of its first write.
// Example (YAML):
//
//	- name: credits
//	  data_type: number
//	  description: Credit hours awarded on completion
type AttributeDefinition struct {
	Name        string   `json:"name" yaml:"name"`
	DataType    DataType `json:"data_type" yaml:"data_type"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Normalize validates the definition and fills in the default data type
func (d *AttributeDefinition) Normalize() error {
	if d.Name == "" {
		return ErrAttributeNameRequired
	}
	t, err := ParseDataType(string(d.DataType))
	if err != nil {
		return fmt.Errorf("attribute %q: %w", d.Name, err)
	}
	d.DataType = t
	return nil
}
