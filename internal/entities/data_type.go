package entities

import (
	"fmt"
	"strings"
)

// DataType is the declared type of an attribute. It decides which typed
// value column holds every value of that attribute.
type DataType string

const (
	DataTypeString  DataType = "string"  // short text, value_string
	DataTypeNumber  DataType = "number"  // value_number
	DataTypeText    DataType = "text"    // long text, value_text
	DataTypeBoolean DataType = "boolean" // value_boolean, stored as 0/1
	DataTypeDate    DataType = "date"    // value_date
)

// DataTypes lists all recognized data types in column order.
var DataTypes = []DataType{
	DataTypeString,
	DataTypeNumber,
	DataTypeText,
	DataTypeBoolean,
	DataTypeDate,
}

// IsValid reports whether t is one of the recognized data types
func (t DataType) IsValid() bool {
	switch t {
	case DataTypeString, DataTypeNumber, DataTypeText, DataTypeBoolean, DataTypeDate:
		return true
	}
	return false
}

// ParseDataType parses a data type name. An empty name defaults to string.
func ParseDataType(s string) (DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DataTypeString, nil
	}
	t := DataType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDataType, s)
	}
	return t, nil
}
