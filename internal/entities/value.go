package entities

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxStringLength is the capacity of the value_string column in characters
const MaxStringLength = 255

// Value is a typed attribute value. Exactly one variant exists per data type:
// StringValue, NumberValue, TextValue, BoolValue and DateValue.
type Value interface {
	// DataType returns the data type the variant is stored as
	DataType() DataType

	// Interface returns the plain Go value (string, float64, bool or time.Time)
	Interface() interface{}

	String() string
}

type (
	StringValue string
	NumberValue float64
	TextValue   string
	BoolValue   bool
	DateValue   time.Time
)

func (v StringValue) DataType() DataType     { return DataTypeString }
func (v StringValue) Interface() interface{} { return string(v) }
func (v StringValue) String() string         { return string(v) }

func (v NumberValue) DataType() DataType     { return DataTypeNumber }
func (v NumberValue) Interface() interface{} { return float64(v) }
func (v NumberValue) String() string         { return strconv.FormatFloat(float64(v), 'f', -1, 64) }

func (v TextValue) DataType() DataType     { return DataTypeText }
func (v TextValue) Interface() interface{} { return string(v) }
func (v TextValue) String() string         { return string(v) }

func (v BoolValue) DataType() DataType     { return DataTypeBoolean }
func (v BoolValue) Interface() interface{} { return bool(v) }
func (v BoolValue) String() string         { return strconv.FormatBool(bool(v)) }

// Int returns the 0/1 column representation
func (v BoolValue) Int() int16 {
	if v {
		return 1
	}
	return 0
}

func (v DateValue) DataType() DataType     { return DataTypeDate }
func (v DateValue) Interface() interface{} { return time.Time(v) }
func (v DateValue) String() string         { return time.Time(v).Format(time.RFC3339) }

// valueConstructors maps a declared data type to its variant constructor
var valueConstructors = map[DataType]func(raw interface{}) (Value, error){
	DataTypeString: func(raw interface{}) (Value, error) {
		s, err := toText(raw)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(s) > MaxStringLength {
			return nil, fmt.Errorf("%w: string longer than %d characters, use text", ErrInvalidValue, MaxStringLength)
		}
		return StringValue(s), nil
	},
	DataTypeNumber: func(raw interface{}) (Value, error) {
		n, err := toNumber(raw)
		if err != nil {
			return nil, err
		}
		return NumberValue(n), nil
	},
	DataTypeText: func(raw interface{}) (Value, error) {
		s, err := toText(raw)
		if err != nil {
			return nil, err
		}
		return TextValue(s), nil
	},
	DataTypeBoolean: func(raw interface{}) (Value, error) {
		b, err := toBool(raw)
		if err != nil {
			return nil, err
		}
		return BoolValue(b), nil
	},
	DataTypeDate: func(raw interface{}) (Value, error) {
		d, err := toDate(raw)
		if err != nil {
			return nil, err
		}
		return DateValue(d), nil
	},
}

// NewValue converts raw into the variant for dataType.
// Objects and arrays destined for string or text are serialized to JSON.
func NewValue(dataType DataType, raw interface{}) (Value, error) {
	construct, ok := valueConstructors[dataType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataType, dataType)
	}
	if v, ok := raw.(Value); ok {
		raw = v.Interface()
	}
	if IsNull(raw) {
		return nil, fmt.Errorf("%w: null", ErrInvalidValue)
	}
	return construct(raw)
}

// IsNull reports whether raw represents an absent value: nil, or a nil
// pointer, map or slice
func IsNull(raw interface{}) bool {
	if raw == nil {
		return true
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func toText(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return string(b), nil
}

func toNumber(raw interface{}) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case bool:
		if v {
			n = 1
		}
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
		}
		n = f
	default:
		return 0, fmt.Errorf("%w: cannot use %T as number", ErrInvalidValue, raw)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite number", ErrInvalidValue, n)
	}
	return n, nil
}

func toBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
		}
		return b, nil
	}
	if n, err := toNumber(raw); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("%w: cannot use %T as boolean", ErrInvalidValue, raw)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toDate(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		return *v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidValue, v)
	}
	return time.Time{}, fmt.Errorf("%w: cannot use %T as date", ErrInvalidValue, raw)
}
