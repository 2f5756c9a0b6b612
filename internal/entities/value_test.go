package entities

import (
	"errors"
	"testing"
	"time"
)

func TestNewValue(t *testing.T) {
	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dataType DataType
		raw      interface{}
		want     Value
	}{
		{name: "string", dataType: DataTypeString, raw: "CS101", want: StringValue("CS101")},
		{name: "number into string", dataType: DataTypeString, raw: 42, want: StringValue("42")},
		{name: "bool into string", dataType: DataTypeString, raw: true, want: StringValue("true")},
		{name: "array into string", dataType: DataTypeString, raw: []string{"CS101", "CS102"}, want: StringValue(`["CS101","CS102"]`)},
		{name: "object into text", dataType: DataTypeText, raw: map[string]interface{}{"week": 1}, want: TextValue(`{"week":1}`)},
		{name: "text", dataType: DataTypeText, raw: "long description", want: TextValue("long description")},
		{name: "float", dataType: DataTypeNumber, raw: 9.99, want: NumberValue(9.99)},
		{name: "int", dataType: DataTypeNumber, raw: 3, want: NumberValue(3)},
		{name: "numeric string", dataType: DataTypeNumber, raw: " 4.5 ", want: NumberValue(4.5)},
		{name: "bool true", dataType: DataTypeBoolean, raw: true, want: BoolValue(true)},
		{name: "bool from 0", dataType: DataTypeBoolean, raw: 0, want: BoolValue(false)},
		{name: "bool from string", dataType: DataTypeBoolean, raw: "true", want: BoolValue(true)},
		{name: "date", dataType: DataTypeDate, raw: date, want: DateValue(date)},
		{name: "date from string", dataType: DataTypeDate, raw: "2025-09-01", want: DateValue(date)},
		{name: "existing variant", dataType: DataTypeNumber, raw: NumberValue(7), want: NumberValue(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewValue(tt.dataType, tt.raw)
			if err != nil {
				t.Fatalf("NewValue() unexpected error: %v", err)
			}
			if got.DataType() != tt.dataType {
				t.Errorf("NewValue().DataType() = %v, want %v", got.DataType(), tt.dataType)
			}
			if dv, ok := tt.want.(DateValue); ok {
				if !time.Time(got.(DateValue)).Equal(time.Time(dv)) {
					t.Errorf("NewValue() = %v, want %v", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("NewValue() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNewValue_Errors(t *testing.T) {
	long := make([]byte, MaxStringLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name     string
		dataType DataType
		raw      interface{}
		wantErr  error
	}{
		{name: "unknown data type", dataType: "integer", raw: 1, wantErr: ErrInvalidDataType},
		{name: "null", dataType: DataTypeString, raw: nil, wantErr: ErrInvalidValue},
		{name: "not a number", dataType: DataTypeNumber, raw: "three", wantErr: ErrInvalidValue},
		{name: "object as number", dataType: DataTypeNumber, raw: map[string]int{"a": 1}, wantErr: ErrInvalidValue},
		{name: "not a boolean", dataType: DataTypeBoolean, raw: "maybe", wantErr: ErrInvalidValue},
		{name: "not a date", dataType: DataTypeDate, raw: "next week", wantErr: ErrInvalidValue},
		{name: "string too long", dataType: DataTypeString, raw: string(long), wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewValue(tt.dataType, tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewValue() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBoolValue_Int(t *testing.T) {
	if got := BoolValue(true).Int(); got != 1 {
		t.Errorf("BoolValue(true).Int() = %d, want 1", got)
	}
	if got := BoolValue(false).Int(); got != 0 {
		t.Errorf("BoolValue(false).Int() = %d, want 0", got)
	}
}

func TestIsNull(t *testing.T) {
	var nilPtr *string
	s := "x"

	tests := []struct {
		name string
		raw  interface{}
		want bool
	}{
		{name: "nil", raw: nil, want: true},
		{name: "nil pointer", raw: nilPtr, want: true},
		{name: "pointer", raw: &s, want: false},
		{name: "zero number", raw: 0, want: false},
		{name: "empty string", raw: "", want: false},
		{name: "nil map", raw: map[string]interface{}(nil), want: true},
		{name: "nil slice", raw: []interface{}(nil), want: true},
		{name: "empty map", raw: map[string]interface{}{}, want: false},
		{name: "empty slice", raw: []interface{}{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNull(tt.raw); got != tt.want {
				t.Errorf("IsNull(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
