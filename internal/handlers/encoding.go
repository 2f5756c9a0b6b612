package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/asakaida/unicatalog/internal/entities"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EntityToStruct converts the flat record view of e into a Struct.
// Timestamps become RFC 3339 strings and numbers become doubles.
func EntityToStruct(e *entities.Entity) (*structpb.Struct, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity %d: %w", e.ID, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to convert entity %d: %w", e.ID, err)
	}
	return out, nil
}

// AttributeToStruct converts an attribute dictionary row into a Struct
func AttributeToStruct(a *entities.Attribute) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":          float64(a.ID),
		"name":        a.Name,
		"data_type":   string(a.DataType),
		"description": a.Description,
		"created_at":  a.CreatedAt.Format(time.RFC3339Nano),
	})
}

// EntitiesToStruct returns {"entities": [...]}
func EntitiesToStruct(list []*entities.Entity) (*structpb.Struct, error) {
	values := make([]*structpb.Value, 0, len(list))
	for _, e := range list {
		s, err := EntityToStruct(e)
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(s))
	}
	return listStruct("entities", values), nil
}

// AttributesToStruct returns {"attributes": [...]}
func AttributesToStruct(list []*entities.Attribute) (*structpb.Struct, error) {
	values := make([]*structpb.Value, 0, len(list))
	for _, a := range list {
		s, err := AttributeToStruct(a)
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(s))
	}
	return listStruct("attributes", values), nil
}

func listStruct(key string, values []*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		key: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

// decodeStruct decodes req into dst through its JSON form
func decodeStruct(req *structpb.Struct, dst interface{}) error {
	if req == nil {
		req = &structpb.Struct{}
	}
	data, err := protojson.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

// int64Field reads a required integral number field
func int64Field(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > 1<<53 {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int64(n.NumberValue), nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func boolField(req *structpb.Struct, name string) bool {
	return req.GetFields()[name].GetBoolValue()
}

func isNullField(req *structpb.Struct, name string) bool {
	v, ok := req.GetFields()[name]
	if !ok {
		return false
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return null
}
