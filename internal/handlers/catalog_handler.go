package handlers

import (
	"context"
	"strings"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/asakaida/unicatalog/internal/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// CatalogHandler serves the catalog service over gRPC
type CatalogHandler struct {
	service services.CatalogServiceInterface
}

var _ CatalogServer = (*CatalogHandler)(nil)

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service services.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// CreateEntity handles {"name", "is_active"?, "parent_id"?, "attributes"?}
// and returns {"id"}
func (h *CatalogHandler) CreateEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input entities.EntityInput
	if err := decodeStruct(req, &input); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	id, err := h.service.CreateEntity(ctx, &input)
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{"id": float64(id)})
}

// GetEntity handles {"id"} and returns the flat record
func (h *CatalogHandler) GetEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(req, "id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	entity, err := h.service.GetEntityByID(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := EntityToStruct(entity)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ListEntities handles {"include_inactive"?, "parent_id"?}
func (h *CatalogHandler) ListEntities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	includeInactive := boolField(req, "include_inactive")

	var list []*entities.Entity
	var err error
	if _, ok := req.GetFields()["parent_id"]; ok {
		parentID, perr := int64Field(req, "parent_id")
		if perr != nil {
			return nil, status.Error(codes.InvalidArgument, perr.Error())
		}
		list, err = h.service.ListChildren(ctx, parentID, includeInactive)
	} else {
		list, err = h.service.GetAllEntities(ctx, includeInactive)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	return respondEntities(list)
}

// UpdateEntity handles {"id", "name"?, "is_active"?, "parent_id"?, "attributes"?}.
// "parent_id": null detaches the entity from its parent.
func (h *CatalogHandler) UpdateEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(req, "id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var patch entities.EntityPatch
	if err := decodeStruct(req, &patch); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if isNullField(req, "parent_id") {
		patch.ClearParent = true
	}

	entity, err := h.service.UpdateEntity(ctx, id, &patch)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := EntityToStruct(entity)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// DeleteEntity handles {"id"}
func (h *CatalogHandler) DeleteEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(req, "id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := h.service.DeleteEntity(ctx, id); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// SetAttribute handles {"entity_id", "name", "value", "type"?}.
// "value": null clears the attribute.
func (h *CatalogHandler) SetAttribute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entityID, err := int64Field(req, "entity_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	name := stringField(req, "name")
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	value, ok := req.GetFields()["value"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "value is required (use null to clear)")
	}

	err = h.service.SetAttributeValue(ctx, entityID, name, value.AsInterface(), entities.DataType(stringField(req, "type")))
	if err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// SetAttributes handles {"entity_id", "attributes": {name: {"value", "type"}}}
func (h *CatalogHandler) SetAttributes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entityID, err := int64Field(req, "entity_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var body struct {
		Attributes map[string]entities.AttributeInput `json:"attributes"`
	}
	if err := decodeStruct(req, &body); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := h.service.SetEntityAttributes(ctx, entityID, body.Attributes); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// SearchEntities handles {"term"?, "attribute"?}
func (h *CatalogHandler) SearchEntities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	list, err := h.service.SearchEntities(ctx, stringField(req, "term"), stringField(req, "attribute"))
	if err != nil {
		return nil, toStatus(err)
	}
	return respondEntities(list)
}

// FilterEntities handles {"expression", "include_inactive"?}
func (h *CatalogHandler) FilterEntities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	expression := stringField(req, "expression")
	if expression == "" {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}

	list, err := h.service.FilterEntities(ctx, expression, boolField(req, "include_inactive"))
	if err != nil {
		return nil, toStatus(err)
	}
	return respondEntities(list)
}

// ListAttributes returns the attribute dictionary
func (h *CatalogHandler) ListAttributes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	attrs, err := h.service.GetAllAttributes(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := AttributesToStruct(attrs)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func respondEntities(list []*entities.Entity) (*structpb.Struct, error) {
	out, err := EntitiesToStruct(list)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
