package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// CatalogServiceName is the fully qualified gRPC service name
const CatalogServiceName = "unicatalog.v1.CatalogService"

// Method names of the catalog service
const (
	MethodCreateEntity   = "CreateEntity"
	MethodGetEntity      = "GetEntity"
	MethodListEntities   = "ListEntities"
	MethodUpdateEntity   = "UpdateEntity"
	MethodDeleteEntity   = "DeleteEntity"
	MethodSetAttribute   = "SetAttribute"
	MethodSetAttributes  = "SetAttributes"
	MethodSearchEntities = "SearchEntities"
	MethodFilterEntities = "FilterEntities"
	MethodListAttributes = "ListAttributes"
)

// CatalogServer is the server API of the catalog service. Requests and
// responses are JSON-shaped google.protobuf.Struct messages, so the service
// needs no generated stubs.
type CatalogServer interface {
	CreateEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEntities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetAttribute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetAttributes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchEntities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FilterEntities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAttributes(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(CatalogServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func structMethod(name string, call structCall) grpc.MethodDesc {
	fullMethod := "/" + CatalogServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CatalogServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CatalogServiceDesc describes the catalog service for grpc.Server
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		structMethod(MethodCreateEntity, CatalogServer.CreateEntity),
		structMethod(MethodGetEntity, CatalogServer.GetEntity),
		structMethod(MethodListEntities, CatalogServer.ListEntities),
		structMethod(MethodUpdateEntity, CatalogServer.UpdateEntity),
		structMethod(MethodDeleteEntity, CatalogServer.DeleteEntity),
		structMethod(MethodSetAttribute, CatalogServer.SetAttribute),
		structMethod(MethodSetAttributes, CatalogServer.SetAttributes),
		structMethod(MethodSearchEntities, CatalogServer.SearchEntities),
		structMethod(MethodFilterEntities, CatalogServer.FilterEntities),
		structMethod(MethodListAttributes, CatalogServer.ListAttributes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "unicatalog/v1/catalog.proto",
}

// RegisterCatalogServer registers srv with s
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

// CatalogClient calls the catalog service over a client connection
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogClient creates a client on cc
func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

// Call invokes method with req and returns the response struct
func (c *CatalogClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+CatalogServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
