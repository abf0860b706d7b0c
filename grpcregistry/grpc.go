// Package grpcregistry exposes the anchor and authorization registries over
// gRPC for delegated submission.
//
// Only the signed (delegated) mutations are remoted: a remote caller has no
// cryptographic caller identity, so direct operations stay in-process. The
// serving daemon passes the administrative gate itself and relays
// client-signed payloads.
//
// We intentionally use protobuf well-known types (structpb.Struct) for
// requests and responses so this package does not require a protoc/codegen
// toolchain. Binary fields travel hex-encoded; timestamps travel as unix
// seconds.
//
// Proto definition: registry.proto.
package grpcregistry

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "xdao.anchorauth.grpcregistry.v1.Registry"

// RegistryServer is the server API for the Registry gRPC service.
type RegistryServer interface {
	SubmitAnchorSigned(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnchorCount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnchorAt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnchorHasExisted(context.Context, *structpb.Struct) (*structpb.Struct, error)

	AddAuthorizationSigned(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateAuthorizationSigned(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RevokeAuthorizationSigned(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationCountForOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationForOwnerAt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationCountForRecipient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationForRecipientAt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationCountForSource(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationForSourceAt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationHasExisted(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationValidated(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AuthorizationNonce(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedRegistryServer can be embedded to have forward compatible
// implementations.
type UnimplementedRegistryServer struct{}

func unimplemented(method string) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedRegistryServer) SubmitAnchorSigned(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("SubmitAnchorSigned")
}
func (UnimplementedRegistryServer) AnchorCount(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AnchorCount")
}
func (UnimplementedRegistryServer) AnchorAt(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AnchorAt")
}
func (UnimplementedRegistryServer) AnchorHasExisted(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AnchorHasExisted")
}
func (UnimplementedRegistryServer) AddAuthorizationSigned(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AddAuthorizationSigned")
}
func (UnimplementedRegistryServer) UpdateAuthorizationSigned(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("UpdateAuthorizationSigned")
}
func (UnimplementedRegistryServer) RevokeAuthorizationSigned(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("RevokeAuthorizationSigned")
}
func (UnimplementedRegistryServer) AuthorizationCountForOwner(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationCountForOwner")
}
func (UnimplementedRegistryServer) AuthorizationForOwnerAt(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationForOwnerAt")
}
func (UnimplementedRegistryServer) AuthorizationCountForRecipient(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationCountForRecipient")
}
func (UnimplementedRegistryServer) AuthorizationForRecipientAt(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationForRecipientAt")
}
func (UnimplementedRegistryServer) AuthorizationCountForSource(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationCountForSource")
}
func (UnimplementedRegistryServer) AuthorizationForSourceAt(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationForSourceAt")
}
func (UnimplementedRegistryServer) AuthorizationHasExisted(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationHasExisted")
}
func (UnimplementedRegistryServer) AuthorizationValidated(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationValidated")
}
func (UnimplementedRegistryServer) AuthorizationNonce(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return unimplemented("AuthorizationNonce")
}

// RegisterRegistryServer registers the Registry service on a gRPC server.
func RegisterRegistryServer(s grpc.ServiceRegistrar, srv RegistryServer) {
	s.RegisterService(&Registry_ServiceDesc, srv)
}

// RegistryClient is the client API for the Registry gRPC service.
type RegistryClient interface {
	SubmitAnchorSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AnchorCount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AnchorAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AnchorHasExisted(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

	AddAuthorizationSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateAuthorizationSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RevokeAuthorizationSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationCountForOwner(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationForOwnerAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationCountForRecipient(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationForRecipientAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationCountForSource(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationForSourceAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationHasExisted(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationValidated(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AuthorizationNonce(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type registryClient struct{ cc grpc.ClientConnInterface }

func NewRegistryClient(cc grpc.ClientConnInterface) RegistryClient { return &registryClient{cc: cc} }

func (c *registryClient) call(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *registryClient) SubmitAnchorSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "SubmitAnchorSigned", in, opts)
}
func (c *registryClient) AnchorCount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AnchorCount", in, opts)
}
func (c *registryClient) AnchorAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AnchorAt", in, opts)
}
func (c *registryClient) AnchorHasExisted(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AnchorHasExisted", in, opts)
}
func (c *registryClient) AddAuthorizationSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AddAuthorizationSigned", in, opts)
}
func (c *registryClient) UpdateAuthorizationSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "UpdateAuthorizationSigned", in, opts)
}
func (c *registryClient) RevokeAuthorizationSigned(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "RevokeAuthorizationSigned", in, opts)
}
func (c *registryClient) AuthorizationCountForOwner(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationCountForOwner", in, opts)
}
func (c *registryClient) AuthorizationForOwnerAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationForOwnerAt", in, opts)
}
func (c *registryClient) AuthorizationCountForRecipient(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationCountForRecipient", in, opts)
}
func (c *registryClient) AuthorizationForRecipientAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationForRecipientAt", in, opts)
}
func (c *registryClient) AuthorizationCountForSource(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationCountForSource", in, opts)
}
func (c *registryClient) AuthorizationForSourceAt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationForSourceAt", in, opts)
}
func (c *registryClient) AuthorizationHasExisted(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationHasExisted", in, opts)
}
func (c *registryClient) AuthorizationValidated(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationValidated", in, opts)
}
func (c *registryClient) AuthorizationNonce(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AuthorizationNonce", in, opts)
}

// methodDesc builds the server-side dispatch for one unary method. Every
// Registry method shares the same wire shape, so one constructor covers all
// of them.
func methodDesc(name string, call func(RegistryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	full := "/" + serviceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RegistryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(RegistryServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Registry_ServiceDesc is the grpc.ServiceDesc for the Registry service.
var Registry_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("SubmitAnchorSigned", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.SubmitAnchorSigned(ctx, in)
		}),
		methodDesc("AnchorCount", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AnchorCount(ctx, in)
		}),
		methodDesc("AnchorAt", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AnchorAt(ctx, in)
		}),
		methodDesc("AnchorHasExisted", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AnchorHasExisted(ctx, in)
		}),
		methodDesc("AddAuthorizationSigned", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AddAuthorizationSigned(ctx, in)
		}),
		methodDesc("UpdateAuthorizationSigned", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.UpdateAuthorizationSigned(ctx, in)
		}),
		methodDesc("RevokeAuthorizationSigned", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.RevokeAuthorizationSigned(ctx, in)
		}),
		methodDesc("AuthorizationCountForOwner", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationCountForOwner(ctx, in)
		}),
		methodDesc("AuthorizationForOwnerAt", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationForOwnerAt(ctx, in)
		}),
		methodDesc("AuthorizationCountForRecipient", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationCountForRecipient(ctx, in)
		}),
		methodDesc("AuthorizationForRecipientAt", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationForRecipientAt(ctx, in)
		}),
		methodDesc("AuthorizationCountForSource", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationCountForSource(ctx, in)
		}),
		methodDesc("AuthorizationForSourceAt", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationForSourceAt(ctx, in)
		}),
		methodDesc("AuthorizationHasExisted", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationHasExisted(ctx, in)
		}),
		methodDesc("AuthorizationValidated", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationValidated(ctx, in)
		}),
		methodDesc("AuthorizationNonce", func(s RegistryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.AuthorizationNonce(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "registry.proto",
}
