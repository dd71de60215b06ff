package authv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bliss.auth.v1.ClientAuth"

// Full method names.
const (
	ClientAuth_RegisterBasic_FullMethodName    = "/" + ServiceName + "/RegisterBasic"
	ClientAuth_OAuthCallback_FullMethodName    = "/" + ServiceName + "/OAuthCallback"
	ClientAuth_ReissueTransient_FullMethodName = "/" + ServiceName + "/ReissueTransient"
	ClientAuth_CompleteProfile_FullMethodName  = "/" + ServiceName + "/CompleteProfile"
	ClientAuth_Promote_FullMethodName          = "/" + ServiceName + "/Promote"
	ClientAuth_Rotate_FullMethodName           = "/" + ServiceName + "/Rotate"
)

// ClientAuthServer is the server API.
type ClientAuthServer interface {
	RegisterBasic(context.Context, *RegisterBasicRequest) (*AuthResponse, error)
	OAuthCallback(context.Context, *OAuthCallbackRequest) (*AuthResponse, error)
	ReissueTransient(context.Context, *ReissueTransientRequest) (*AuthResponse, error)
	CompleteProfile(context.Context, *CompleteProfileRequest) (*AuthResponse, error)
	Promote(context.Context, *PromoteRequest) (*AuthResponse, error)
	Rotate(context.Context, *RotateRequest) (*AuthResponse, error)
}

// RegisterClientAuthServer registers srv on s.
func RegisterClientAuthServer(s grpc.ServiceRegistrar, srv ClientAuthServer) {
	s.RegisterService(&ClientAuth_ServiceDesc, srv)
}

// ClientAuth_ServiceDesc describes the service for grpc.Server.
var ClientAuth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClientAuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("RegisterBasic", ClientAuthServer.RegisterBasic),
		unary("OAuthCallback", ClientAuthServer.OAuthCallback),
		unary("ReissueTransient", ClientAuthServer.ReissueTransient),
		unary("CompleteProfile", ClientAuthServer.CompleteProfile),
		unary("Promote", ClientAuthServer.Promote),
		unary("Rotate", ClientAuthServer.Rotate),
	},
	Streams: []grpc.StreamDesc{},
}

func unary[Req any](method string, call func(ClientAuthServer, context.Context, *Req) (*AuthResponse, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ClientAuthServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ClientAuthServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ClientAuthClient is the client API.
type ClientAuthClient interface {
	RegisterBasic(ctx context.Context, in *RegisterBasicRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	OAuthCallback(ctx context.Context, in *OAuthCallbackRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	ReissueTransient(ctx context.Context, in *ReissueTransientRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	CompleteProfile(ctx context.Context, in *CompleteProfileRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Promote(ctx context.Context, in *PromoteRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Rotate(ctx context.Context, in *RotateRequest, opts ...grpc.CallOption) (*AuthResponse, error)
}

type clientAuthClient struct{ cc grpc.ClientConnInterface }

// NewClientAuthClient wraps cc. Calls use the JSON codec.
func NewClientAuthClient(cc grpc.ClientConnInterface) ClientAuthClient { return &clientAuthClient{cc: cc} }

func (c *clientAuthClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (*AuthResponse, error) {
	out := new(AuthResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientAuthClient) RegisterBasic(ctx context.Context, in *RegisterBasicRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return c.invoke(ctx, ClientAuth_RegisterBasic_FullMethodName, in, opts)
}

func (c *clientAuthClient) OAuthCallback(ctx context.Context, in *OAuthCallbackRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return c.invoke(ctx, ClientAuth_OAuthCallback_FullMethodName, in, opts)
}

func (c *clientAuthClient) ReissueTransient(ctx context.Context, in *ReissueTransientRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return c.invoke(ctx, ClientAuth_ReissueTransient_FullMethodName, in, opts)
}

func (c *clientAuthClient) CompleteProfile(ctx context.Context, in *CompleteProfileRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return c.invoke(ctx, ClientAuth_CompleteProfile_FullMethodName, in, opts)
}

func (c *clientAuthClient) Promote(ctx context.Context, in *PromoteRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return c.invoke(ctx, ClientAuth_Promote_FullMethodName, in, opts)
}

func (c *clientAuthClient) Rotate(ctx context.Context, in *RotateRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return c.invoke(ctx, ClientAuth_Rotate_FullMethodName, in, opts)
}
