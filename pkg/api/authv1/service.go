// Package authv1 is the contract of the auth service.
package authv1

import (
	"context"

	"eventreward/pkg/errutil"
	"eventreward/pkg/rpc"

	"google.golang.org/grpc"
)

const ServiceName = "eventreward.auth.v1.AuthService"

type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*User, error)
	Login(context.Context, *LoginRequest) (*TokenPair, error)
	Refresh(context.Context, *RefreshRequest) (*TokenPair, error)
	UpdateUserRoles(context.Context, *UpdateUserRolesRequest) (*User, error)
}

func server(srv any) AuthServiceServer { return srv.(AuthServiceServer) }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "Register", func(srv any, ctx context.Context, req *RegisterRequest) (*User, error) {
			return server(srv).Register(ctx, req)
		}),
		rpc.Unary(ServiceName, "Login", func(srv any, ctx context.Context, req *LoginRequest) (*TokenPair, error) {
			return server(srv).Login(ctx, req)
		}),
		rpc.Unary(ServiceName, "Refresh", func(srv any, ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
			return server(srv).Refresh(ctx, req)
		}),
		rpc.Unary(ServiceName, "UpdateUserRoles", func(srv any, ctx context.Context, req *UpdateUserRolesRequest) (*User, error) {
			return server(srv).UpdateUserRoles(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventreward/auth/v1",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// AuthServiceClient returns errutil.BaseError values rebuilt from the gRPC status.
type AuthServiceClient interface {
	AuthServiceServer
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any) (*Resp, error) {
	out, err := rpc.Invoke[Resp](ctx, cc, ServiceName, method, req)
	if err != nil {
		return nil, errutil.FromGRPCError(err)
	}
	return out, nil
}

func (c *authServiceClient) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	return invoke[User](ctx, c.cc, "Register", req)
}

func (c *authServiceClient) Login(ctx context.Context, req *LoginRequest) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, "Login", req)
}

func (c *authServiceClient) Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, "Refresh", req)
}

func (c *authServiceClient) UpdateUserRoles(ctx context.Context, req *UpdateUserRolesRequest) (*User, error) {
	return invoke[User](ctx, c.cc, "UpdateUserRoles", req)
}
