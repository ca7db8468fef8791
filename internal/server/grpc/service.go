package grpc

import (
	"context"

	"github.com/lanzath/authapi/internal/server/models"
	"github.com/lanzath/authapi/internal/server/services"
	"google.golang.org/grpc"
)

const serviceName = "authapi.v1.AuthService"

// Full method names, as seen by interceptors.
const (
	MethodSignup      = "/" + serviceName + "/Signup"
	MethodLogin       = "/" + serviceName + "/Login"
	MethodLogout      = "/" + serviceName + "/Logout"
	MethodCurrentUser = "/" + serviceName + "/CurrentUser"
)

type SignupRequest = services.SignupInput

type LoginRequest = services.LoginInput

type LoginResponse = services.LoginResult

type LogoutRequest struct{}

type LogoutResponse struct {
	Message string `json:"message"`
}

type CurrentUserRequest struct{}

// AuthServiceServer is implemented by GRPCServer.
type AuthServiceServer interface {
	Signup(context.Context, *SignupRequest) (*models.User, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	CurrentUser(context.Context, *CurrentUserRequest) (*models.User, error)
}

// AuthServiceDesc describes the service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Signup", Handler: unaryHandler(MethodSignup, AuthServiceServer.Signup)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, AuthServiceServer.Login)},
		{MethodName: "Logout", Handler: unaryHandler(MethodLogout, AuthServiceServer.Logout)},
		{MethodName: "CurrentUser", Handler: unaryHandler(MethodCurrentUser, AuthServiceServer.CurrentUser)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "authapi/v1/auth",
}

// unaryHandler adapts a typed service method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuthServiceClient calls the service over a connection that uses the JSON codec.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func (c *AuthServiceClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*models.User, error) {
	out := new(models.User)
	if err := c.invoke(ctx, MethodSignup, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, MethodLogin, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	out := new(LogoutResponse)
	if err := c.invoke(ctx, MethodLogout, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) CurrentUser(ctx context.Context, in *CurrentUserRequest, opts ...grpc.CallOption) (*models.User, error) {
	out := new(models.User)
	if err := c.invoke(ctx, MethodCurrentUser, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
