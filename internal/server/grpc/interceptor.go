package grpc

import (
	"context"

	"github.com/lanzath/authapi/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const bearerKey ctxKey = "bearer"

// protected lists the methods that need an access token.
var protected = map[string]bool{
	MethodLogout:      true,
	MethodCurrentUser: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if protected[info.FullMethod] {
		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "Unauthorized")
		}

		ctx = context.WithValue(ctx, bearerKey, accessToken)
	}

	return handler(ctx, req)
}

func bearerFromContext(ctx context.Context) string {
	v, _ := ctx.Value(bearerKey).(string)
	return v
}
