package grpc

import (
	"context"
	"errors"

	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	user, err := s.sessions.Signup(ctx, *req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return user, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := s.sessions.Login(ctx, *req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return res, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *LogoutRequest) (*LogoutResponse, error) {
	msg, err := s.sessions.Logout(ctx, bearerFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &LogoutResponse{Message: msg}, nil
}

func (s *GRPCServer) CurrentUser(ctx context.Context, _ *CurrentUserRequest) (*models.User, error) {
	user, err := s.sessions.CurrentUser(ctx, bearerFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return user, nil
}

// toStatus maps the error taxonomy onto gRPC codes. Infrastructure details
// are logged, never returned.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var verr *common.ValidationError

	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "Unauthorized")
	case errors.Is(err, common.ErrorUnavailable):
		s.logger.Error(ctx, "storage unavailable", "error", err)
		return status.Error(codes.Unavailable, "service unavailable")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
