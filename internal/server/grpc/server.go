// Package grpc exposes the session service over gRPC. Messages are JSON
// encoded (see CodecName) and the access token travels in the
// "access_token" metadata key.
package grpc

import (
	"context"
	"net"

	"github.com/lanzath/authapi/internal/logging"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/lanzath/authapi/internal/server/services"
	"google.golang.org/grpc"
)

// Sessions is the session service as seen by the gRPC boundary.
type Sessions interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, bearer string) (string, error)
	CurrentUser(ctx context.Context, bearer string) (*models.User, error)
}

type GRPCServer struct {
	address  string
	sessions Sessions
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, sessions Sessions) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: sessions,
	}
}

// newServer creates a grpc.Server with the interceptors and service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&AuthServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
