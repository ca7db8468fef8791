// Package httpserver is the JSON-over-HTTP boundary of the auth API, built on gin.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanzath/authapi/internal/logging"
	"github.com/lanzath/authapi/internal/server/metrics"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/lanzath/authapi/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Sessions is the session service as seen by the HTTP boundary.
type Sessions interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, bearer string) (string, error)
	CurrentUser(ctx context.Context, bearer string) (*models.User, error)
}

type HTTPServer struct {
	address  string
	sessions Sessions
	logger   logging.Logger
	metrics  *metrics.Metrics
	engine   *gin.Engine
}

// NewHTTPServer builds the router. m may be nil, in which case /metrics is
// not mounted.
func NewHTTPServer(address string, l logging.Logger, sessions Sessions, m *metrics.Metrics) *HTTPServer {
	s := &HTTPServer{
		address:  address,
		sessions: sessions,
		logger:   l.With("module", "http_server"),
		metrics:  m,
	}
	s.engine = s.routes()
	return s
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api/auth")
	api.POST("/signup", s.signup)
	api.POST("/login", s.login)

	authed := api.Group("", requireBearer())
	authed.GET("/logout", s.logout)
	authed.POST("/logout", s.logout)
	authed.GET("/user", s.user)

	return r
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
