package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/logging"
	"github.com/lanzath/authapi/internal/server/metrics"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/lanzath/authapi/internal/server/registry"
	"github.com/lanzath/authapi/internal/server/repositories/accesstokens"
	"github.com/lanzath/authapi/internal/server/repositories/repomanager"
	"github.com/lanzath/authapi/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server  *HTTPServer
	tokens  *accesstokens.MemoryRepository
	metrics *metrics.Metrics
}

func newTestEnv() *testEnv {
	m := repomanager.NewMemoryRepositoryManager()
	mx := metrics.New()
	reg := registry.New(m.AccessTokens(nil), registry.WithObserver(mx))
	creds := services.NewCredentialStore(nil, m, bcrypt.MinCost, time.Second)
	sessions := services.NewSessionService(creds, reg, []byte("secret"), logging.Nop{}, mx)

	return &testEnv{
		server:  NewHTTPServer(":0", logging.Nop{}, sessions, mx),
		tokens:  m.AccessTokens(nil).(*accesstokens.MemoryRepository),
		metrics: mx,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type loginBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

func TestAPI_FullScenario(t *testing.T) {
	e := newTestEnv()

	rec := e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "a@x.com", created["email"])
	assert.NotEmpty(t, created["id"])
	assert.NotContains(t, created, "password_hash")
	assert.NotContains(t, rec.Body.String(), "secret123")

	before := time.Now().UTC()
	rec = e.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com", "password": "secret123", "remember_me": false}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[loginBody](t, rec)
	assert.Equal(t, "Bearer", login.TokenType)
	expires, err := time.Parse(common.DateTimeLayout, login.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(registry.DefaultTTL), expires, 2*time.Second)

	rec = e.do(t, http.MethodGet, "/api/auth/user", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, created["id"], me["id"])

	rec = e.do(t, http.MethodGet, "/api/auth/logout", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully logged out."}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/auth/user", nil, login.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
}

func TestAPI_LoginWrongPassword(t *testing.T) {
	e := newTestEnv()
	e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "a@x.com", "password": "secret123"}, "")

	rec := e.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
	assert.Zero(t, e.tokens.Len())

	rec = e.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Contains(t, rec.Body.String(), `authapi_session_logins_total{outcome="rejected"} 1`)
}

func TestAPI_RememberMe(t *testing.T) {
	e := newTestEnv()
	e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "a@x.com", "password": "secret123"}, "")

	before := time.Now().UTC().Truncate(time.Second)
	rec := e.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@x.com", "password": "secret123", "remember_me": true}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	expires, err := time.Parse(common.DateTimeLayout, decode[loginBody](t, rec).ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(7*24*time.Hour), expires, 2*time.Second)
}

func TestAPI_LoginWithFormBody(t *testing.T) {
	e := newTestEnv()
	e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "a@x.com", "password": "secret123"}, "")

	form := url.Values{"email": {"a@x.com"}, "password": {"secret123"}, "remember_me": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[loginBody](t, rec).AccessToken)
	assert.Equal(t, 1, e.tokens.Len())
}

func TestAPI_SignupValidation(t *testing.T) {
	e := newTestEnv()

	rec := e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "nope"}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{
		"message": "The given data was invalid.",
		"errors": {
			"email": ["The email must be a valid email address."],
			"password": ["The password field is required."]
		}
	}`, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/auth/signup", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[validationResponse](t, rec)
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "password")
}

func TestAPI_SignupPasswordTooLong(t *testing.T) {
	e := newTestEnv()

	long := strings.Repeat("x", 73)
	rec := e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "a@x.com", "password": long}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decode[validationResponse](t, rec)
	assert.Equal(t, []string{"The password may not be greater than 72 bytes."}, body.Errors["password"])

	rec = e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "a@x.com", "password": long[:72]}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAPI_SignupDuplicateEmail(t *testing.T) {
	e := newTestEnv()

	rec := e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"email": "A@X.com", "password": "other"}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[validationResponse](t, rec)
	assert.Equal(t, []string{"The email has already been taken."}, body.Errors["email"])
}

func TestAPI_MalformedJSON(t *testing.T) {
	e := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_LogoutNeedsBearer(t *testing.T) {
	e := newTestEnv()

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}

	rec := e.do(t, http.MethodPost, "/api/auth/logout", nil, "anything")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully logged out."}`, rec.Body.String())
}

func TestAPI_UserWithGarbageToken(t *testing.T) {
	e := newTestEnv()

	rec := e.do(t, http.MethodGet, "/api/auth/user", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	e := newTestEnv()

	rec := e.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `authapi_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"} 1`)
}

// stubSessions returns canned errors for every operation.
type stubSessions struct {
	err error
}

func (s *stubSessions) Signup(context.Context, services.SignupInput) (*models.User, error) {
	return nil, s.err
}

func (s *stubSessions) Login(context.Context, services.LoginInput) (*services.LoginResult, error) {
	return nil, s.err
}

func (s *stubSessions) Logout(context.Context, string) (string, error) {
	return "", s.err
}

func (s *stubSessions) CurrentUser(context.Context, string) (*models.User, error) {
	return nil, s.err
}

func TestAPI_InfrastructureErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "internal",
			err:    fmt.Errorf("db: %w: connection refused", common.ErrorInternal),
			status: http.StatusInternalServerError,
			body:   `{"message":"Server Error"}`,
		},
		{
			name:   "timeout",
			err:    fmt.Errorf("db: %w: %w", common.ErrorUnavailable, context.DeadlineExceeded),
			status: http.StatusServiceUnavailable,
			body:   `{"message":"Service Unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &testEnv{server: NewHTTPServer(":0", logging.Nop{}, &stubSessions{err: tt.err}, nil)}

			for _, r := range []struct{ method, path string }{
				{http.MethodPost, "/api/auth/signup"},
				{http.MethodPost, "/api/auth/login"},
				{http.MethodPost, "/api/auth/logout"},
				{http.MethodGet, "/api/auth/user"},
			} {
				rec := e.do(t, r.method, r.path, gin.H{"email": "a@x.com", "password": "p"}, "tok")
				assert.Equal(t, tt.status, rec.Code, r.path)
				assert.JSONEq(t, tt.body, rec.Body.String(), r.path)
				assert.NotContains(t, rec.Body.String(), "connection refused")
			}
		})
	}
}

func TestAPI_NoMetricsRouteWithoutMetrics(t *testing.T) {
	e := &testEnv{server: NewHTTPServer(":0", logging.Nop{}, &stubSessions{}, nil)}

	rec := e.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc  "))
	assert.Empty(t, bearerToken("Token abc"))
	assert.Empty(t, bearerToken("abc"))
	assert.Empty(t, bearerToken(""))
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", logging.Nop{}, &stubSessions{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
