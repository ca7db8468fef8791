package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/lanzath/authapi/internal/dbx"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/lanzath/authapi/internal/server/registry"
	"github.com/lanzath/authapi/internal/server/repositories/accesstokens"
	"github.com/lanzath/authapi/internal/server/repositories/repomanager"
	"github.com/lanzath/authapi/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

type fixture struct {
	manager     *repomanager.MemoryRepositoryManager
	tokens      *accesstokens.MemoryRepository
	credentials *CredentialStore
	registry    *registry.Registry
	sessions    *SessionService
	observer    *recordingObserver
	clock       *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFixture() *fixture {
	m := repomanager.NewMemoryRepositoryManager()
	clock := &testClock{now: time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)}
	reg := registry.New(m.AccessTokens(nil), registry.WithClock(clock.Now))
	creds := NewCredentialStore(nil, m, bcrypt.MinCost, time.Second)
	obs := &recordingObserver{}

	return &fixture{
		manager:     m,
		tokens:      m.AccessTokens(nil).(*accesstokens.MemoryRepository),
		credentials: creds,
		registry:    reg,
		sessions:    NewSessionService(creds, reg, testSecret, nil, obs),
		observer:    obs,
		clock:       clock,
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	logins  []string
	signups []string
}

func (o *recordingObserver) Login(outcome string) {
	o.mu.Lock()
	o.logins = append(o.logins, outcome)
	o.mu.Unlock()
}

func (o *recordingObserver) Signup(outcome string) {
	o.mu.Lock()
	o.signups = append(o.signups, outcome)
	o.mu.Unlock()
}

// failingUsers is a users.Repository whose every call fails with err.
type failingUsers struct {
	err   error
	block bool
}

func (f *failingUsers) wait(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *failingUsers) Create(ctx context.Context, _ *models.User) (*models.User, error) {
	return nil, f.wait(ctx)
}

func (f *failingUsers) GetUserByEmail(ctx context.Context, _ string) (*models.User, error) {
	return nil, f.wait(ctx)
}

func (f *failingUsers) GetUserByID(ctx context.Context, _ string) (*models.User, error) {
	return nil, f.wait(ctx)
}

type fakeRepoManager struct {
	users users.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) AccessTokens(dbx.DBTX) accesstokens.Repository {
	return accesstokens.NewMemoryRepository()
}

// fakeRegistry lets tests inject registry failures.
type fakeRegistry struct {
	issueErr  error
	lookupErr error
	revokeErr error
	lookupOut *models.AccessToken
	revoked   []string
}

func (f *fakeRegistry) Issue(_ context.Context, userID string, rememberMe bool) (*models.AccessToken, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	now := time.Now().UTC()
	return &models.AccessToken{ID: "tok", UserID: userID, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}, nil
}

func (f *fakeRegistry) Lookup(context.Context, string) (*models.AccessToken, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.lookupOut, nil
}

func (f *fakeRegistry) Revoke(_ context.Context, id string) error {
	f.revoked = append(f.revoked, id)
	return f.revokeErr
}

var errBoom = errors.New("boom")
