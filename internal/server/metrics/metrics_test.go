package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Login("success")
	m.Login("success")
	m.Login("rejected")
	m.Signup("invalid")
	m.TokenIssued(true)
	m.TokenIssued(false)
	m.TokenIssued(false)
	m.TokenRevoked()
	m.TokenLookup("expired")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokensIssued.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokensIssued.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokensRevoked))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenLookups.WithLabelValues("expired")))
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("POST", "/api/auth/login", 200, 15*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Login("x")
		m.Signup("x")
		m.TokenIssued(true)
		m.TokenRevoked()
		m.TokenLookup("x")
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Login("success")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `authapi_session_logins_total{outcome="success"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
