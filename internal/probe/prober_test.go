package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"productwatch/internal/classifier"
	"productwatch/internal/config"
	"productwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProbeConfig() config.ProbeConfig {
	return config.ProbeConfig{
		MaxRetries:         3,
		BaseBackoffSeconds: 0,
		TimeoutSeconds:     5,
		UserAgent:          "test-agent",
	}
}

func newTestProber(t *testing.T) *Prober {
	t.Helper()
	return NewProber(testProbeConfig(), classifier.NewDefaultRegistry(zerolog.Nop()), zerolog.Nop())
}

const availablePage = `
<html><body>
	<h1>Test Product</h1>
	<button>Add to Cart</button>
	<span class="price">¥12,800</span>
</body></html>`

const unavailablePage = `
<html><body>
	<h1>Test Product</h1>
	<p>Sold Out</p>
	<span class="price">¥12,800</span>
</body></html>`

func TestCheck_AvailablePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(availablePage))
	}))
	defer server.Close()

	result := newTestProber(t).Check(context.Background(), server.URL)

	assert.Equal(t, models.ProbeOutcomeOK, result.Outcome)
	assert.True(t, result.IsAvailable)
	require.NotNil(t, result.Price)
	assert.Equal(t, 12800.0, *result.Price)
	assert.Equal(t, 1, result.Details["attempt"])
}

func TestCheck_UnavailablePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(unavailablePage))
	}))
	defer server.Close()

	result := newTestProber(t).Check(context.Background(), server.URL)

	assert.Equal(t, models.ProbeOutcomeOK, result.Outcome)
	assert.False(t, result.IsAvailable)
}

func TestCheck_RetriesExactlyMaxTimes(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result := newTestProber(t).Check(context.Background(), server.URL)

	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, models.ProbeOutcomeFetchFailed, result.Outcome)
	assert.False(t, result.IsAvailable)
	assert.Nil(t, result.Price)
	assert.Contains(t, result.Details["error"], "after 3 attempts")
}

func TestCheck_RecoversAfterTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(availablePage))
	}))
	defer server.Close()

	result := newTestProber(t).Check(context.Background(), server.URL)

	assert.Equal(t, models.ProbeOutcomeOK, result.Outcome)
	assert.True(t, result.IsAvailable)
	assert.Equal(t, 3, result.Details["attempt"])
}

func TestCheck_UnreachableHost(t *testing.T) {
	result := newTestProber(t).Check(context.Background(), "http://127.0.0.1:1/unreachable")

	assert.Equal(t, models.ProbeOutcomeFetchFailed, result.Outcome)
	assert.False(t, result.IsAvailable)
}

func TestCheck_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestProber(t).Check(ctx, server.URL)
	assert.Equal(t, models.ProbeOutcomeFetchFailed, result.Outcome)
}

func TestCheck_EmptyBodyIsParseableButUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(""))
	}))
	defer server.Close()

	result := newTestProber(t).Check(context.Background(), server.URL)

	// An empty document parses fine; the generic classifier just finds
	// nothing to call available.
	assert.Equal(t, models.ProbeOutcomeOK, result.Outcome)
	assert.False(t, result.IsAvailable)
}
