package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackup-sh/stackup/internal/config"
	"github.com/stackup-sh/stackup/internal/health"
	"github.com/stackup-sh/stackup/internal/testutils"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Poll.MaxAttempts = 2
	cfg.Poll.IntervalSeconds = 1
	cfg.Poll.TimeoutSeconds = 1
	return cfg
}

func TestPoll(t *testing.T) {
	t.Run("responding service is ready on the first attempt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		poller := health.NewPoller(testConfig(), testutils.Logger(t))
		results := poller.Poll(context.Background(), []health.Endpoint{
			{Name: "api", URL: server.URL + "/health"},
		})

		require.Len(t, results, 1)
		assert.Equal(t, health.StateReady, results[0].State)
		assert.Equal(t, 1, results[0].Attempts)
		assert.NoError(t, results[0].LastErr)
	})

	t.Run("any response counts as reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		poller := health.NewPoller(testConfig(), testutils.Logger(t))
		results := poller.Poll(context.Background(), []health.Endpoint{
			{Name: "ui", URL: server.URL},
		})

		require.Len(t, results, 1)
		assert.Equal(t, health.StateReady, results[0].State)
	})

	t.Run("unreachable service exhausts the budget without failing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		poller := health.NewPoller(testConfig(), testutils.Logger(t))

		start := time.Now()
		results := poller.Poll(context.Background(), []health.Endpoint{
			{Name: "mcp", URL: server.URL + "/health"},
		})
		elapsed := time.Since(start)

		require.Len(t, results, 1)
		assert.Equal(t, health.StateStarting, results[0].State)
		assert.Equal(t, 2, results[0].Attempts)
		assert.Error(t, results[0].LastErr)
		// One sleep between the two attempts, plus request overhead.
		assert.Less(t, elapsed, 5*time.Second)
	})

	t.Run("endpoints are polled in order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		poller := health.NewPoller(testConfig(), testutils.Logger(t))
		results := poller.Poll(context.Background(), []health.Endpoint{
			{Name: "ui", URL: server.URL},
			{Name: "api", URL: server.URL},
		})

		require.Len(t, results, 2)
		assert.Equal(t, "ui", results[0].Endpoint.Name)
		assert.Equal(t, "api", results[1].Endpoint.Name)
	})
}

func TestEndpoints(t *testing.T) {
	services := config.DefaultConfig().Services
	endpoints := health.Endpoints(services)

	require.Len(t, endpoints, 3)
	assert.Equal(t, "ui", endpoints[0].Name)
	assert.Equal(t, "http://localhost:3737/", endpoints[0].URL)
	assert.Equal(t, "http://localhost:8181/health", endpoints[1].URL)
	assert.Equal(t, "http://localhost:8051/health", endpoints[2].URL)
}
