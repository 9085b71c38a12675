package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/roster-engine/api"
	"github.com/fleetops/roster-engine/roster"
	"github.com/fleetops/roster-engine/roster/store"
)

func TestAPI_RateLimit_SecondRequestThrottled(t *testing.T) {
	// GIVEN: A router allowing 1 request per second with burst 1
	// WHEN: One client sends two back-to-back requests
	// THEN: The first succeeds, the second returns 429

	mem := store.NewMemory()
	require.NoError(t, mem.SaveSettings(context.Background(), roster.DefaultSettings()))
	engine := roster.NewEngine(mem, mem, mem, roster.NopNotifier{})

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	h := api.NewHandler(engine, mem, mem, log, time.Second)
	router := api.NewRouter(h, api.RouterOptions{
		RateLimitPerSec: 1,
		RateLimitBurst:  1,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestIPRateLimiter_ClientsAreIndependent(t *testing.T) {
	// GIVEN: A limiter with burst 1
	// WHEN: Two clients each send their first request
	// THEN: Neither is throttled by the other's consumption

	rl := api.NewIPRateLimiter(1, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"10.0.0.1:4000", "10.0.0.2:4000"} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "first request from %s", addr)
	}

	// The first client's bucket is empty now.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
