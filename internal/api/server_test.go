package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/restock-engine/internal/config"
	"github.com/andresuchdata/restock-engine/internal/restock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: "release", AllowedOrigins: []string{"*"}},
		Engine: restock.DefaultConfig(),
		Cache:  config.CacheConfig{Enabled: true, RedisHost: "127.0.0.1", RedisPort: "1"},
	}
}

func TestNewServerFallsBackWithoutRedis(t *testing.T) {
	s := NewServer(testConfig())

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/restock/rules", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	s := NewServer(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
