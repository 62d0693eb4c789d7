package loki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

type lokiServer struct {
	mu       sync.Mutex
	requests []pushRequest
	tenant   string
	user     string
}

func (s *lokiServer) handle(w http.ResponseWriter, r *http.Request) {
	gz, err := gzip.NewReader(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var req pushRequest
	if err = json.NewDecoder(gz).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.tenant = r.Header.Get("X-Scope-OrgID")
	s.user, _, _ = r.BasicAuth()
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func Test_ConfigValidation(t *testing.T) {
	cfg := Config{}
	_, err := New(context.Background(), cfg, &MockLogger{})
	assert.Error(t, err)

	cfg.Url = "http://localhost:3100/loki/api/v1/push"
	pusher, err := New(context.Background(), cfg, &MockLogger{})
	require.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, cfg.Url, pusher.config.Url)
	assert.Equal(t, 500, pusher.config.BatchMaxSize)
	assert.Equal(t, 5*time.Second, pusher.config.BatchMaxWait)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func Test_StopFlushesPendingEntries(t *testing.T) {
	srv := &lokiServer{}
	server := httptest.NewServer(http.HandlerFunc(srv.handle))
	defer server.Close()

	pusher, err := New(context.Background(), Config{
		Url:          server.URL,
		BatchMaxWait: time.Hour,
		Labels:       map[string]string{"app": "job-finder"},
		TenantKey:    "X-Scope-OrgID",
		TenantValue:  "tenant",
		Username:     "user",
		Password:     "secret",
	}, &MockLogger{})
	require.NoError(t, err)

	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "db is down", ErrorType: "db"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "info", Message: "started"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "db is still down", ErrorType: "db"}))
	pusher.Stop()

	srv.mu.Lock()
	defer srv.mu.Unlock()

	require.Len(t, srv.requests, 1)
	assert.Equal(t, "tenant", srv.tenant)
	assert.Equal(t, "user", srv.user)

	streams := srv.requests[0].Streams
	require.Len(t, streams, 2)
	assert.Equal(t, map[string]string{"app": "job-finder", "level": "error", "error_type": "db"}, streams[0].Stream)
	assert.Len(t, streams[0].Values, 2)
	assert.Equal(t, map[string]string{"app": "job-finder", "level": "info"}, streams[1].Stream)
	assert.Len(t, streams[1].Values, 1)
}

func Test_BatchIsSentWhenFull(t *testing.T) {
	srv := &lokiServer{}
	server := httptest.NewServer(http.HandlerFunc(srv.handle))
	defer server.Close()

	pusher, err := New(context.Background(), Config{
		Url:          server.URL,
		BatchMaxSize: 2,
		BatchMaxWait: time.Hour,
	}, &MockLogger{})
	require.NoError(t, err)
	defer pusher.Stop()

	require.NoError(t, pusher.Push(LogEntry{Level: "info", Message: "one"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "info", Message: "two"}))

	assert.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.requests) == 1
	}, time.Second, 10*time.Millisecond)
}

func Test_PushAfterStop(t *testing.T) {
	pusher, err := New(context.Background(), Config{Url: "http://localhost:3100/loki/api/v1/push"}, &MockLogger{})
	require.NoError(t, err)

	pusher.Stop()
	pusher.Stop()

	assert.ErrorIs(t, pusher.Push(LogEntry{Level: "info", Message: "late"}), ErrStopped)
}

func Test_FailedSendIsReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	logger := &MockLogger{}
	pusher, err := New(context.Background(), Config{Url: server.URL}, logger)
	require.NoError(t, err)

	require.NoError(t, pusher.Push(LogEntry{Level: "warning", Message: "slow"}))
	pusher.Stop()

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.Equal(t, []string{"failed to send logs"}, logger.errors)
}
