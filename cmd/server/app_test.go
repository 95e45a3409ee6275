package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info", ShutdownTimeoutSeconds: 2},
		Auth: config.AuthConfig{
			JWTSecret:            "thisisaverylongsecretkeyfortestingpurposes",
			TokenLifetimeMinutes: 60,
		},
		LLM:  config.LLMConfig{ModelName: "gemini-2.5-flash", RequestTimeoutSeconds: 5},
		Task: config.TaskConfig{WorkerCount: 2, QueueSize: 10},
		Camera: config.CameraConfig{
			Available:         true,
			PermissionGranted: true,
			FacingModes:       []string{"environment"},
		},
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) *application {
	t.Helper()
	app, err := newApplication(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func TestNewApplication_InvalidSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	_, err := newApplication(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}

func TestNewApplication_BadDatabaseStopsRunner(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Database.URL = "mysql://localhost/chemlab"
	_, err := newApplication(context.Background(), cfg, discardLogger())
	assert.ErrorIs(t, err, config.ErrUnsupportedDatabaseURL)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t, testConfig())
	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `chemlab_http_requests_total{code="200",method="GET",route="/health"} 1`)
}

func TestRouter_LearnerFlow(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t, testConfig())
	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/learners", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg struct {
		LearnerID string `json:"learner_id"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reg))
	_ = resp.Body.Close()
	require.NotEmpty(t, reg.Token)

	do := func(method, path, body string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+reg.Token)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp = do(http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(http.MethodGet, "/api/lab", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(http.MethodPut, "/api/view", `{"view":"MOLECULES"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(http.MethodGet, "/api/viewer", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(http.MethodGet, "/api/tutor", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/dashboard", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/catalog/topics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	app, err := newApplication(context.Background(), testConfig(), discardLogger())
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, listener, app.setupRouter()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = app.learnerService.Register(context.Background())
	assert.Error(t, err)
}

func TestSetupTaskRunner_AppliesTimeout(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Task.TimeoutSeconds = 1
	runner, err := setupTaskRunner(cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(runner.Stop)

	errCh := make(chan error, 1)
	require.NoError(t, runner.Submit(context.Background(), task.NewFuncTask("slow", func(ctx context.Context) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return nil
	})))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not cancelled by the configured timeout")
	}
}

func TestStartEviction(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t, testConfig())
	assert.False(t, app.startEviction(context.Background()), "zero idle timeout disables eviction")

	cfg := testConfig()
	cfg.Workspace = config.WorkspaceConfig{IdleTimeoutMinutes: 30, SweepIntervalSeconds: 60}
	app = newTestApplication(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	assert.True(t, app.startEviction(ctx))
}
