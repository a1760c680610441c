package api_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/app"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
	"github.com/aussiebroadwan/vidhub/pkg/vidhubsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for API end-to-end tests. Each test
 * gets its own application (store, pepper, upload dir) served over a real
 * listener and is driven through the Go SDK.
 */

const (
	testPassword = "Secret123!"
)

// generousLimits keeps the rate limiter out of the way; tests fire many
// requests from one address.
func generousLimits() httpx.RateLimits {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	return httpx.RateLimits{Strict: cfg, Moderate: cfg, Lenient: cfg, Public: cfg}
}

func baseConfig(t *testing.T) app.Config {
	t.Helper()
	dir := t.TempDir()

	return app.Config{
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,

		StoreDriver:  app.StoreSQLite,
		DatabaseFile: filepath.Join(dir, "vidhub.db"),
		PepperFile:   filepath.Join(dir, "pepper"),

		TokenIssuer:        "vidhub-e2e",
		AccessTokenSecret:  "e2e-access-secret",
		RefreshTokenSecret: "e2e-refresh-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		CookieSecure:       false,

		UploadDriver:   app.UploadDisk,
		UploadDir:      filepath.Join(dir, "media"),
		UploadMaxBytes: 8 << 20,

		RateLimits: generousLimits(),
	}
}

// setupAPIServer starts the application for cfg and returns its base URL.
// The upload base URL is pointed at the test listener so returned media URLs
// resolve.
func setupAPIServer(t *testing.T, cfg app.Config) string {
	t.Helper()

	var handler atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.Load().(http.Handler).ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg.UploadBaseURL = srv.URL + "/media"

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	handler.Store(application.Handler())
	return srv.URL
}

// setupMongoConfig starts a throwaway mongod and points cfg at it. Skipped
// when no container runtime is available.
func setupMongoConfig(t *testing.T) app.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("mongo e2e test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	cfg := baseConfig(t)
	cfg.StoreDriver = app.StoreMongo
	cfg.MongoURI = uri
	cfg.MongoDatabase = "vidhub_e2e"
	return cfg
}

func fileUpload(name string) *vidhubsdk.FileUpload {
	return &vidhubsdk.FileUpload{Name: name, Content: bytes.NewReader([]byte("bytes of " + name))}
}

// registerUser creates an account with an avatar and returns its profile.
func registerUser(t *testing.T, client *vidhubsdk.SDKClient, username string) *vidhubsdk.User {
	t.Helper()

	user, err := client.Register(t.Context(), vidhubsdk.RegisterRequest{
		Fullname: "Test " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: testPassword,
		Avatar:   fileUpload(username + ".png"),
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func performLogin(t *testing.T, client *vidhubsdk.SDKClient, username string) *vidhubsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), vidhubsdk.LoginRequest{
		Username: username,
		Password: testPassword,
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken())
	require.NotEmpty(t, session.RefreshToken())
	return session
}

// requireStatus asserts err is an API error carrying code.
func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, vidhubsdk.StatusCode(err), fmt.Sprintf("unexpected error: %v", err))
}

func assertHealthy(t *testing.T, health *vidhubsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Version)
	require.NotEmpty(t, health.Uptime)
}
