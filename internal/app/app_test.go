package app

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"google.golang.org/grpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/mesto/internal/config"
	"github.com/patric-chuzhbe/mesto/internal/db/jsondb"
	"github.com/patric-chuzhbe/mesto/internal/db/memorystorage"
	"github.com/patric-chuzhbe/mesto/internal/grpcserver"
)

var testSigningKey = base64.URLEncoding.EncodeToString([]byte(strings.Repeat("s", config.MinSigningKeyLength)))

func newTestApp(t *testing.T, args ...string) *App {
	t.Setenv("TOKEN_SIGNING_SECRET_KEY", testSigningKey)
	t.Setenv("PASSWORD_HASH_COST", "4")

	app, err := New(config.WithArgs(args))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	return app
}

func TestNewServesTheAPI(t *testing.T) {
	app := newTestApp(t)
	assert.IsType(t, &memorystorage.MemoryStorage{}, app.db)

	server := httptest.NewServer(app.httpHandler)
	defer server.Close()

	client := resty.New().SetBaseURL(server.URL)

	resp, err := client.R().Get("/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"email":"app@example.com","password":"secret-pass"}`).
		Post("/signup")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())

	var token struct {
		Token string `json:"token"`
	}
	resp, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"email":"app@example.com","password":"secret-pass"}`).
		SetResult(&token).
		Post("/signin")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.NotEmpty(t, token.Token)

	resp, err = client.R().SetAuthToken(token.Token).Get("/users/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, resp.String(), "app@example.com")
	assert.NotContains(t, resp.String(), "password")

	resp, err = client.R().Get("/cards")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

func TestNewSelectsTheFileStorage(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "mesto.json")
	app := newTestApp(t, "-f", fileName)

	assert.IsType(t, &jsondb.JSONDB{}, app.db)
	assert.FileExists(t, fileName)
}

func TestNewFailsWithoutSigningKey(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET_KEY", "")

	_, err := New(config.WithArgs(nil))
	assert.Error(t, err)
}

func TestShutdownClosesEverything(t *testing.T) {
	app := newTestApp(t)

	called := false
	app.tracerShutdown = func(context.Context) error {
		called = true
		return nil
	}

	server := &http.Server{Handler: app.httpHandler}
	grpcServer, listener, err := newTestGRPC(app)
	require.NoError(t, err)
	go func() { _ = grpcServer.Serve(listener) }()

	assert.NoError(t, app.shutdown(server, grpcServer))
	assert.True(t, called)
}

func newTestGRPC(app *App) (*grpc.Server, net.Listener, error) {
	return grpcserver.NewGRPCServer("127.0.0.1:0", grpcserver.NewMestoHandler(app.service), app.auth)
}
