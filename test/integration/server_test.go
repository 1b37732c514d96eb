package integration

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"source-intel-be/internal/bootstrap"
	"source-intel-be/internal/config"
	"source-intel-be/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer_InProcess boots the full container without external infrastructure.
func TestServer_InProcess(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_FILE_PATH", dir+"/app.log")
	t.Setenv("STREAM_LOG_FILE_PATH", dir+"/stream.log")
	t.Setenv("NATS_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SOURCE_CATALOG_PATH", "")

	cfg := config.Load()
	container, err := bootstrap.NewContainer(nil, cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	app := server.New(cfg, container).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req := httptest.NewRequest("POST", "/api/synthesis/v1/select", strings.NewReader(`{"query":"latest kubernetes adoption trend"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Data struct {
			SessionID string `json:"session_id"`
			Context   string `json:"context"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Data.SessionID)
	assert.Equal(t, "technical_trends", body.Data.Context)
}
