package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/pkg/serverutils"
	internalWS "source-intel-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamApp() *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewSessionStreamHandler(internalWS.NewHub(nil, logger.NewNopLogger()), logger.NewNopLogger()).RegisterRoutes(app.Group("/api"))
	return app
}

func TestSessionStream_RequiresUpgrade(t *testing.T) {
	resp, err := newStreamApp().Test(httptest.NewRequest("GET", "/api/synthesis/v1/sessions/web-1/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestSessionStream_RejectsLongSessionID(t *testing.T) {
	path := "/api/synthesis/v1/sessions/" + strings.Repeat("x", 200) + "/stream"
	resp, err := newStreamApp().Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
