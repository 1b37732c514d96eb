package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/pkg/serverutils"
	"source-intel-be/internal/repository/memory"
	"source-intel-be/internal/service"
	"source-intel-be/pkg/synthesis"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T, sources ...synthesis.Source) *fiber.App {
	t.Helper()
	if len(sources) == 0 {
		sources = synthesis.DefaultCatalog()
	}
	reg, err := synthesis.NewRegistry(sources...)
	require.NoError(t, err)
	engine, err := synthesis.NewEngine(synthesis.DefaultOptions(), reg, memory.NewSessionRepository(time.Minute), logger.NewNopLogger())
	require.NoError(t, err)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewSynthesisController(service.NewSynthesisService(engine, nil, nil, logger.NewNopLogger())).RegisterRoutes(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestSynthesisController_Classify(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, "POST", "/api/synthesis/v1/classify", `{"query":"latest kubernetes adoption trend"}`)
	require.Equal(t, 200, code)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "technical_trends", data["context"])
}

func TestSynthesisController_ClassifyValidation(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, "POST", "/api/synthesis/v1/classify", `{}`)
	assert.Equal(t, 400, code)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Data), "query")

	code, _ = do(t, app, "POST", "/api/synthesis/v1/classify", `{not json`)
	assert.Equal(t, 400, code)
}

func TestSynthesisController_SelectAndAnalytics(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, "POST", "/api/synthesis/v1/select", `{"query":"developer tools for api testing","session_id":"web-1","max_sources":2}`)
	require.Equal(t, 200, code)

	var sel struct {
		SessionID       string   `json:"session_id"`
		SelectedSources []string `json:"selected_sources"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sel))
	assert.Equal(t, "web-1", sel.SessionID)
	assert.NotEmpty(t, sel.SelectedSources)
	assert.LessOrEqual(t, len(sel.SelectedSources), 2)

	code, env = do(t, app, "GET", "/api/synthesis/v1/sessions/web-1/analytics", "")
	require.Equal(t, 200, code)
	var analytics struct {
		QueryCount int `json:"query_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &analytics))
	assert.Equal(t, 1, analytics.QueryCount)
}

func TestSynthesisController_SelectRejectsBadTarget(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, "POST", "/api/synthesis/v1/select", `{"query":"anything","target_quality":1.5}`)
	assert.Equal(t, 400, code)
	assert.Contains(t, string(env.Data), "targetquality")
}

func TestSynthesisController_SelectNoViableSources(t *testing.T) {
	broken := synthesis.Source{ID: "broken", BaseQuality: 2, AuthorityScore: 0.5}
	app := newTestApp(t, broken)

	code, env := do(t, app, "POST", "/api/synthesis/v1/select", `{"query":"anything at all"}`)
	assert.Equal(t, 422, code)
	assert.Contains(t, string(env.Data), "broken")
}

func TestSynthesisController_DecisionsWithoutAuditStore(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, "GET", "/api/synthesis/v1/sessions/web-1/decisions", "")
	assert.Equal(t, 503, code)
	assert.False(t, env.Success)

	code, _ = do(t, app, "GET", "/api/synthesis/v1/sessions/web-1/decisions?since=yesterday", "")
	assert.Equal(t, 400, code)
}

func TestSynthesisController_Sources(t *testing.T) {
	app := newTestApp(t)

	code, _ := do(t, app, "GET", "/api/synthesis/v1/sources", "")
	assert.Equal(t, 200, code)

	code, _ = do(t, app, "GET", "/api/synthesis/v1/sources/myspace", "")
	assert.Equal(t, 404, code)

	code, _ = do(t, app, "PUT", "/api/synthesis/v1/sources/lobsters",
		`{"name":"Lobsters","base_quality":0.8,"authority_score":0.7,"context_weights":{"technical_trends":1.3}}`)
	assert.Equal(t, 200, code)

	code, env := do(t, app, "GET", "/api/synthesis/v1/sources/lobsters", "")
	require.Equal(t, 200, code)
	assert.Contains(t, string(env.Data), `"name":"Lobsters"`)

	code, _ = do(t, app, "PUT", "/api/synthesis/v1/sources/lobsters", `{"base_quality":1.8}`)
	assert.Equal(t, 400, code)
}

func TestSynthesisController_UpdateCredibility(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, "POST", "/api/synthesis/v1/sources/reddit/credibility", `{"authority_score":0.35}`)
	require.Equal(t, 200, code)
	assert.Contains(t, string(env.Data), `"authority_score":0.35`)

	code, _ = do(t, app, "POST", "/api/synthesis/v1/sources/reddit/credibility", `{}`)
	assert.Equal(t, 400, code)

	code, _ = do(t, app, "POST", "/api/synthesis/v1/sources/myspace/credibility", `{"base_quality":0.5}`)
	assert.Equal(t, 404, code)
}

func TestSynthesisController_ScoreAndRemoveSource(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, "GET", "/api/synthesis/v1/sources/github/score?context=developer_insights", "")
	require.Equal(t, 200, code)
	assert.Contains(t, string(env.Data), `"context":"developer_insights"`)
	assert.Contains(t, string(env.Data), `"breakdown"`)

	code, _ = do(t, app, "GET", "/api/synthesis/v1/sources/github/score?context=astrology", "")
	assert.Equal(t, 400, code)

	code, _ = do(t, app, "DELETE", "/api/synthesis/v1/sources/github", "")
	assert.Equal(t, 200, code)

	code, _ = do(t, app, "GET", "/api/synthesis/v1/sources/github/score", "")
	assert.Equal(t, 404, code)
}
