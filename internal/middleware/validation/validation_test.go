package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	handler := func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
	app.Post("/api/v1/query", handler)
	app.Get("/api/v1/query", handler)
	app.Get("/api/v1/query/history", handler)
	return app
}

func TestMiddlewarePassesValidQuery(t *testing.T) {
	app := newTestApp(Config{})

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"query":"What is NVDA trading at?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareRejectsOversizedQuery(t *testing.T) {
	app := newTestApp(Config{MaxQueryLength: 50})

	long := strings.Repeat("a", 51)
	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"query":"`+long+`"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMiddlewareRejectsOversizedGetQuery(t *testing.T) {
	app := newTestApp(Config{MaxQueryLength: 50})

	req := httptest.NewRequest("GET", "/api/v1/query?q="+strings.Repeat("a", 51), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMiddlewareRejectsContentType(t *testing.T) {
	app := newTestApp(Config{})

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader("query=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestMiddlewareRejectsMalformedJSON(t *testing.T) {
	app := newTestApp(Config{})

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"query":`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMiddlewareRejectsMarkup(t *testing.T) {
	app := newTestApp(Config{})

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"query":"<script>alert(1)</script>"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMiddlewareIgnoresHistoryPath(t *testing.T) {
	app := newTestApp(Config{MaxQueryLength: 5})

	req := httptest.NewRequest("GET", "/api/v1/query/history?limit=10", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
