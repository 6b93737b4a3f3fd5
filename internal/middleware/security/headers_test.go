package security

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(cfg HeadersConfig) *fiber.App {
	app := fiber.New()
	app.Use(Headers(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestHeadersSet(t *testing.T) {
	app := newTestApp(HeadersConfig{IsDevelopment: true})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
}

func TestHeadersHSTSOutsideDevelopment(t *testing.T) {
	app := newTestApp(HeadersConfig{IsDevelopment: false})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	assert.Contains(t, resp.Header.Get("Strict-Transport-Security"), "max-age=31536000")
}
