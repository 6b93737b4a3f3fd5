package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

// Queries are natural language, so screening is limited to markup injection.
// SQL keyword screening would false-positive on ordinary finance questions
// ("any update on NVDA"), and the store only writes through bound parameters.
var markupPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

// Config bounds what the query endpoints will accept.
type Config struct {
	MaxQueryLength      int
	AllowedContentTypes []string
}

// Middleware rejects malformed or oversized query requests before they
// reach the handlers. Empty queries pass through; the handlers own that
// response.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 2000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get("Content-Type")
			if contentType != "" && !contentTypeAllowed(contentType, cfg.AllowedContentTypes) {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if strings.HasSuffix(c.Path(), "/query") {
			query, ok := requestQuery(c)
			if !ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}
			if len(query) > cfg.MaxQueryLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Query exceeds maximum length",
				})
			}
			if markupPattern.MatchString(query) {
				logger.Warn("Blocked query with markup injection",
					zap.String("ip", c.IP()))
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid query content",
				})
			}
		}

		return c.Next()
	}
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	for _, allowedType := range allowed {
		if strings.Contains(contentType, allowedType) {
			return true
		}
	}
	return false
}

func requestQuery(c *fiber.Ctx) (string, bool) {
	if c.Method() == fiber.MethodGet {
		return c.Query("q"), true
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", false
	}
	return req.Query, true
}
