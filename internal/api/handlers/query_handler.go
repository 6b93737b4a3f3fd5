package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/orchestrator"
	"github.com/saadtariq57/richtv-chatbot/internal/storage/sqlite"
	"github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

type QueryHandler struct {
	orchestrator *orchestrator.Orchestrator
	store        *sqlite.Client
}

func NewQueryHandler(orch *orchestrator.Orchestrator, store *sqlite.Client) *QueryHandler {
	return &QueryHandler{
		orchestrator: orch,
		store:        store,
	}
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	response := h.orchestrator.Answer(c.Context(), req.Query)
	return c.JSON(response)
}

// HandleQueryGet serves the same pipeline for quick manual testing via a
// query parameter.
func (h *QueryHandler) HandleQueryGet(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}
	response := h.orchestrator.Answer(c.Context(), q)
	return c.JSON(response)
}

func (h *QueryHandler) GetQueryHistory(c *fiber.Ctx) error {
	if h.store == nil {
		return c.JSON(fiber.Map{"history": []interface{}{}})
	}

	limit := c.QueryInt("limit", 20)
	records, err := h.store.GetHistory(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to load query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load query history",
		})
	}
	if records == nil {
		records = []sqlite.QueryRecord{}
	}
	return c.JSON(fiber.Map{"history": records})
}
