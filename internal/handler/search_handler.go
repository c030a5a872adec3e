package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// CatalogSearcher exposes ranked catalog search for the search endpoint.
type CatalogSearcher interface {
	SearchMovies(ctx context.Context, query string, year int) ([]models.CatalogResult, error)
}

// SearchHandler proxies catalog search to the movie catalog.
type SearchHandler struct {
	catalog CatalogSearcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(catalog CatalogSearcher) *SearchHandler {
	return &SearchHandler{catalog: catalog}
}

// Search returns ranked catalog matches for a query.
// GET /api/v1/search?query=...&year=...
func (h *SearchHandler) Search(c fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query parameter is required"})
	}
	year := fiber.Query(c, "year", 0)

	results, err := h.catalog.SearchMovies(c.Context(), query, year)
	if err != nil {
		slog.Error("catalog search failed", "query", query, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to search movies"})
	}
	return c.JSON(fiber.Map{"results": results})
}
