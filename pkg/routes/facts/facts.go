package facts

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// FactReader reads published fact rows
type FactReader interface {
	List(ctx context.Context, limit, offset int) ([]models.RequestFact, error)
	Count(ctx context.Context) (int, error)
}

// Handler serves the published fact table
type Handler struct {
	facts FactReader
}

// NewHandler creates a new facts handler
func NewHandler(facts FactReader) *Handler {
	return &Handler{facts: facts}
}

// Register registers fact routes on the group
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
}

// List returns published facts in created_at order
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "facts_handler.List")
	defer span.End()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit < 1 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.facts.List(ctx, limit, offset)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list facts")
	}

	totalCount, err := h.facts.Count(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to count facts")
	}

	return c.JSON(http.StatusOK, models.FactListResponse{
		Items:      items,
		TotalCount: totalCount,
	})
}
