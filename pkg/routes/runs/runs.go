package runs

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/refresh"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// RunLister reads run audit rows
type RunLister interface {
	Latest(ctx context.Context, limit int) ([]models.PipelineRun, error)
	Count(ctx context.Context) (int, error)
}

// Refresher starts background refresh runs
type Refresher interface {
	TriggerAsync(trigger string) (string, error)
}

// Handler serves the pipeline run endpoints
type Handler struct {
	runs RunLister
	svc  Refresher
}

// NewHandler creates a new runs handler
func NewHandler(runs RunLister, svc Refresher) *Handler {
	return &Handler{runs: runs, svc: svc}
}

// Register registers run routes on the group
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/latest", h.Latest)
	g.POST("/refresh", h.Trigger)
}

// List returns the most recent runs, newest first
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "runs_handler.List")
	defer span.End()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 20
	}

	items, err := h.runs.Latest(ctx, limit)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list runs")
	}

	totalCount, err := h.runs.Count(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to count runs")
	}

	return c.JSON(http.StatusOK, models.RunListResponse{
		Items:      items,
		TotalCount: totalCount,
	})
}

// Latest returns the most recent run
func (h *Handler) Latest(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "runs_handler.Latest")
	defer span.End()

	items, err := h.runs.Latest(ctx, 1)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get latest run")
	}
	if len(items) == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "no runs recorded yet")
	}

	return c.JSON(http.StatusOK, items[0])
}

// Trigger starts a refresh run in the background
func (h *Handler) Trigger(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "runs_handler.Trigger")
	defer span.End()

	runID, err := h.svc.TriggerAsync(refresh.TriggerManual)
	if err != nil {
		if errors.Is(err, refresh.ErrRunInFlight) {
			return httperror.NewHTTPError(http.StatusConflict, "a refresh run is already in flight")
		}
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to trigger refresh")
	}

	return c.JSON(http.StatusAccepted, models.RunTriggeredResponse{
		RunID:  runID,
		Status: models.RunStatusRunning,
	})
}
