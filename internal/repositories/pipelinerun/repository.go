package pipelinerun

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"
)

var runColumns = []string{
	"id", "status", "source_path", "started_at", "finished_at",
	"reference_time", "window_start", "window_end",
	"rows_loaded", "rows_normalized", "rows_in_window", "rows_dropped_duration", "rows_deduplicated", "rows_published",
	"error",
}

// Repository handles pipeline run audit persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Create inserts the audit row for a run that just started.
func (r *Repository) Create(ctx context.Context, run models.PipelineRun) error {
	ctx, span := tracing.StartSpan(ctx, "pipelinerun.Repository.Create")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("pipeline_runs")
	sb.Cols("id", "status", "source_path", "started_at", "reference_time", "window_start", "window_end")
	sb.Values(run.ID, run.Status, run.SourcePath, run.StartedAt, run.ReferenceTime, run.WindowStart, run.WindowEnd)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": run.ID}).Error("Failed to create pipeline run")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create pipeline run")
	}
	return nil
}

// Complete marks the run succeeded and records its row counts.
func (r *Repository) Complete(ctx context.Context, run models.PipelineRun) error {
	ctx, span := tracing.StartSpan(ctx, "pipelinerun.Repository.Complete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("pipeline_runs")
	sb.Set(
		sb.Assign("status", models.RunStatusSucceeded),
		sb.Assign("finished_at", now),
		sb.Assign("rows_loaded", run.RowsLoaded),
		sb.Assign("rows_normalized", run.RowsNormalized),
		sb.Assign("rows_in_window", run.RowsInWindow),
		sb.Assign("rows_dropped_duration", run.RowsDroppedDuration),
		sb.Assign("rows_deduplicated", run.RowsDeduplicated),
		sb.Assign("rows_published", run.RowsPublished),
	)
	sb.Where(sb.Equal("id", run.ID))

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": run.ID}).Error("Failed to complete pipeline run")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete pipeline run")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("pipeline run %s not found", run.ID))
	}
	return nil
}

// Fail marks the run failed and records the error message.
func (r *Repository) Fail(ctx context.Context, id string, runErr error) error {
	ctx, span := tracing.StartSpan(ctx, "pipelinerun.Repository.Fail")
	defer span.End()

	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("pipeline_runs")
	sb.Set(
		sb.Assign("status", models.RunStatusFailed),
		sb.Assign("finished_at", now),
		sb.Assign("error", msg),
	)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": id}).Error("Failed to mark pipeline run failed")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark pipeline run failed")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("pipeline run %s not found", id))
	}
	return nil
}

// Latest returns the most recent runs, newest first.
func (r *Repository) Latest(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	ctx, span := tracing.StartSpan(ctx, "pipelinerun.Repository.Latest")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(runColumns...)
	sb.From("pipeline_runs")
	sb.OrderBy("started_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var runs []models.PipelineRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list pipeline runs")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list pipeline runs")
	}
	return runs, nil
}

// Count returns the total number of recorded runs.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "pipelinerun.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("pipeline_runs")

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count pipeline runs")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count pipeline runs")
	}
	return count, nil
}
