package factrequest

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/runctx"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"
)

// Repository handles fact table persistence and reads
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// ReplaceAll swaps the published fact table for the provided rows in a single
// transaction. If anything fails the previous table contents stay in place.
func (r *Repository) ReplaceAll(ctx context.Context, facts []models.RequestFact) error {
	ctx, span := tracing.StartSpan(ctx, "factrequest.Repository.ReplaceAll")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom("request_facts")
	query, args := del.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to clear request facts")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear request facts")
	}

	// bulk insert in batches
	const batchSize = 500
	for i := 0; i < len(facts); i += batchSize {
		end := i + batchSize
		if end > len(facts) {
			end = len(facts)
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("request_facts")
		sb.Cols(models.FactColumns...)
		for _, f := range facts[i:end] {
			sb.Values(f.UniqueKey, f.CreatedAt, f.ClosedAt, f.ResolutionUpdatedAt, f.Agency, f.ComplaintType, f.Descriptor, f.Status, f.Borough, f.City, f.IncidentZip, f.LocationType, f.AddressType, f.Latitude, f.Longitude, f.HoursToClose)
		}
		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"batch_start": i,
				"batch_rows":  end - i,
			}).Error("Failed to insert request facts")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert request facts")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"rows": len(facts),
		}).Error("Failed to commit transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id": runctx.GetRunID(ctx),
		"rows":   len(facts),
	}).Info("Published request facts")
	return nil
}

// List returns published facts ordered by created_at then unique_key.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.RequestFact, error) {
	ctx, span := tracing.StartSpan(ctx, "factrequest.Repository.List")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(models.FactColumns...)
	sb.From("request_facts")
	sb.OrderBy("created_at ASC", "unique_key ASC")
	sb.Limit(limit)
	sb.Offset(offset)
	query, args := sb.Build()

	var facts []models.RequestFact
	if err := r.db.SelectContext(ctx, &facts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list request facts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list request facts")
	}
	return facts, nil
}

// Count returns the number of published fact rows.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "factrequest.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("request_facts")
	query, args := sb.Build()

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count request facts")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count request facts")
	}
	return count, nil
}
