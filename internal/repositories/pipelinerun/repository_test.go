package pipelinerun_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/internal/repositories/pipelinerun"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/models"
)

func getTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func getTestDB(t *testing.T) database.DB {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		t.Skip("DB_HOST not set, skipping database test")
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "sorrel"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

func testRun(id string) models.PipelineRun {
	reference := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	return models.PipelineRun{
		ID:            id,
		Status:        models.RunStatusRunning,
		SourcePath:    "data/service_requests.csv",
		StartedAt:     time.Now().UTC(),
		ReferenceTime: reference,
		WindowStart:   time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		WindowEnd:     time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

// findRun scans the latest runs for the given ID.
func findRun(t *testing.T, repo *pipelinerun.Repository, id string) models.PipelineRun {
	t.Helper()
	runs, err := repo.Latest(context.Background(), 50)
	require.NoError(t, err)
	for _, run := range runs {
		if run.ID == id {
			return run
		}
	}
	t.Fatalf("run %s not found in latest runs", id)
	return models.PipelineRun{}
}

func TestRepository_CreateAndComplete(t *testing.T) {
	db := getTestDB(t)
	repo := pipelinerun.NewRepository(db, getTestLogger())
	ctx := context.Background()

	run := testRun(uuid.New().String())
	require.NoError(t, repo.Create(ctx, run))

	created := findRun(t, repo, run.ID)
	assert.Equal(t, models.RunStatusRunning, created.Status)
	assert.Nil(t, created.FinishedAt)
	assert.True(t, run.ReferenceTime.Equal(created.ReferenceTime))
	assert.True(t, run.WindowStart.Equal(created.WindowStart))

	run.RowsLoaded = 1200
	run.RowsNormalized = 1200
	run.RowsInWindow = 900
	run.RowsDroppedDuration = 40
	run.RowsDeduplicated = 60
	run.RowsPublished = 840
	require.NoError(t, repo.Complete(ctx, run))

	completed := findRun(t, repo, run.ID)
	assert.Equal(t, models.RunStatusSucceeded, completed.Status)
	assert.NotNil(t, completed.FinishedAt)
	assert.Equal(t, 1200, completed.RowsLoaded)
	assert.Equal(t, 1200, completed.RowsNormalized)
	assert.Equal(t, 900, completed.RowsInWindow)
	assert.Equal(t, 40, completed.RowsDroppedDuration)
	assert.Equal(t, 60, completed.RowsDeduplicated)
	assert.Equal(t, 840, completed.RowsPublished)
	assert.Nil(t, completed.Error)
}

func TestRepository_Fail(t *testing.T) {
	db := getTestDB(t)
	repo := pipelinerun.NewRepository(db, getTestLogger())
	ctx := context.Background()

	run := testRun(uuid.New().String())
	require.NoError(t, repo.Create(ctx, run))
	require.NoError(t, repo.Fail(ctx, run.ID, errors.New("failed to open source data/service_requests.csv")))

	failed := findRun(t, repo, run.ID)
	assert.Equal(t, models.RunStatusFailed, failed.Status)
	assert.NotNil(t, failed.FinishedAt)
	require.NotNil(t, failed.Error)
	assert.Contains(t, *failed.Error, "failed to open source")
}

func TestRepository_CompleteMissingRunIsNotFound(t *testing.T) {
	db := getTestDB(t)
	repo := pipelinerun.NewRepository(db, getTestLogger())

	err := repo.Complete(context.Background(), testRun(uuid.New().String()))
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err))
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestRepository_FailMissingRunIsNotFound(t *testing.T) {
	db := getTestDB(t)
	repo := pipelinerun.NewRepository(db, getTestLogger())

	err := repo.Fail(context.Background(), uuid.New().String(), errors.New("boom"))
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err))
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestRepository_LatestOrdersNewestFirst(t *testing.T) {
	db := getTestDB(t)
	repo := pipelinerun.NewRepository(db, getTestLogger())
	ctx := context.Background()

	older := testRun(uuid.New().String())
	older.StartedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older))

	newer := testRun(uuid.New().String())
	newer.StartedAt = time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newer))

	runs, err := repo.Latest(ctx, 50)
	require.NoError(t, err)

	var olderIdx, newerIdx = -1, -1
	for i, run := range runs {
		if run.ID == older.ID {
			olderIdx = i
		}
		if run.ID == newer.ID {
			newerIdx = i
		}
	}
	require.GreaterOrEqual(t, olderIdx, 0)
	require.GreaterOrEqual(t, newerIdx, 0)
	assert.Less(t, newerIdx, olderIdx)
}
