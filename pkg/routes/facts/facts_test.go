package facts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

type fakeFactReader struct {
	facts      []models.RequestFact
	count      int
	err        error
	lastLimit  int
	lastOffset int
}

func (f *fakeFactReader) List(ctx context.Context, limit, offset int) ([]models.RequestFact, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	if f.err != nil {
		return nil, f.err
	}
	return f.facts, nil
}

func (f *fakeFactReader) Count(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

func newTestContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_List(t *testing.T) {
	created := time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC)
	reader := &fakeFactReader{
		facts: []models.RequestFact{{UniqueKey: "10000001", CreatedAt: &created}},
		count: 840,
	}
	h := NewHandler(reader)

	c, rec := newTestContext("/api/v1/facts")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, reader.lastLimit)
	assert.Equal(t, 0, reader.lastOffset)

	var resp models.FactListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "10000001", resp.Items[0].UniqueKey)
	assert.Equal(t, 840, resp.TotalCount)
}

func TestHandler_List_Pagination(t *testing.T) {
	reader := &fakeFactReader{}
	h := NewHandler(reader)

	c, _ := newTestContext("/api/v1/facts?limit=25&offset=50")
	require.NoError(t, h.List(c))
	assert.Equal(t, 25, reader.lastLimit)
	assert.Equal(t, 50, reader.lastOffset)
}

func TestHandler_List_BadParamsFallBackToDefaults(t *testing.T) {
	reader := &fakeFactReader{}
	h := NewHandler(reader)

	c, _ := newTestContext("/api/v1/facts?limit=-5&offset=junk")
	require.NoError(t, h.List(c))
	assert.Equal(t, 100, reader.lastLimit)
	assert.Equal(t, 0, reader.lastOffset)
}

func TestHandler_List_RepositoryError(t *testing.T) {
	h := NewHandler(&fakeFactReader{err: errors.New("boom")})

	c, _ := newTestContext("/api/v1/facts")
	err := h.List(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
}
