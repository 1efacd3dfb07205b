package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
	"github.com/peakmargin/margin-manager/internal/gerr"
)

// stubRepo overrides only the stores a test touches; calling anything else
// panics, which is what we want.
type stubRepo struct {
	dependency.Repository
	order dependency.Order
	costs dependency.CostBasis
	stats dependency.Stats
}

func (s *stubRepo) Order() dependency.Order         { return s.order }
func (s *stubRepo) CostBasis() dependency.CostBasis { return s.costs }
func (s *stubRepo) Stats() dependency.Stats         { return s.stats }

type stubOrderStore struct {
	dependency.Order
	full    *entity.OrderFull
	fullErr error
}

func (s *stubOrderStore) GetOrderFull(context.Context, string) (*entity.OrderFull, error) {
	return s.full, s.fullErr
}

type stubCostStore struct {
	dependency.CostBasis
	upserted []entity.CostBasisUpsert
}

func (s *stubCostStore) UpsertCostBasis(_ context.Context, rows []entity.CostBasisUpsert) error {
	s.upserted = rows
	return nil
}

type stubStatsStore struct {
	dependency.Stats
	from, to time.Time
}

func (s *stubStatsStore) GetDailyStats(_ context.Context, from, to time.Time) ([]entity.OrderStats, error) {
	s.from, s.to = from, to
	return []entity.OrderStats{}, nil
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	h := NewHandler(nil, nil, nil, &stubPinger{})

	rec := httptest.NewRecorder()
	h.health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	h = NewHandler(nil, nil, nil, &stubPinger{err: errors.New("down")})
	rec = httptest.NewRecorder()
	h.health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDailyMarginParamValidation(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.dailyMargin(rec, httptest.NewRequest(http.MethodGet, "/api/orders/margin", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.dailyMargin(rec, httptest.NewRequest(http.MethodGet, "/api/orders/margin?startDate=late&endDate=100", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.dailyMargin(rec, httptest.NewRequest(http.MethodGet, "/api/orders/margin?startDate=200&endDate=100", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	rep := &stubRepo{order: &stubOrderStore{fullErr: gerr.ErrOrderNotFound}}
	h := NewHandler(rep, nil, nil, nil)

	r := chi.NewRouter()
	r.Get("/api/orders/{orderID}", h.getOrder)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrderOK(t *testing.T) {
	full := &entity.OrderFull{Order: entity.Order{ID: "42", Tenant: "paradis"}}
	rep := &stubRepo{order: &stubOrderStore{full: full}}
	h := NewHandler(rep, nil, nil, nil)

	r := chi.NewRouter()
	r.Get("/api/orders/{orderID}", h.getOrder)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"paradis"`)
}

func TestDailyStatsRangeOptional(t *testing.T) {
	stats := &stubStatsStore{}
	h := NewHandler(&stubRepo{stats: stats}, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.dailyStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats/daily", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.WithinDuration(t, time.Now().UTC(), stats.to, time.Minute)
	assert.Equal(t, stats.to.AddDate(0, 0, -30), stats.from, "missing range means the trailing 30 days")

	rec = httptest.NewRecorder()
	h.dailyStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats/daily?startDate=2025-08-01&endDate=2025-08-15", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-08-01", stats.from.Format("2006-01-02"))
	assert.Equal(t, "2025-08-15", stats.to.Format("2006-01-02"))

	rec = httptest.NewRecorder()
	h.dailyStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats/daily?startDate=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportCosts(t *testing.T) {
	costs := &stubCostStore{}
	rep := &stubRepo{costs: costs}
	h := NewHandler(rep, nil, nil, nil)

	body := strings.NewReader("sku,country,cost\nSKU-A,DE,5.00\nSKU-B,FR,bad\nSKU-C,US,7.50\n")
	rec := httptest.NewRecorder()
	h.importCosts(rec, httptest.NewRequest(http.MethodPost, "/api/costs/import", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":2,"skipped":1}`, rec.Body.String())

	require.Len(t, costs.upserted, 2)
	assert.Equal(t, "SKU-A", costs.upserted[0].SKU)
	assert.True(t, costs.upserted[0].BaseCost.Equal(decimal.RequireFromString("5.00")))
}

func TestImportCostsEmpty(t *testing.T) {
	h := NewHandler(&stubRepo{costs: &stubCostStore{}}, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.importCosts(rec, httptest.NewRequest(http.MethodPost, "/api/costs/import", strings.NewReader("sku,country,cost\n")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseCostCSVNoHeader(t *testing.T) {
	rows, skipped, err := parseCostCSV(strings.NewReader("SKU-A,DE,5.00\nSKU-B,,6.00\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-A", rows[0].SKU)
}

func TestParseCostCSVBadFirstRowIsNotAHeader(t *testing.T) {
	rows, skipped, err := parseCostCSV(strings.NewReader("SKU-A,DE,oops\nSKU-B,FR,2.00\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped, "a malformed data row must be reported, not mistaken for a header")
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-B", rows[0].SKU)

	rows, skipped, err = parseCostCSV(strings.NewReader("sku,country,cost\nSKU-C,US,3.00\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped, "a real header is dropped silently")
	require.Len(t, rows, 1)
}
