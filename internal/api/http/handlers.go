package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
	"github.com/peakmargin/margin-manager/internal/gerr"
	"github.com/peakmargin/margin-manager/internal/margin"
	"github.com/peakmargin/margin-manager/internal/metrics"
)

// Syncer triggers an on-demand sync run across all tenants.
type Syncer interface {
	RunOnce(ctx context.Context) error
}

// Handler carries the dependencies of the HTTP endpoints.
type Handler struct {
	rep    dependency.Repository
	agg    *margin.Aggregator
	syncer Syncer
	pinger Pinger
}

func NewHandler(rep dependency.Repository, agg *margin.Aggregator, syncer Syncer, pinger Pinger) *Handler {
	return &Handler{
		rep:    rep,
		agg:    agg,
		syncer: syncer,
		pinger: pinger,
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		respondWithError(w, "health", http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respondWithJSON(w, "health", http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) syncOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.syncer.RunOnce(r.Context()); err != nil {
		slog.Default().ErrorContext(r.Context(), "manual sync failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "orders_sync", http.StatusInternalServerError, "sync failed")
		return
	}
	respondWithJSON(w, "orders_sync", http.StatusOK, map[string]string{"status": "synced"})
}

// dailyMargin serves the margin report. startDate and endDate are epoch
// seconds naming UTC calendar days; tenant is optional, absence means the
// cross-tenant merge.
func (h *Handler) dailyMargin(w http.ResponseWriter, r *http.Request) {
	start, err := epochParam(r, "startDate")
	if err != nil {
		respondWithError(w, "margin", http.StatusBadRequest, err.Error())
		return
	}
	end, err := epochParam(r, "endDate")
	if err != nil {
		respondWithError(w, "margin", http.StatusBadRequest, err.Error())
		return
	}
	if end < start {
		respondWithError(w, "margin", http.StatusBadRequest, "endDate before startDate")
		return
	}

	var report *margin.Report
	if tenantName := r.URL.Query().Get("tenant"); tenantName != "" {
		report, err = h.agg.Daily(r.Context(), tenantName, start, end)
	} else {
		report, err = h.agg.DailyAll(r.Context(), start, end)
	}
	if err != nil {
		if errors.Is(err, gerr.ErrTenantNotFound) {
			respondWithError(w, "margin", http.StatusNotFound, "unknown tenant")
			return
		}
		slog.Default().ErrorContext(r.Context(), "margin report failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "margin", http.StatusInternalServerError, "could not build report")
		return
	}

	respondWithJSON(w, "margin", http.StatusOK, report)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	limit := intParam(r, "limit", 50)

	orders, err := h.rep.Order().ListOrders(r.Context(), page, limit)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "order listing failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "orders_list", http.StatusInternalServerError, "could not list orders")
		return
	}
	respondWithJSON(w, "orders_list", http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	order, err := h.rep.Order().GetOrderFull(r.Context(), id)
	if err != nil {
		if errors.Is(err, gerr.ErrOrderNotFound) {
			respondWithError(w, "order_detail", http.StatusNotFound, "order not found")
			return
		}
		slog.Default().ErrorContext(r.Context(), "order detail failed",
			slog.String("err", err.Error()),
			slog.String("order_id", id),
		)
		respondWithError(w, "order_detail", http.StatusInternalServerError, "could not load order")
		return
	}
	respondWithJSON(w, "order_detail", http.StatusOK, order)
}

// dailyStats serves per-day order totals, newest first. Both range params are
// optional; absent they mean the trailing 30 days.
func (h *Handler) dailyStats(w http.ResponseWriter, r *http.Request) {
	to, ok, err := optionalDateParam(r, "endDate")
	if err != nil {
		respondWithError(w, "stats_daily", http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		to = time.Now().UTC()
	}
	from, ok, err := optionalDateParam(r, "startDate")
	if err != nil {
		respondWithError(w, "stats_daily", http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		from = to.AddDate(0, 0, -30)
	}

	stats, err := h.rep.Stats().GetDailyStats(r.Context(), from, to)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "daily stats failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "stats_daily", http.StatusInternalServerError, "could not load stats")
		return
	}
	respondWithJSON(w, "stats_daily", http.StatusOK, stats)
}

func (h *Handler) overallStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rep.Stats().GetOverallStats(r.Context(), intParam(r, "recent", 10))
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "overall stats failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "stats_overall", http.StatusInternalServerError, "could not load stats")
		return
	}
	respondWithJSON(w, "stats_overall", http.StatusOK, stats)
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.rep.Product().GetTopProducts(r.Context(), intParam(r, "limit", 10))
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "top products failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "analytics_products", http.StatusInternalServerError, "could not load analytics")
		return
	}
	respondWithJSON(w, "analytics_products", http.StatusOK, products)
}

func (h *Handler) topCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.rep.Customer().GetTopCustomers(r.Context(), intParam(r, "limit", 10))
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "top customers failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "analytics_customers", http.StatusInternalServerError, "could not load analytics")
		return
	}
	respondWithJSON(w, "analytics_customers", http.StatusOK, customers)
}

// importCosts loads a CSV body of sku,country,cost rows into the cost table.
// An optional header row is detected and skipped; duplicate pairs are
// ignored.
func (h *Handler) importCosts(w http.ResponseWriter, r *http.Request) {
	rows, skipped, err := parseCostCSV(r.Body)
	if err != nil {
		respondWithError(w, "costs_import", http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		respondWithError(w, "costs_import", http.StatusBadRequest, "no valid rows")
		return
	}

	if err := h.rep.CostBasis().UpsertCostBasis(r.Context(), rows); err != nil {
		slog.Default().ErrorContext(r.Context(), "cost import failed",
			slog.String("err", err.Error()),
		)
		respondWithError(w, "costs_import", http.StatusInternalServerError, "could not import costs")
		return
	}

	respondWithJSON(w, "costs_import", http.StatusOK, map[string]int{
		"imported": len(rows),
		"skipped":  skipped,
	})
}

func parseCostCSV(body io.Reader) ([]entity.CostBasisUpsert, int, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var rows []entity.CostBasisUpsert
	skipped := 0
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("bad csv at line %d", line+1)
		}
		line++

		cost, err := decimal.NewFromString(record[2])
		if err != nil {
			if line == 1 && isCostHeader(record) {
				continue
			}
			skipped++
			continue
		}
		if record[0] == "" || record[1] == "" {
			skipped++
			continue
		}

		rows = append(rows, entity.CostBasisUpsert{
			SKU:      record[0],
			Country:  record[1],
			BaseCost: cost,
		})
	}
	return rows, skipped, nil
}

// isCostHeader distinguishes a header row from a data row with a malformed
// cost; the latter counts as skipped.
func isCostHeader(record []string) bool {
	return strings.EqualFold(strings.TrimSpace(record[0]), "sku") ||
		strings.EqualFold(strings.TrimSpace(record[2]), "cost")
}

func epochParam(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s", name)
	}
	return v, nil
}

func optionalDateParam(r *http.Request, name string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad %s", name)
	}
	return t, true, nil
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func respondWithJSON(w http.ResponseWriter, route string, code int, payload any) {
	metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, route string, code int, msg string) {
	respondWithJSON(w, route, code, map[string]string{"error": msg})
}
