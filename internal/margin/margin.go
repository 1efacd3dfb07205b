// Package margin builds timezone-correct daily contribution margin reports:
// stored orders joined with cost-basis rows and the tenant's ad spend series.
package margin

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/peakmargin/margin-manager/internal/ads"
	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
	"github.com/peakmargin/margin-manager/internal/metrics"
	"github.com/peakmargin/margin-manager/internal/tenant"
)

type Config struct {
	// DefaultUnitCost is charged per unit when no cost-basis row matches the
	// line item's (sku, country) pair.
	DefaultUnitCost float64 `mapstructure:"default_unit_cost"`
	// ShipUnitDiscount models fulfillment pricing where the first unit ships
	// at full cost and every further unit is discounted by this amount.
	ShipUnitDiscount float64 `mapstructure:"ship_unit_discount"`
}

// DayMetrics is one local business day's aggregate.
type DayMetrics struct {
	Date               string          `json:"date"`
	Orders             int             `json:"orders"`
	Revenue            decimal.Decimal `json:"revenue"`
	Spend              decimal.Decimal `json:"spend"`
	AdSpend            decimal.Decimal `json:"adSpend"`
	NewCustomerOrders  int             `json:"newCustomerOrders"`
	NewCustomerRevenue decimal.Decimal `json:"newCustomerRevenue"`
	NewCustomerSpend   decimal.Decimal `json:"newCustomerSpend"`
}

// Report is a margin report for one tenant, or the additive merge across
// tenants.
type Report struct {
	Days         map[string]DayMetrics `json:"days"`
	Orders       []entity.Order        `json:"orders"`
	NewCustomers []string              `json:"newCustomers"`
}

// TenantResolver resolves tenant names to their runtime wiring. Satisfied by
// tenant.Registry.
type TenantResolver interface {
	Get(name string) (*tenant.Tenant, error)
	All() []*tenant.Tenant
}

// Aggregator computes daily margin reports over the persisted orders.
type Aggregator struct {
	rep              dependency.Repository
	reg              TenantResolver
	defaultUnitCost  decimal.Decimal
	shipUnitDiscount decimal.Decimal
}

func New(c *Config, rep dependency.Repository, reg TenantResolver) *Aggregator {
	cost := decimal.NewFromFloat(c.DefaultUnitCost)
	if cost.LessThanOrEqual(decimal.Zero) {
		cost = decimal.NewFromFloat(14.99)
	}
	return &Aggregator{
		rep:              rep,
		reg:              reg,
		defaultUnitCost:  cost,
		shipUnitDiscount: decimal.NewFromFloat(c.ShipUnitDiscount),
	}
}

// Daily builds the per-day margin report for one tenant. Start and end are
// epoch seconds naming UTC calendar dates, inclusive on both ends. A tenant
// without an ads client yields an empty report, not an error.
func (a *Aggregator) Daily(ctx context.Context, tenantName string, startEpoch, endEpoch int64) (*Report, error) {
	tn, err := a.reg.Get(tenantName)
	if err != nil {
		return nil, err
	}
	if tn.Ads == nil {
		return emptyReport(), nil
	}

	started := time.Now()
	defer func() {
		metrics.MarginReportDuration.WithLabelValues(tn.Name).Observe(time.Since(started).Seconds())
	}()

	localFrom, localEnd, err := dayBounds(startEpoch, endEpoch, tn.Location)
	if err != nil {
		return nil, fmt.Errorf("could not resolve day window for tenant %s: %w", tn.Name, err)
	}
	from, to := localFrom.UTC(), localEnd.AddDate(0, 0, 1).UTC()

	adSeries, err := tn.Ads.FetchSpend(ctx, localFrom, localEnd, ads.LevelAccount)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(tn.Name, "ads").Inc()
		return nil, fmt.Errorf("could not fetch ad spend for tenant %s: %w", tn.Name, err)
	}

	orders, err := a.rep.Order().GetOrdersInRange(ctx, tn.Name, from, to)
	if err != nil {
		return nil, fmt.Errorf("could not load orders for tenant %s: %w", tn.Name, err)
	}

	costs, err := a.lookupCosts(ctx, orders)
	if err != nil {
		return nil, err
	}

	newCustomers, err := a.findNewCustomers(ctx, orders)
	if err != nil {
		return nil, err
	}

	report := emptyReport()

	// seed from the ad series so days with spend but no orders still appear
	for key, day := range adSeries {
		report.Days[key] = DayMetrics{Date: key, AdSpend: day.Spend}
	}

	for i := range orders {
		o := &orders[i]
		key := BucketDate(o.CreatedAt, tn.Location)

		day := report.Days[key]
		day.Date = key
		day.Orders++
		day.Revenue = day.Revenue.Add(o.Revenue)

		cost := a.orderCost(o, costs)
		day.Spend = day.Spend.Add(cost)

		if o.CustomerID.Valid {
			if _, ok := newCustomers[o.CustomerID.String]; ok {
				day.NewCustomerOrders++
				day.NewCustomerRevenue = day.NewCustomerRevenue.Add(o.Revenue)
				day.NewCustomerSpend = day.NewCustomerSpend.Add(cost)
			}
		}

		report.Days[key] = day
		report.Orders = append(report.Orders, o.Order)
	}

	for id := range newCustomers {
		report.NewCustomers = append(report.NewCustomers, id)
	}
	sort.Strings(report.NewCustomers)

	slog.Default().DebugContext(ctx, "margin report built",
		slog.String("tenant", tn.Name),
		slog.Int("orders", len(orders)),
		slog.Int("days", len(report.Days)),
	)
	return report, nil
}

// DailyAll fans out Daily over every registered tenant and merges the per-day
// buckets additively. Tenants returning empty reports are tolerated.
func (a *Aggregator) DailyAll(ctx context.Context, startEpoch, endEpoch int64) (*Report, error) {
	tenants := a.reg.All()
	reports := make([]*Report, len(tenants))

	g, gctx := errgroup.WithContext(ctx)
	for i, tn := range tenants {
		i, tn := i, tn
		g.Go(func() error {
			r, err := a.Daily(gctx, tn.Name, startEpoch, endEpoch)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := emptyReport()
	for _, r := range reports {
		MergeReports(merged, r)
	}
	return merged, nil
}

// MergeReports folds src into dst, summing day buckets key by key.
func MergeReports(dst, src *Report) {
	for key, s := range src.Days {
		d := dst.Days[key]
		d.Date = key
		d.Orders += s.Orders
		d.Revenue = d.Revenue.Add(s.Revenue)
		d.Spend = d.Spend.Add(s.Spend)
		d.AdSpend = d.AdSpend.Add(s.AdSpend)
		d.NewCustomerOrders += s.NewCustomerOrders
		d.NewCustomerRevenue = d.NewCustomerRevenue.Add(s.NewCustomerRevenue)
		d.NewCustomerSpend = d.NewCustomerSpend.Add(s.NewCustomerSpend)
		dst.Days[key] = d
	}
	dst.Orders = append(dst.Orders, src.Orders...)
	dst.NewCustomers = append(dst.NewCustomers, src.NewCustomers...)
}

// orderCost sums cost basis over the order's line items and applies the
// multi-unit shipping discount.
func (a *Aggregator) orderCost(o *entity.OrderWithItems, costs map[entity.SKUCountry]entity.CostBasis) decimal.Decimal {
	cost := decimal.Zero
	totalQty := 0
	for _, item := range o.Items {
		unit := a.defaultUnitCost
		if row, ok := costs[entity.SKUCountry{SKU: item.SKU, Country: o.ShipCountry}]; ok {
			unit = row.BaseCost
		}
		cost = cost.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalQty += item.Quantity
	}
	return cost.Sub(a.shipDiscount(totalQty))
}

// shipDiscount is unitDiscount x (totalQty - 1): the first unit ships at full
// cost, every further unit is discounted.
func (a *Aggregator) shipDiscount(totalQty int) decimal.Decimal {
	if totalQty < 1 {
		return decimal.Zero
	}
	return a.shipUnitDiscount.Mul(decimal.NewFromInt(int64(totalQty - 1)))
}

func (a *Aggregator) lookupCosts(ctx context.Context, orders []entity.OrderWithItems) (map[entity.SKUCountry]entity.CostBasis, error) {
	seen := make(map[entity.SKUCountry]struct{})
	var keys []entity.SKUCountry
	for i := range orders {
		for _, item := range orders[i].Items {
			key := entity.SKUCountry{SKU: item.SKU, Country: orders[i].ShipCountry}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return map[entity.SKUCountry]entity.CostBasis{}, nil
	}

	costs, err := a.rep.CostBasis().GetCosts(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("could not load cost basis: %w", err)
	}
	return costs, nil
}

// findNewCustomers returns the customers among the orders whose lifetime
// order count is exactly one.
func (a *Aggregator) findNewCustomers(ctx context.Context, orders []entity.OrderWithItems) (map[string]struct{}, error) {
	candidates := make(map[string]struct{})
	for i := range orders {
		if orders[i].CustomerID.Valid {
			candidates[orders[i].CustomerID.String] = struct{}{}
		}
	}

	fresh := make(map[string]struct{}, len(candidates))
	for id := range candidates {
		count, err := a.rep.Customer().CustomerOrderCount(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("could not count orders for customer %s: %w", id, err)
		}
		if count == 1 {
			fresh[id] = struct{}{}
		}
	}
	return fresh, nil
}

func emptyReport() *Report {
	return &Report{Days: make(map[string]DayMetrics)}
}
