package margin

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/dto"
	"github.com/peakmargin/margin-manager/internal/entity"
	"github.com/peakmargin/margin-manager/internal/gerr"
	"github.com/peakmargin/margin-manager/internal/tenant"
)

// fakeRepo covers the read paths the aggregator exercises.
type fakeRepo struct {
	orders      map[string][]entity.OrderWithItems // by tenant
	costs       map[entity.SKUCountry]entity.CostBasis
	orderCounts map[string]int // lifetime order count by customer id
}

func (f *fakeRepo) Order() dependency.Order         { return (*fakeOrderStore)(f) }
func (f *fakeRepo) Customer() dependency.Customer   { return (*fakeCustomerStore)(f) }
func (f *fakeRepo) Product() dependency.Product     { return nil }
func (f *fakeRepo) CostBasis() dependency.CostBasis { return (*fakeCostStore)(f) }
func (f *fakeRepo) Stats() dependency.Stats         { return nil }

func (f *fakeRepo) Tx(ctx context.Context, fn func(context.Context, dependency.Repository) error) error {
	return fn(ctx, f)
}
func (f *fakeRepo) TxBegin(ctx context.Context) (dependency.Repository, error) { return f, nil }
func (f *fakeRepo) TxCommit(ctx context.Context) error                         { return nil }
func (f *fakeRepo) TxRollback(ctx context.Context) error                       { return nil }
func (f *fakeRepo) Now() time.Time                                             { return time.Now() }
func (f *fakeRepo) Close()                                                     {}
func (f *fakeRepo) DB() dependency.DB                                          { return nil }
func (f *fakeRepo) IsErrUniqueViolation(err error) bool                        { return false }
func (f *fakeRepo) IsErrorRepeat(err error) bool                               { return false }

type fakeOrderStore fakeRepo

func (f *fakeOrderStore) OrderExists(context.Context, string) (bool, error)      { return false, nil }
func (f *fakeOrderStore) InsertOrder(context.Context, *entity.OrderInsert) error { return nil }
func (f *fakeOrderStore) InsertLineItems(context.Context, []entity.OrderLineItemInsert) error {
	return nil
}
func (f *fakeOrderStore) UpsertPaygate(context.Context, *entity.PaygateUpsert) error { return nil }
func (f *fakeOrderStore) GetOrdersInRange(_ context.Context, tenantName string, from, to time.Time) ([]entity.OrderWithItems, error) {
	var out []entity.OrderWithItems
	for _, o := range f.orders[tenantName] {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}
func (f *fakeOrderStore) GetOrderFull(context.Context, string) (*entity.OrderFull, error) {
	return nil, nil
}
func (f *fakeOrderStore) ListOrders(context.Context, int, int) (*entity.OrderPage, error) {
	return nil, nil
}

type fakeCustomerStore fakeRepo

func (f *fakeCustomerStore) UpsertCustomer(context.Context, *entity.CustomerUpsert) error {
	return nil
}
func (f *fakeCustomerStore) CustomerOrderCount(_ context.Context, id string) (int, error) {
	return f.orderCounts[id], nil
}
func (f *fakeCustomerStore) GetTopCustomers(context.Context, int) ([]entity.CustomerAnalytics, error) {
	return nil, nil
}

type fakeCostStore fakeRepo

func (f *fakeCostStore) GetCosts(_ context.Context, keys []entity.SKUCountry) (map[entity.SKUCountry]entity.CostBasis, error) {
	out := make(map[entity.SKUCountry]entity.CostBasis)
	for _, key := range keys {
		if row, ok := f.costs[key]; ok {
			out[key] = row
		}
	}
	return out, nil
}
func (f *fakeCostStore) UpsertCostBasis(context.Context, []entity.CostBasisUpsert) error { return nil }

// fakeAds serves a canned series.
type fakeAds struct {
	series dto.AdSpendSeries
}

func (f *fakeAds) FetchSpend(context.Context, time.Time, time.Time, string) (dto.AdSpendSeries, error) {
	return f.series, nil
}

// fakeResolver is a TenantResolver over a fixed tenant list.
type fakeResolver map[string]*tenant.Tenant

func (f fakeResolver) Get(name string) (*tenant.Tenant, error) {
	if t, ok := f[name]; ok {
		return t, nil
	}
	return nil, gerr.ErrTenantNotFound
}
func (f fakeResolver) All() []*tenant.Tenant {
	var out []*tenant.Tenant
	for _, t := range f {
		out = append(out, t)
	}
	return out
}

func order(id, tenantName, customerID string, createdAt time.Time, revenue string, items ...entity.OrderLineItem) entity.OrderWithItems {
	o := entity.OrderWithItems{
		Order: entity.Order{
			ID:          id,
			Tenant:      tenantName,
			ShipCountry: "DE",
			Revenue:     decimal.RequireFromString(revenue),
			CreatedAt:   createdAt,
		},
		Items: items,
	}
	if customerID != "" {
		o.CustomerID = sql.NullString{String: customerID, Valid: true}
	}
	return o
}

func item(sku string, qty int) entity.OrderLineItem {
	return entity.OrderLineItem{SKU: sku, Quantity: qty}
}

func epoch(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func TestDailyEndToEnd(t *testing.T) {
	day := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	repo := &fakeRepo{
		orders: map[string][]entity.OrderWithItems{
			"shop": {
				// cost-basis hit: 5.00 x 2
				order("1", "shop", "c1", day, "100.00", item("SKU-A", 2)),
				// cost-basis miss: default 14.99 x 1
				order("2", "shop", "c1", day.Add(time.Hour), "50.00", item("SKU-B", 1)),
			},
		},
		costs: map[entity.SKUCountry]entity.CostBasis{
			{SKU: "SKU-A", Country: "DE"}: {SKU: "SKU-A", Country: "DE", BaseCost: decimal.RequireFromString("5.00")},
		},
		orderCounts: map[string]int{"c1": 2},
	}

	reg := fakeResolver{"shop": {
		Name:     "shop",
		Location: time.UTC,
		Ads: &fakeAds{series: dto.AdSpendSeries{
			"15-01-2025": {Date: "15-01-2025", Spend: decimal.RequireFromString("12.00")},
			"16-01-2025": {Date: "16-01-2025", Spend: decimal.RequireFromString("3.00")},
		}},
	}}

	agg := New(&Config{DefaultUnitCost: 14.99}, repo, reg)

	report, err := agg.Daily(context.Background(), "shop", epoch(2025, 1, 15), epoch(2025, 1, 16))
	require.NoError(t, err)

	d15 := report.Days["15-01-2025"]
	assert.Equal(t, 2, d15.Orders)
	assert.True(t, d15.Revenue.Equal(decimal.RequireFromString("150.00")))
	// 5.00*2 + 14.99*1
	assert.True(t, d15.Spend.Equal(decimal.RequireFromString("24.99")), "got %s", d15.Spend)
	assert.True(t, d15.AdSpend.Equal(decimal.RequireFromString("12.00")))
	assert.Zero(t, d15.NewCustomerOrders, "c1 has two lifetime orders")

	// ad spend with no orders still emits the day
	d16 := report.Days["16-01-2025"]
	assert.Zero(t, d16.Orders)
	assert.True(t, d16.AdSpend.Equal(decimal.RequireFromString("3.00")))

	assert.Empty(t, report.NewCustomers)
	assert.Len(t, report.Orders, 2)
}

func TestDailyShipDiscount(t *testing.T) {
	day := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	repo := &fakeRepo{
		orders: map[string][]entity.OrderWithItems{
			"shop": {order("1", "shop", "", day, "90.00", item("SKU-A", 2), item("SKU-B", 1))},
		},
		costs: map[entity.SKUCountry]entity.CostBasis{
			{SKU: "SKU-A", Country: "DE"}: {BaseCost: decimal.RequireFromString("5.00")},
			{SKU: "SKU-B", Country: "DE"}: {BaseCost: decimal.RequireFromString("4.00")},
		},
	}
	reg := fakeResolver{"shop": {Name: "shop", Location: time.UTC, Ads: &fakeAds{}}}

	agg := New(&Config{DefaultUnitCost: 14.99, ShipUnitDiscount: 2.50}, repo, reg)

	report, err := agg.Daily(context.Background(), "shop", epoch(2025, 1, 15), epoch(2025, 1, 15))
	require.NoError(t, err)

	// 5.00*2 + 4.00*1 = 14.00, total qty 3 -> discount 2.50*2 = 5.00
	d := report.Days["15-01-2025"]
	assert.True(t, d.Spend.Equal(decimal.RequireFromString("9.00")), "got %s", d.Spend)
}

func TestShipDiscountQuantities(t *testing.T) {
	agg := New(&Config{ShipUnitDiscount: 2.50}, &fakeRepo{}, fakeResolver{})

	assert.True(t, agg.shipDiscount(3).Equal(decimal.RequireFromString("5.00")))
	assert.True(t, agg.shipDiscount(1).IsZero())
	assert.True(t, agg.shipDiscount(0).IsZero())
}

func TestDailyNewCustomer(t *testing.T) {
	day := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	repo := &fakeRepo{
		orders: map[string][]entity.OrderWithItems{
			"shop": {
				order("1", "shop", "fresh", day, "40.00", item("SKU-A", 1)),
				order("2", "shop", "repeat", day, "60.00", item("SKU-A", 1)),
			},
		},
		costs:       map[entity.SKUCountry]entity.CostBasis{},
		orderCounts: map[string]int{"fresh": 1, "repeat": 3},
	}
	reg := fakeResolver{"shop": {Name: "shop", Location: time.UTC, Ads: &fakeAds{}}}

	agg := New(&Config{DefaultUnitCost: 10}, repo, reg)

	report, err := agg.Daily(context.Background(), "shop", epoch(2025, 1, 15), epoch(2025, 1, 15))
	require.NoError(t, err)

	d := report.Days["15-01-2025"]
	assert.Equal(t, 1, d.NewCustomerOrders)
	assert.True(t, d.NewCustomerRevenue.Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t, []string{"fresh"}, report.NewCustomers)
}

func TestDailyTimezoneBucketing(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 2025-03-09T07:30Z is 23:30 on the 8th in Los Angeles
	created := time.Date(2025, 3, 9, 7, 30, 0, 0, time.UTC)

	repo := &fakeRepo{
		orders: map[string][]entity.OrderWithItems{
			"shop": {order("1", "shop", "", created, "10.00", item("SKU-A", 1))},
		},
		costs: map[entity.SKUCountry]entity.CostBasis{},
	}
	reg := fakeResolver{"shop": {Name: "shop", Location: la, Ads: &fakeAds{}}}

	agg := New(&Config{DefaultUnitCost: 1}, repo, reg)

	report, err := agg.Daily(context.Background(), "shop", epoch(2025, 3, 8), epoch(2025, 3, 9))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Days["08-03-2025"].Orders)
	assert.Zero(t, report.Days["09-03-2025"].Orders)
}

func TestDailyWithoutAdsClient(t *testing.T) {
	reg := fakeResolver{"shop": {Name: "shop", Location: time.UTC}}
	agg := New(&Config{}, &fakeRepo{}, reg)

	report, err := agg.Daily(context.Background(), "shop", epoch(2025, 1, 15), epoch(2025, 1, 15))
	require.NoError(t, err)
	assert.Empty(t, report.Days)
}

func TestDailyUnknownTenant(t *testing.T) {
	agg := New(&Config{}, &fakeRepo{}, fakeResolver{})
	_, err := agg.Daily(context.Background(), "ghost", 0, 0)
	require.Error(t, err)
}

func TestMergeReports(t *testing.T) {
	a := emptyReport()
	a.Days["01-01-2025"] = DayMetrics{
		Date: "01-01-2025", Orders: 2,
		Revenue: decimal.RequireFromString("100.00"),
		Spend:   decimal.RequireFromString("20.00"),
		AdSpend: decimal.RequireFromString("5.00"),
	}

	b := emptyReport()
	b.Days["01-01-2025"] = DayMetrics{
		Date: "01-01-2025", Orders: 1,
		Revenue: decimal.RequireFromString("50.00"),
		Spend:   decimal.RequireFromString("10.00"),
		AdSpend: decimal.RequireFromString("2.00"),
	}
	b.Days["02-01-2025"] = DayMetrics{Date: "02-01-2025", Orders: 4}

	MergeReports(a, b)

	d1 := a.Days["01-01-2025"]
	assert.Equal(t, 3, d1.Orders)
	assert.True(t, d1.Revenue.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, d1.Spend.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, d1.AdSpend.Equal(decimal.RequireFromString("7.00")))

	// a day present on one side only carries through unchanged
	assert.Equal(t, 4, a.Days["02-01-2025"].Orders)
}

func TestDailyAll(t *testing.T) {
	day := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	repo := &fakeRepo{
		orders: map[string][]entity.OrderWithItems{
			"a": {order("1", "a", "", day, "10.00", item("SKU-A", 1))},
			"b": {order("2", "b", "", day, "20.00", item("SKU-A", 1))},
		},
		costs: map[entity.SKUCountry]entity.CostBasis{},
	}
	reg := fakeResolver{
		"a": {Name: "a", Location: time.UTC, Ads: &fakeAds{}},
		"b": {Name: "b", Location: time.UTC, Ads: &fakeAds{}},
		"c": {Name: "c", Location: time.UTC}, // no ads client, empty report
	}

	agg := New(&Config{DefaultUnitCost: 1}, repo, reg)

	report, err := agg.DailyAll(context.Background(), epoch(2025, 1, 15), epoch(2025, 1, 15))
	require.NoError(t, err)

	d := report.Days["15-01-2025"]
	assert.Equal(t, 2, d.Orders)
	assert.True(t, d.Revenue.Equal(decimal.RequireFromString("30.00")))
	assert.Len(t, report.Orders, 2)
}
