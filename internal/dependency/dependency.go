package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/peakmargin/margin-manager/internal/dto"
	"github.com/peakmargin/margin-manager/internal/entity"
)

type (
	// Order handles order, line item and payment gateway persistence.
	Order interface {
		// OrderExists reports whether an order with the external id is
		// already stored for the tenant.
		OrderExists(ctx context.Context, id string) (bool, error)
		// InsertOrder writes the order row.
		InsertOrder(ctx context.Context, order *entity.OrderInsert) error
		// InsertLineItems bulk inserts the order's line items.
		InsertLineItems(ctx context.Context, items []entity.OrderLineItemInsert) error
		// UpsertPaygate records the computed gateway fee for an order.
		UpsertPaygate(ctx context.Context, pg *entity.PaygateUpsert) error
		// GetOrdersInRange returns orders created in [from, to) for the
		// tenant, line items attached, ordered by creation time.
		GetOrdersInRange(ctx context.Context, tenant string, from, to time.Time) ([]entity.OrderWithItems, error)
		// GetOrderFull loads one order with customer, items and paygate.
		GetOrderFull(ctx context.Context, id string) (*entity.OrderFull, error)
		// ListOrders pages through stored orders, newest first.
		ListOrders(ctx context.Context, page, limit int) (*entity.OrderPage, error)
	}

	// Customer handles customer persistence and the new-customer check.
	Customer interface {
		UpsertCustomer(ctx context.Context, c *entity.CustomerUpsert) error
		// CustomerOrderCount returns how many stored orders reference the
		// customer. A count of one right after insert marks a first-time buyer.
		CustomerOrderCount(ctx context.Context, customerID string) (int, error)
		GetTopCustomers(ctx context.Context, limit int) ([]entity.CustomerAnalytics, error)
	}

	// Product handles product and variant persistence.
	Product interface {
		UpsertProduct(ctx context.Context, p *entity.ProductUpsert) error
		// UpsertVariant inserts the variant keyed by (id, size) or adds
		// quantity to its sold counter when the row exists.
		UpsertVariant(ctx context.Context, v *entity.ProductVariant) error
		GetTopProducts(ctx context.Context, limit int) ([]entity.ProductAnalytics, error)
	}

	// CostBasis resolves per-SKU, per-country unit costs.
	CostBasis interface {
		// GetCosts resolves unit costs for the given keys. Keys without a
		// matching row are absent from the result; the caller applies the
		// configured default.
		GetCosts(ctx context.Context, keys []entity.SKUCountry) (map[entity.SKUCountry]entity.CostBasis, error)
		UpsertCostBasis(ctx context.Context, rows []entity.CostBasisUpsert) error
	}

	// Stats maintains the per-day order statistics table.
	Stats interface {
		// BumpDailyStats folds one order into its UTC day's row.
		BumpDailyStats(ctx context.Context, day time.Time, revenue decimal.Decimal) error
		GetDailyStats(ctx context.Context, from, to time.Time) ([]entity.OrderStats, error)
		GetOverallStats(ctx context.Context, recentLimit int) (*entity.OverallStats, error)
	}

	// Repository is the full persistence surface. Tx runs the closure inside
	// a serializable transaction, retrying on serialization failures.
	Repository interface {
		Order() Order
		Customer() Customer
		Product() Product
		CostBasis() CostBasis
		Stats() Stats

		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error

		Now() time.Time
		Close()
		DB() DB
		IsErrUniqueViolation(err error) bool
		IsErrorRepeat(err error) bool
	}

	// DB represents the database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	// Storefront fetches orders and variants from a shop's order API.
	Storefront interface {
		// FetchOrders pages through orders updated since the watermark,
		// following cursors until the server stops returning one or the page
		// budget is exhausted. Orders are deduplicated by id across pages.
		FetchOrders(ctx context.Context, updatedAtMin time.Time) ([]dto.ShopifyOrder, error)
		// FetchVariantSKU resolves a variant id to its catalog SKU.
		FetchVariantSKU(ctx context.Context, variantID int64) (string, error)
	}

	// AdsReporter fetches daily ad spend from an ads reporting API.
	AdsReporter interface {
		// FetchSpend returns per-day spend between start and end inclusive,
		// keyed by local calendar day.
		FetchSpend(ctx context.Context, start, end time.Time, level string) (dto.AdSpendSeries, error)
	}
)
