package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the product table. ProductType is derived from the first
// slash-delimited segment of the line item's variant title.
type Product struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Body        string    `db:"body"`
	ProductType string    `db:"product_type"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ProductUpsert is the write shape for a product row.
type ProductUpsert struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Body        string `db:"body"`
	ProductType string `db:"product_type"`
}

// ProductVariant represents the product_variant table, keyed by (id, size).
// SoldNumber accumulates the quantities of every ingested order.
type ProductVariant struct {
	ID         string `db:"id"`
	ProductID  string `db:"product_id"`
	Size       string `db:"size"`
	SoldNumber int    `db:"sold_number"`
}

// ProductAnalytics is one row of the top-products report.
type ProductAnalytics struct {
	ID                string          `db:"id" json:"id"`
	Title             string          `db:"title" json:"title"`
	ProductType       string          `db:"product_type" json:"productType"`
	TotalQuantitySold int             `db:"total_quantity_sold" json:"totalQuantitySold"`
	TotalRevenue      decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	VariantsSold      int             `db:"variants_sold" json:"variantsSold"`
	AveragePrice      decimal.Decimal `db:"average_price" json:"averagePrice"`
}
