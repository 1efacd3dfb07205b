package entity

import "github.com/shopspring/decimal"

// CostBasis represents the cost_base reference table: per (sku, country)
// fulfillment cost. Loaded from an external tabular source, read-only for the
// ingestion and aggregation paths.
type CostBasis struct {
	ID       int             `db:"id"`
	SKU      string          `db:"sku"`
	Country  string          `db:"country"`
	BaseCost decimal.Decimal `db:"base_cost"`
}

// CostBasisUpsert is the write shape for a cost row, used by the tabular
// import endpoint.
type CostBasisUpsert struct {
	SKU      string          `db:"sku"`
	Country  string          `db:"country"`
	BaseCost decimal.Decimal `db:"base_cost"`
}

// SKUCountry is the lookup key of the cost table.
type SKUCountry struct {
	SKU     string
	Country string
}
