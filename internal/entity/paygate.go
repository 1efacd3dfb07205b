package entity

import "github.com/shopspring/decimal"

// Paygate represents the paygate table: one row per order with the gateway
// name and the computed processing fee.
type Paygate struct {
	ID      int             `db:"id" json:"id"`
	OrderID string          `db:"order_id" json:"orderId"`
	Name    string          `db:"name" json:"name"`
	Fee     decimal.Decimal `db:"fee" json:"fee"`
}

// PaygateUpsert is the write shape for a paygate row.
type PaygateUpsert struct {
	OrderID string          `db:"order_id"`
	Name    string          `db:"name"`
	Fee     decimal.Decimal `db:"fee"`
}
