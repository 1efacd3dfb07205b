package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents the customer table. The id is the storefront's external
// customer id; the row is overwritten with the latest payload values whenever
// a new order for the same customer arrives.
type Customer struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Fullname  string    `db:"fullname" json:"fullname"`
	Country   string    `db:"country" json:"country"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CustomerUpsert is the write shape for a customer row.
type CustomerUpsert struct {
	ID       string `db:"id"`
	Email    string `db:"email"`
	Fullname string `db:"fullname"`
	Country  string `db:"country"`
}

// CustomerAnalytics is one row of the top-customers report.
type CustomerAnalytics struct {
	ID                string          `db:"id" json:"id"`
	Email             string          `db:"email" json:"email"`
	Fullname          string          `db:"fullname" json:"fullname"`
	Country           string          `db:"country" json:"country"`
	TotalOrders       int             `db:"total_orders" json:"totalOrders"`
	TotalSpent        decimal.Decimal `db:"total_spent" json:"totalSpent"`
	AverageOrderValue decimal.Decimal `db:"average_order_value" json:"averageOrderValue"`
	LastOrderDate     *time.Time      `db:"last_order_date" json:"lastOrderDate"`
}
