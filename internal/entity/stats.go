package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStats represents the order_stats table: one row per UTC calendar day.
type OrderStats struct {
	Date              time.Time       `db:"date" json:"date"`
	TotalOrders       int             `db:"total_orders" json:"totalOrders"`
	TotalRevenue      decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `db:"average_order_value" json:"averageOrderValue"`
}

// OverallStats is the all-time summary with the most recent orders attached.
type OverallStats struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	RecentOrders      []Order         `json:"recentOrders"`
}
