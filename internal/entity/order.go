package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents the shop_order table. ID is the storefront's external
// order id; OrderNumber is the human-readable number shown to buyers.
type Order struct {
	ID          string          `db:"id" json:"id"`
	OrderNumber string          `db:"order_number" json:"orderNumber"`
	CustomerID  sql.NullString  `db:"customer_id" json:"customerId"`
	ShipCountry string          `db:"ship_country" json:"shipCountry"`
	Revenue     decimal.Decimal `db:"revenue" json:"revenue"`
	RevenueUSD  decimal.Decimal `db:"revenue_usd" json:"revenueUsd"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	Tax         decimal.Decimal `db:"tax" json:"tax"`
	Shipping    decimal.Decimal `db:"shipping" json:"shipping"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	PaygateName string          `db:"paygate_name" json:"paygateName"`
	Tenant      string          `db:"tenant" json:"tenant"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// OrderInsert is the write shape for an order row.
type OrderInsert struct {
	ID          string          `db:"id"`
	OrderNumber string          `db:"order_number"`
	CustomerID  sql.NullString  `db:"customer_id"`
	ShipCountry string          `db:"ship_country"`
	Revenue     decimal.Decimal `db:"revenue"`
	RevenueUSD  decimal.Decimal `db:"revenue_usd"`
	Discount    decimal.Decimal `db:"discount"`
	Tax         decimal.Decimal `db:"tax"`
	Shipping    decimal.Decimal `db:"shipping"`
	Subtotal    decimal.Decimal `db:"subtotal"`
	PaygateName string          `db:"paygate_name"`
	Tenant      string          `db:"tenant"`
	CreatedAt   time.Time       `db:"created_at"`
}

// OrderLineItem represents the order_line_item table.
type OrderLineItem struct {
	ID            int             `db:"id" json:"id"`
	OrderID       string          `db:"order_id" json:"orderId"`
	ProductID     string          `db:"product_id" json:"productId"`
	SKU           string          `db:"sku" json:"sku"`
	Quantity      int             `db:"quantity" json:"quantity"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Name          string          `db:"name" json:"name"`
	Title         string          `db:"title" json:"title"`
	GiftCard      bool            `db:"gift_card" json:"giftCard"`
	TotalDiscount decimal.Decimal `db:"total_discount" json:"totalDiscount"`
	VendorName    string          `db:"vendor_name" json:"vendorName"`
}

// OrderLineItemInsert is the write shape for a line item row.
type OrderLineItemInsert struct {
	OrderID       string          `db:"order_id"`
	ProductID     string          `db:"product_id"`
	SKU           string          `db:"sku"`
	Quantity      int             `db:"quantity"`
	Price         decimal.Decimal `db:"price"`
	Name          string          `db:"name"`
	Title         string          `db:"title"`
	GiftCard      bool            `db:"gift_card"`
	TotalDiscount decimal.Decimal `db:"total_discount"`
	VendorName    string          `db:"vendor_name"`
}

// OrderWithItems joins an order with its line items for margin aggregation.
type OrderWithItems struct {
	Order
	Items []OrderLineItem
}

// OrderFull is the order-detail view: order plus customer, line items and
// the payment gateway row.
type OrderFull struct {
	Order    Order           `json:"order"`
	Customer *Customer       `json:"customer,omitempty"`
	Items    []OrderLineItem `json:"items"`
	Paygate  *Paygate        `json:"paygate,omitempty"`
}

// OrderPage is one page of the order listing.
type OrderPage struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalOrders int     `json:"totalOrders"`
	HasNextPage bool    `json:"hasNextPage"`
	HasPrevPage bool    `json:"hasPrevPage"`
}
