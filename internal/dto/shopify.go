package dto

// OrdersResponse is the body of the storefront orders listing endpoint.
type OrdersResponse struct {
	Orders []ShopifyOrder `json:"orders"`
}

// VariantResponse is the body of the single-variant lookup endpoint.
type VariantResponse struct {
	Variant ShopifyVariant `json:"variant"`
}

// ShopifyOrder is the raw order payload as delivered by the storefront API
// (webhook or paginated listing). Monetary fields arrive as strings; they are
// normalized to decimals during ingestion.
type ShopifyOrder struct {
	ID                    int64             `json:"id"`
	OrderNumber           int64             `json:"order_number"`
	CreatedAt             string            `json:"created_at"`
	Gateway               string            `json:"gateway"`
	PaymentGatewayNames   []string          `json:"payment_gateway_names"`
	TotalPrice            string            `json:"total_price"`
	CurrentTotalPrice     string            `json:"current_total_price"`
	SubtotalPrice         string            `json:"subtotal_price"`
	CurrentSubtotalPrice  string            `json:"current_subtotal_price"`
	TotalLineItemsPrice   string            `json:"total_line_items_price"`
	TotalTax              string            `json:"total_tax"`
	CurrentTotalTax       string            `json:"current_total_tax"`
	TotalDiscounts        string            `json:"total_discounts"`
	CurrentTotalDiscounts string            `json:"current_total_discounts"`
	Customer              *ShopifyCustomer  `json:"customer"`
	ShippingAddress       *ShippingAddress  `json:"shipping_address"`
	ShippingLines         []ShippingLine    `json:"shipping_lines"`
	LineItems             []ShopifyLineItem `json:"line_items"`
	TotalShippingPriceSet *PriceSet         `json:"total_shipping_price_set"`
}

// ShopifyCustomer is the customer block embedded in an order payload.
type ShopifyCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ShippingAddress carries the shipping destination of an order.
type ShippingAddress struct {
	CountryCode string `json:"country_code"`
}

// ShippingLine is one shipping charge on an order.
type ShippingLine struct {
	Price string `json:"price"`
	Title string `json:"title"`
}

// PriceSet wraps a shop-currency money amount.
type PriceSet struct {
	ShopMoney Money `json:"shop_money"`
}

// Money is an amount/currency pair.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// ShopifyLineItem is one line of an order payload.
type ShopifyLineItem struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	VariantID     int64  `json:"variant_id"`
	Title         string `json:"title"`
	Name          string `json:"name"`
	VariantTitle  string `json:"variant_title"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	GiftCard      bool   `json:"gift_card"`
	TotalDiscount string `json:"total_discount"`
	Vendor        string `json:"vendor"`
}

// ShopifyVariant is the payload of a single-variant lookup, used to recover
// the true SKU when the line item carries none or a placeholder.
type ShopifyVariant struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Title string `json:"title"`
}
