package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakmargin/margin-manager/internal/dto"
)

var usdRate = decimal.NewFromFloat(1.15)

func rawOrder() *dto.ShopifyOrder {
	return &dto.ShopifyOrder{
		ID:                  450789469,
		OrderNumber:         1001,
		CreatedAt:           "2026-03-08T21:30:00Z",
		PaymentGatewayNames: []string{"paypal"},
		TotalPrice:          "100.00",
		SubtotalPrice:       "90.00",
		TotalTax:            "5.00",
		TotalDiscounts:      "10.00",
		Customer: &dto.ShopifyCustomer{
			ID:        207119551,
			Email:     "bob@example.com",
			FirstName: "Bob",
			LastName:  "Norman",
		},
		ShippingAddress: &dto.ShippingAddress{CountryCode: "DE"},
		ShippingLines:   []dto.ShippingLine{{Price: "4.00"}, {Price: "1.50"}},
		LineItems: []dto.ShopifyLineItem{
			{
				ID:           1071823172,
				ProductID:    7513594,
				VariantID:    43729076,
				Title:        "Custom Pet Pillow",
				Name:         "Custom Pet Pillow - Dog / L",
				VariantTitle: "Dog / L",
				SKU:          "PIL-DOG-L",
				Quantity:     2,
				Price:        "45.00",
			},
		},
	}
}

func TestNormalize(t *testing.T) {
	n, err := Normalize(rawOrder(), "paradis", usdRate)
	require.NoError(t, err)

	assert.Equal(t, "450789469", n.Order.ID)
	assert.Equal(t, "1001", n.Order.OrderNumber)
	assert.Equal(t, "paradis", n.Order.Tenant)
	assert.Equal(t, "DE", n.Order.ShipCountry)
	assert.True(t, n.Order.Revenue.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, n.Order.RevenueUSD.Equal(decimal.RequireFromString("115.00")))
	assert.True(t, n.Order.Tax.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, n.Order.Discount.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, n.Order.Shipping.Equal(decimal.RequireFromString("5.50")), "shipping lines summed")
	assert.Equal(t, time.Date(2026, 3, 8, 21, 30, 0, 0, time.UTC), n.Order.CreatedAt)

	require.NotNil(t, n.Customer)
	assert.Equal(t, "207119551", n.Customer.ID)
	assert.Equal(t, "Bob Norman", n.Customer.Fullname)
	assert.Equal(t, "DE", n.Customer.Country)
	require.True(t, n.Order.CustomerID.Valid)
	assert.Equal(t, "207119551", n.Order.CustomerID.String)

	assert.Equal(t, "paypal", n.Paygate.Name)
	assert.True(t, n.Paygate.Fee.Equal(decimal.RequireFromString("3.40")))

	require.Len(t, n.Items, 1)
	assert.Equal(t, "PIL-DOG-L", n.Items[0].SKU)
	assert.Equal(t, 2, n.Items[0].Quantity)

	require.Len(t, n.Products, 1)
	assert.Equal(t, "Dog", n.Products[0].ProductType)

	require.Len(t, n.Variants, 1)
	assert.Equal(t, "L", n.Variants[0].Size)
	assert.Equal(t, 2, n.Variants[0].SoldNumber)
}

func TestNormalizeFallbackChains(t *testing.T) {
	o := rawOrder()
	o.TotalPrice = ""
	o.CurrentTotalPrice = "80.00"
	o.SubtotalPrice = ""
	o.CurrentSubtotalPrice = ""
	o.TotalLineItemsPrice = "75.00"
	o.TotalTax = ""
	o.CurrentTotalTax = "3.00"
	o.TotalDiscounts = ""
	o.CurrentTotalDiscounts = ""
	o.TotalShippingPriceSet = &dto.PriceSet{ShopMoney: dto.Money{Amount: "9.99"}}

	n, err := Normalize(o, "paradis", usdRate)
	require.NoError(t, err)

	assert.True(t, n.Order.Revenue.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, n.Order.Subtotal.Equal(decimal.RequireFromString("75.00")))
	assert.True(t, n.Order.Tax.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, n.Order.Discount.IsZero())
	assert.True(t, n.Order.Shipping.Equal(decimal.RequireFromString("9.99")), "price set wins over shipping lines")
}

func TestNormalizeSkipsItemsIndependently(t *testing.T) {
	o := rawOrder()
	o.LineItems = []dto.ShopifyLineItem{
		{ProductID: 1, VariantID: 10, VariantTitle: "Dog /", SKU: "A-1", Quantity: 1},       // empty size
		{ProductID: 2, VariantID: 20, VariantTitle: "Cat / M", SKU: "", Quantity: 1},        // no sku
		{ProductID: 0, VariantID: 30, VariantTitle: "Fox / S", SKU: "C-1", Quantity: 1},     // no product id
		{ProductID: 3, VariantID: 40, VariantTitle: "Owl / XL", SKU: "D-1", Quantity: 3},    // good
		{ProductID: 4, VariantID: 50, VariantTitle: "Bee / XXL", SKU: "E-1", Quantity: 1},   // good
	}

	n, err := Normalize(o, "paradis", usdRate)
	require.NoError(t, err)

	// a malformed item never aborts the ones after it
	require.Len(t, n.Items, 2)
	assert.Equal(t, "D-1", n.Items[0].SKU)
	assert.Equal(t, "E-1", n.Items[1].SKU)

	assert.Equal(t, 1, n.SkippedItems["empty_size"])
	assert.Equal(t, 1, n.SkippedItems["no_sku"])
	assert.Equal(t, 1, n.SkippedItems["no_product_id"])
}

func TestNormalizeNoCustomer(t *testing.T) {
	o := rawOrder()
	o.Customer = nil

	n, err := Normalize(o, "paradis", usdRate)
	require.NoError(t, err)
	assert.Nil(t, n.Customer)
	assert.False(t, n.Order.CustomerID.Valid)
}

func TestNormalizeBadCreatedAt(t *testing.T) {
	o := rawOrder()
	o.CreatedAt = "not-a-date"
	_, err := Normalize(o, "paradis", usdRate)
	require.Error(t, err)
}

func TestProductTypeAndSize(t *testing.T) {
	assert.Equal(t, "Dog", productType("Dog / L"))
	assert.Equal(t, "unknown", productType(""))
	assert.Equal(t, "L", variantSize("Dog / L"))
	assert.Equal(t, "", variantSize("Dog /"))
	assert.Equal(t, "solo", variantSize("solo"))
}
