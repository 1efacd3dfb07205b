package ingest

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peakmargin/margin-manager/internal/dto"
	"github.com/peakmargin/margin-manager/internal/entity"
)

// NormalizedOrder is a raw order payload resolved into write-ready rows.
type NormalizedOrder struct {
	Order    entity.OrderInsert
	Customer *entity.CustomerUpsert
	Items    []entity.OrderLineItemInsert
	Products []entity.ProductUpsert
	Variants []entity.ProductVariant
	Paygate  entity.PaygateUpsert

	// SkippedItems counts line items dropped during validation, by reason.
	SkippedItems map[string]int
}

// Normalize converts a raw order payload into persistable rows. Monetary
// fields go through fallback chains because the API populates different
// fields depending on order age and edits. Line items are validated
// independently; a malformed item is skipped, never the rest of the order.
// SKU resolution against the catalog must happen before calling Normalize.
func Normalize(o *dto.ShopifyOrder, tenantName string, usdRate decimal.Decimal) (*NormalizedOrder, error) {
	createdAt, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("could not parse order created_at %q: %w", o.CreatedAt, err)
	}

	total := parseAmount(firstNonEmpty(o.TotalPrice, o.CurrentTotalPrice))
	subtotal := parseAmount(firstNonEmpty(o.SubtotalPrice, o.CurrentSubtotalPrice, o.TotalLineItemsPrice))
	tax := parseAmount(firstNonEmpty(o.TotalTax, o.CurrentTotalTax))
	discount := parseAmount(firstNonEmpty(o.TotalDiscounts, o.CurrentTotalDiscounts))

	orderID := strconv.FormatInt(o.ID, 10)
	gateway := GatewayName(o)

	n := &NormalizedOrder{
		Order: entity.OrderInsert{
			ID:          orderID,
			OrderNumber: strconv.FormatInt(o.OrderNumber, 10),
			ShipCountry: shipCountry(o),
			Revenue:     total,
			RevenueUSD:  total.Mul(usdRate).Round(2),
			Discount:    discount,
			Tax:         tax,
			Shipping:    shippingTotal(o),
			Subtotal:    subtotal,
			PaygateName: gateway,
			Tenant:      tenantName,
			CreatedAt:   createdAt.UTC(),
		},
		Paygate: entity.PaygateUpsert{
			OrderID: orderID,
			Name:    gateway,
			Fee:     GatewayFee(gateway, total),
		},
		SkippedItems: make(map[string]int),
	}

	if o.Customer != nil && o.Customer.ID != 0 {
		customerID := strconv.FormatInt(o.Customer.ID, 10)
		n.Order.CustomerID = sql.NullString{String: customerID, Valid: true}
		n.Customer = &entity.CustomerUpsert{
			ID:       customerID,
			Email:    o.Customer.Email,
			Fullname: strings.TrimSpace(o.Customer.FirstName + " " + o.Customer.LastName),
			Country:  shipCountry(o),
		}
	}

	seenProducts := make(map[string]struct{})
	for i := range o.LineItems {
		n.normalizeItem(orderID, &o.LineItems[i], seenProducts)
	}

	return n, nil
}

func (n *NormalizedOrder) normalizeItem(orderID string, item *dto.ShopifyLineItem, seenProducts map[string]struct{}) {
	if item.ProductID == 0 {
		n.SkippedItems["no_product_id"]++
		return
	}
	productID := strconv.FormatInt(item.ProductID, 10)

	if _, ok := seenProducts[productID]; !ok {
		seenProducts[productID] = struct{}{}
		n.Products = append(n.Products, entity.ProductUpsert{
			ID:          productID,
			Title:       item.Title,
			Body:        item.Name,
			ProductType: productType(item.VariantTitle),
		})
	}

	if item.VariantID != 0 {
		size := variantSize(item.VariantTitle)
		if size == "" {
			n.SkippedItems["empty_size"]++
			return
		}
		n.Variants = append(n.Variants, entity.ProductVariant{
			ID:         strconv.FormatInt(item.VariantID, 10),
			ProductID:  productID,
			Size:       size,
			SoldNumber: item.Quantity,
		})
	}

	sku := strings.TrimSpace(item.SKU)
	if sku == "" {
		n.SkippedItems["no_sku"]++
		return
	}

	n.Items = append(n.Items, entity.OrderLineItemInsert{
		OrderID:       orderID,
		ProductID:     productID,
		SKU:           sku,
		Quantity:      item.Quantity,
		Price:         parseAmount(item.Price),
		Name:          item.Name,
		Title:         item.Title,
		GiftCard:      item.GiftCard,
		TotalDiscount: parseAmount(item.TotalDiscount),
		VendorName:    item.Vendor,
	})
}

// productType is the first slash segment of the variant title, "unknown"
// when the title is empty.
func productType(variantTitle string) string {
	first := strings.TrimSpace(strings.Split(variantTitle, "/")[0])
	if first == "" {
		return "unknown"
	}
	return first
}

// variantSize is the last slash segment of the variant title.
func variantSize(variantTitle string) string {
	parts := strings.Split(variantTitle, "/")
	return strings.TrimSpace(parts[len(parts)-1])
}

func shipCountry(o *dto.ShopifyOrder) string {
	if o.ShippingAddress == nil {
		return ""
	}
	return o.ShippingAddress.CountryCode
}

// shippingTotal prefers the shop-money shipping total and falls back to
// summing the individual shipping lines.
func shippingTotal(o *dto.ShopifyOrder) decimal.Decimal {
	if o.TotalShippingPriceSet != nil && o.TotalShippingPriceSet.ShopMoney.Amount != "" {
		return parseAmount(o.TotalShippingPriceSet.ShopMoney.Amount)
	}
	sum := decimal.Zero
	for _, line := range o.ShippingLines {
		sum = sum.Add(parseAmount(line.Price))
	}
	return sum
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
