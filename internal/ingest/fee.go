package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/peakmargin/margin-manager/internal/dto"
)

// Processing fee rates by lowercased gateway name. Unknown gateways fall back
// to defaultFeeRate.
var feeRates = map[string]decimal.Decimal{
	"shopify_payments": decimal.NewFromFloat(0.029),
	"paypal":           decimal.NewFromFloat(0.034),
	"stripe":           decimal.NewFromFloat(0.029),
	"manual":           decimal.Zero,
}

var defaultFeeRate = decimal.NewFromFloat(0.03)

// GatewayName picks the order's payment gateway: the first entry of
// payment_gateway_names, else the legacy gateway field, else "unknown".
func GatewayName(o *dto.ShopifyOrder) string {
	if len(o.PaymentGatewayNames) > 0 && o.PaymentGatewayNames[0] != "" {
		return o.PaymentGatewayNames[0]
	}
	if o.Gateway != "" {
		return o.Gateway
	}
	return "unknown"
}

// GatewayFee computes the processing fee for an order total, rounded to
// cents. The gateway name is matched case-insensitively.
func GatewayFee(gateway string, total decimal.Decimal) decimal.Decimal {
	rate, ok := feeRates[strings.ToLower(gateway)]
	if !ok {
		rate = defaultFeeRate
	}
	return total.Mul(rate).Round(2)
}
