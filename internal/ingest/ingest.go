// Package ingest turns raw storefront order payloads into persisted orders:
// normalization, catalog SKU resolution, gateway fees and the idempotent
// transactional write.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/dto"
	"github.com/peakmargin/margin-manager/internal/metrics"
	"github.com/peakmargin/margin-manager/internal/tenant"
)

type Config struct {
	// USDRate converts shop-currency revenue to an approximate USD figure.
	// A static approximation, not a live FX rate.
	USDRate float64 `mapstructure:"usd_rate"`
	// PlaceholderSKUs are catalog values that mean "no real SKU"; items
	// carrying one get a secondary variant lookup.
	PlaceholderSKUs []string `mapstructure:"placeholder_skus"`
}

// Ingestor persists raw orders for registered tenants.
type Ingestor struct {
	rep          dependency.Repository
	usdRate      decimal.Decimal
	placeholders map[string]struct{}
}

func New(c *Config, rep dependency.Repository) *Ingestor {
	rate := decimal.NewFromFloat(c.USDRate)
	if rate.LessThanOrEqual(decimal.Zero) {
		rate = decimal.NewFromFloat(1.15)
	}

	placeholders := make(map[string]struct{}, len(c.PlaceholderSKUs))
	for _, sku := range c.PlaceholderSKUs {
		placeholders[strings.ToUpper(strings.TrimSpace(sku))] = struct{}{}
	}

	return &Ingestor{
		rep:          rep,
		usdRate:      rate,
		placeholders: placeholders,
	}
}

// Result summarizes one sync run.
type Result struct {
	Fetched  int
	Ingested int
	Skipped  int
	Failed   int
}

// SyncTenant fetches orders updated since the watermark and ingests each one.
// A failing order is logged and counted but never blocks the ones behind it;
// a malformed payload would otherwise poison every following run over the
// same window.
func (ing *Ingestor) SyncTenant(ctx context.Context, tn *tenant.Tenant, since time.Time) (Result, error) {
	started := time.Now()

	orders, err := tn.Shop.FetchOrders(ctx, since)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(tn.Name, "orders").Inc()
		return Result{}, fmt.Errorf("could not fetch orders for tenant %s: %w", tn.Name, err)
	}

	res := Result{Fetched: len(orders)}
	for i := range orders {
		accepted, err := ing.IngestOrder(ctx, tn, &orders[i])
		if err != nil {
			res.Failed++
			metrics.OrdersSkipped.WithLabelValues(tn.Name, "failed").Inc()
			slog.Default().ErrorContext(ctx, "could not ingest order",
				slog.String("tenant", tn.Name),
				slog.Int64("order_id", orders[i].ID),
				slog.String("err", err.Error()),
			)
			continue
		}
		if accepted {
			res.Ingested++
			metrics.OrdersIngested.WithLabelValues(tn.Name).Inc()
		} else {
			res.Skipped++
			metrics.OrdersSkipped.WithLabelValues(tn.Name, "duplicate").Inc()
		}
	}

	metrics.SyncDuration.WithLabelValues(tn.Name).Observe(time.Since(started).Seconds())
	slog.Default().InfoContext(ctx, "sync run finished",
		slog.String("tenant", tn.Name),
		slog.Int("fetched", res.Fetched),
		slog.Int("ingested", res.Ingested),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}

// IngestOrder persists one raw order inside a single transaction. Re-delivery
// of an already stored order is a successful no-op. SKU resolution calls the
// storefront before the transaction opens so no lock is held across a network
// call.
func (ing *Ingestor) IngestOrder(ctx context.Context, tn *tenant.Tenant, raw *dto.ShopifyOrder) (bool, error) {
	ing.resolveSKUs(ctx, tn, raw)

	n, err := Normalize(raw, tn.Name, ing.usdRate)
	if err != nil {
		return false, err
	}
	for reason, count := range n.SkippedItems {
		metrics.LineItemsSkipped.WithLabelValues(tn.Name, reason).Add(float64(count))
	}

	accepted := false
	err = ing.rep.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		exists, err := rep.Order().OrderExists(ctx, n.Order.ID)
		if err != nil {
			return fmt.Errorf("could not check order existence: %w", err)
		}
		if exists {
			return nil
		}

		if n.Customer != nil {
			if err := rep.Customer().UpsertCustomer(ctx, n.Customer); err != nil {
				return fmt.Errorf("could not upsert customer: %w", err)
			}
		}

		if err := rep.Order().InsertOrder(ctx, &n.Order); err != nil {
			if rep.IsErrUniqueViolation(err) {
				// a concurrent ingestion of the same order won the race
				return nil
			}
			return fmt.Errorf("could not insert order: %w", err)
		}

		for i := range n.Products {
			if err := rep.Product().UpsertProduct(ctx, &n.Products[i]); err != nil {
				return fmt.Errorf("could not upsert product: %w", err)
			}
		}
		for i := range n.Variants {
			if err := rep.Product().UpsertVariant(ctx, &n.Variants[i]); err != nil {
				return fmt.Errorf("could not upsert variant: %w", err)
			}
		}

		if len(n.Items) > 0 {
			if err := rep.Order().InsertLineItems(ctx, n.Items); err != nil {
				return fmt.Errorf("could not insert line items: %w", err)
			}
		}

		if err := rep.Order().UpsertPaygate(ctx, &n.Paygate); err != nil {
			return fmt.Errorf("could not upsert paygate: %w", err)
		}

		day := n.Order.CreatedAt.UTC().Truncate(24 * time.Hour)
		if err := rep.Stats().BumpDailyStats(ctx, day, n.Order.Revenue); err != nil {
			return fmt.Errorf("could not bump daily stats: %w", err)
		}

		accepted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// resolveSKUs replaces missing or placeholder SKUs with the variant's catalog
// SKU. A failed lookup keeps the original value; the item is still ingested.
func (ing *Ingestor) resolveSKUs(ctx context.Context, tn *tenant.Tenant, raw *dto.ShopifyOrder) {
	for i := range raw.LineItems {
		item := &raw.LineItems[i]
		if !ing.needsLookup(item.SKU) || item.VariantID == 0 {
			continue
		}

		sku, err := tn.Shop.FetchVariantSKU(ctx, item.VariantID)
		if err != nil {
			metrics.FetchErrors.WithLabelValues(tn.Name, "variants").Inc()
			slog.Default().WarnContext(ctx, "variant sku lookup failed, keeping original",
				slog.String("tenant", tn.Name),
				slog.Int64("variant_id", item.VariantID),
				slog.String("err", err.Error()),
			)
			continue
		}
		if sku != "" {
			item.SKU = sku
		}
	}
}

func (ing *Ingestor) needsLookup(sku string) bool {
	trimmed := strings.TrimSpace(sku)
	if trimmed == "" {
		return true
	}
	_, isPlaceholder := ing.placeholders[strings.ToUpper(trimmed)]
	return isPlaceholder
}
