// Package shopify implements a client for the storefront order API: paginated
// order listing with cursor following and single-variant SKU lookups backed by
// a bounded in-process cache.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/peakmargin/margin-manager/internal/cache"
	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/dto"
	"github.com/peakmargin/margin-manager/internal/gerr"
	"github.com/peakmargin/margin-manager/internal/metrics"
)

type Config struct {
	ShopDomain       string `mapstructure:"shop_domain"`
	AccessToken      string `mapstructure:"access_token"`
	APIVersion       string `mapstructure:"api_version"`
	PageSize         int    `mapstructure:"page_size"`
	PageBudget       int    `mapstructure:"page_budget"`
	VariantCacheSize int    `mapstructure:"variant_cache_size"`
}

type Client struct {
	c        *Config
	cli      *resty.Client
	variants *cache.LRU
}

func New(c *Config) *Client {
	if c.APIVersion == "" {
		c.APIVersion = "2024-01"
	}
	if c.PageSize <= 0 {
		c.PageSize = 250
	}
	if c.PageBudget <= 0 {
		c.PageBudget = 20
	}
	if c.VariantCacheSize <= 0 {
		c.VariantCacheSize = 512
	}

	cli := resty.New()
	cli.SetBaseURL(fmt.Sprintf("https://%s/admin/api/%s", c.ShopDomain, c.APIVersion))
	cli.SetHeader("X-Shopify-Access-Token", c.AccessToken)
	cli.SetTimeout(30 * time.Second)

	return &Client{
		c:        c,
		cli:      cli,
		variants: cache.NewLRU(c.VariantCacheSize),
	}
}

// compile-time interface check
var _ dependency.Storefront = (*Client)(nil)

// FetchOrders pages through orders updated since the watermark. Pagination
// follows the Link response header and stops when no next cursor is present
// or the page budget is exhausted. Orders seen on earlier pages are dropped,
// so a shifting result set cannot produce duplicates.
func (cli *Client) FetchOrders(ctx context.Context, updatedAtMin time.Time) ([]dto.ShopifyOrder, error) {
	seen := make(map[int64]struct{})
	var orders []dto.ShopifyOrder

	cursor := ""
	for page := 0; page < cli.c.PageBudget; page++ {
		req := cli.cli.R().SetContext(ctx).
			SetQueryParam("limit", fmt.Sprintf("%d", cli.c.PageSize))
		if cursor == "" {
			req.SetQueryParam("status", "any")
			req.SetQueryParam("fulfillment_status", "any")
			req.SetQueryParam("financial_status", "any")
			req.SetQueryParam("updated_at_min", updatedAtMin.UTC().Format(time.RFC3339))
		} else {
			// cursored requests must not repeat the filter params
			req.SetQueryParam("page_info", cursor)
		}

		resp, err := req.Get("/orders.json")
		if err != nil {
			return nil, &gerr.TransientFetchError{Endpoint: "orders.json", Err: err}
		}
		if resp.StatusCode() != 200 {
			return nil, &gerr.TransientFetchError{Endpoint: "orders.json", Status: resp.StatusCode()}
		}

		var body dto.OrdersResponse
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return nil, fmt.Errorf("could not unmarshal orders response: %w : body: %v", err, resp.String())
		}

		for _, o := range body.Orders {
			if _, ok := seen[o.ID]; ok {
				continue
			}
			seen[o.ID] = struct{}{}
			orders = append(orders, o)
		}

		cursor = nextPageCursor(resp.Header().Get("Link"))
		if cursor == "" {
			break
		}
	}

	return orders, nil
}

// FetchVariantSKU resolves a variant id to its catalog SKU, serving repeats
// from the cache.
func (cli *Client) FetchVariantSKU(ctx context.Context, variantID int64) (string, error) {
	if sku, ok := cli.variants.Get(variantID); ok {
		metrics.VariantCacheHits.Inc()
		return sku, nil
	}

	resp, err := cli.cli.R().SetContext(ctx).
		Get(fmt.Sprintf("/variants/%d.json", variantID))
	if err != nil {
		return "", &gerr.TransientFetchError{Endpoint: "variants", Err: err}
	}
	if resp.StatusCode() != 200 {
		return "", &gerr.TransientFetchError{Endpoint: "variants", Status: resp.StatusCode()}
	}

	var body dto.VariantResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("could not unmarshal variant response: %w : body: %v", err, resp.String())
	}

	sku := strings.TrimSpace(body.Variant.SKU)
	if sku != "" {
		cli.variants.Put(variantID, sku)
	}
	return sku, nil
}

// nextPageCursor extracts the page_info token of the rel="next" link from a
// Link response header. It returns "" when the header carries no next link,
// which ends pagination.
func nextPageCursor(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			return ""
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}
