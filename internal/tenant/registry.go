// Package tenant holds the per-shop runtime wiring: storefront client, ads
// client and the shop's IANA timezone, built once from configuration.
package tenant

import (
	"fmt"
	"sort"
	"time"

	"github.com/peakmargin/margin-manager/internal/ads"
	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/gerr"
	"github.com/peakmargin/margin-manager/internal/shopify"
)

type Config struct {
	Name     string         `mapstructure:"name"`
	Timezone string         `mapstructure:"timezone"`
	Shop     shopify.Config `mapstructure:"shop"`
	Ads      ads.Config     `mapstructure:"ads"`
}

// Tenant is one registered shop. Ads is nil when no ads account is
// configured; margin reports for such a tenant come back empty.
type Tenant struct {
	Name     string
	Location *time.Location
	Shop     dependency.Storefront
	Ads      dependency.AdsReporter
}

// Registry resolves tenant names to their wiring. It is immutable after
// construction and safe for concurrent reads.
type Registry struct {
	tenants map[string]*Tenant
}

// NewRegistry builds the registry from configuration. Every tenant needs a
// unique name and a resolvable IANA timezone.
func NewRegistry(configs []Config) (*Registry, error) {
	tenants := make(map[string]*Tenant, len(configs))
	for i := range configs {
		c := &configs[i]
		if c.Name == "" {
			return nil, fmt.Errorf("tenant %d has no name", i)
		}
		if _, ok := tenants[c.Name]; ok {
			return nil, fmt.Errorf("duplicate tenant name %q", c.Name)
		}

		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("tenant %q: could not load timezone %q: %w", c.Name, c.Timezone, err)
		}

		t := &Tenant{
			Name:     c.Name,
			Location: loc,
			Shop:     shopify.New(&c.Shop),
		}
		if c.Ads.AccountID != "" {
			t.Ads = ads.New(&c.Ads)
		}
		tenants[c.Name] = t
	}
	return &Registry{tenants: tenants}, nil
}

// Get resolves a tenant by name.
func (r *Registry) Get(name string) (*Tenant, error) {
	t, ok := r.tenants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gerr.ErrTenantNotFound, name)
	}
	return t, nil
}

// All returns every registered tenant, sorted by name for deterministic
// sync ordering.
func (r *Registry) All() []*Tenant {
	out := make([]*Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
