// Package syncjob runs the periodic order sync: each tick fetches recently
// updated orders from every tenant's storefront and ingests them.
package syncjob

import (
	"context"
	"fmt"
	"time"

	"github.com/peakmargin/margin-manager/internal/ingest"
	"github.com/peakmargin/margin-manager/internal/tenant"
)

// Config holds configuration for the sync worker.
type Config struct {
	WorkerInterval time.Duration `mapstructure:"worker_interval"`
	// Lookback is how far behind the current time each run reaches. Runs
	// overlap on purpose; the ingest guard makes re-delivery a no-op.
	Lookback time.Duration `mapstructure:"lookback"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		WorkerInterval: 10 * time.Minute,
		Lookback:       24 * time.Hour,
	}
}

// Worker periodically syncs all registered tenants.
type Worker struct {
	ing  *ingest.Ingestor
	reg  *tenant.Registry
	c    *Config
	ctx  context.Context
	stop context.CancelFunc
}

// New creates a new sync worker.
func New(c *Config, ing *ingest.Ingestor, reg *tenant.Registry) *Worker {
	if c == nil {
		dc := DefaultConfig()
		c = &dc
	}
	if c.WorkerInterval == 0 {
		c.WorkerInterval = 10 * time.Minute
	}
	if c.Lookback == 0 {
		c.Lookback = 24 * time.Hour
	}
	return &Worker{
		ing: ing,
		reg: reg,
		c:   c,
	}
}

// Start starts the worker.
func (w *Worker) Start(ctx context.Context) error {
	if w.ctx != nil && w.stop != nil {
		return fmt.Errorf("sync worker already started")
	}
	w.ctx, w.stop = context.WithCancel(ctx)
	go w.worker(w.ctx)
	return nil
}

// Stop stops the worker.
func (w *Worker) Stop() {
	if w.stop != nil {
		w.stop()
	}
}
