package app

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/peakmargin/margin-manager/config"
	httpapi "github.com/peakmargin/margin-manager/internal/api/http"
	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/ingest"
	"github.com/peakmargin/margin-manager/internal/margin"
	"github.com/peakmargin/margin-manager/internal/store"
	"github.com/peakmargin/margin-manager/internal/syncjob"
	"github.com/peakmargin/margin-manager/internal/tenant"
)

// App is the main application
type App struct {
	c    *config.Config
	db   dependency.Repository
	hs   *httpapi.Server
	sw   *syncjob.Worker
	done chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting margin manager")

	ms, err := store.New(ctx, a.c.DB)
	if err != nil {
		return fmt.Errorf("couldn't connect to mysql: %w", err)
	}
	a.db = ms

	reg, err := tenant.NewRegistry(a.c.Tenants)
	if err != nil {
		return fmt.Errorf("couldn't build tenant registry: %w", err)
	}

	ing := ingest.New(&a.c.Ingest, a.db)
	agg := margin.New(&a.c.Margin, a.db, reg)

	a.sw = syncjob.New(&a.c.Sync, ing, reg)
	if err := a.sw.Start(ctx); err != nil {
		return fmt.Errorf("cannot start sync worker: %w", err)
	}

	a.hs = httpapi.New(&a.c.HTTP)
	handler := httpapi.NewHandler(a.db, agg, a.sw, ms)
	if err := a.hs.Start(ctx, handler); err != nil {
		return fmt.Errorf("cannot start http server: %w", err)
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.sw != nil {
		a.sw.Stop()
	}
	if a.hs != nil {
		a.hs.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
