package syncjob

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func (w *Worker) worker(ctx context.Context) {
	ticker := time.NewTicker(w.c.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				slog.Default().ErrorContext(ctx, "sync run failed",
					slog.String("err", err.Error()),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce syncs every registered tenant concurrently. Tenants are
// independent, so one tenant's failure does not stop the others; the first
// error is returned after all finish.
func (w *Worker) RunOnce(ctx context.Context) error {
	runID := uuid.New().String()
	since := time.Now().Add(-w.c.Lookback)

	slog.Default().InfoContext(ctx, "starting sync run",
		slog.String("run_id", runID),
		slog.Time("since", since),
	)

	var g errgroup.Group
	for _, tn := range w.reg.All() {
		tn := tn
		g.Go(func() error {
			res, err := w.ing.SyncTenant(ctx, tn, since)
			if err != nil {
				slog.Default().ErrorContext(ctx, "tenant sync failed",
					slog.String("run_id", runID),
					slog.String("tenant", tn.Name),
					slog.String("err", err.Error()),
				)
				return err
			}
			slog.Default().InfoContext(ctx, "tenant sync done",
				slog.String("run_id", runID),
				slog.String("tenant", tn.Name),
				slog.Int("ingested", res.Ingested),
				slog.Int("failed", res.Failed),
			)
			return nil
		})
	}
	return g.Wait()
}
