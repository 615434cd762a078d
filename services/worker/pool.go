package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sjsage522/rafflemonitor/internal/crawler"
)

// runPool claims every new url first, fetches and extracts the claimed
// details with up to DetailWorkers goroutines, then notifies in listing order.
func (w *Worker) runPool(ctx context.Context, urls []string, stats *CycleStats) error {
	claimed := make([]string, 0, len(urls))
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := w.claim(ctx, url)
		if err != nil {
			return err
		}
		if !ok {
			stats.Skipped++
			continue
		}
		claimed = append(claimed, url)
	}

	items := make([]*crawler.RaffleItem, len(claimed))

	var g errgroup.Group
	g.SetLimit(w.opts.DetailWorkers)
	for i, url := range claimed {
		g.Go(func() error {
			// a failed detail only loses its own slot
			item, err := w.collect(ctx, url)
			if err == nil {
				items[i] = item
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item == nil {
			stats.Failed++
			continue
		}
		if err := w.deliver(ctx, item); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Failed++
			continue
		}
		stats.Notified++
	}
	return nil
}
