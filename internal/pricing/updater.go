package pricing

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"menu-optimizer/internal/catalog"
)

// Updater refreshes food prices across all sources.
type Updater struct {
	sources []Source
	workers int
	// Delay between lookups against the same source.
	Delay time.Duration
}

// NewUpdater creates an Updater scraping at most workers sources at once.
func NewUpdater(sources []Source, workers int) *Updater {
	if workers <= 0 {
		workers = len(sources)
	}
	return &Updater{sources: sources, workers: workers}
}

// Sources returns the names of the sources the updater reads.
func (u *Updater) Sources() []string {
	names := make([]string, 0, len(u.sources))
	for _, s := range u.sources {
		names = append(names, s.Name())
	}
	return names
}

// Refresh looks every food up in every source and returns
// prices[foodID][source] per 100 g. A failed lookup is recorded as 0
// (unavailable); only cancellation aborts the refresh. foods is not modified.
func (u *Updater) Refresh(ctx context.Context, foods []catalog.RawFood) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(foods))
	for _, f := range foods {
		out[f.Key()] = make(map[string]float64, len(u.sources))
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for _, src := range u.sources {
		g.Go(func() error {
			found := 0
			for i, f := range foods {
				if i > 0 && u.Delay > 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(u.Delay):
					}
				}
				if err := ctx.Err(); err != nil {
					return err
				}

				price, err := src.Lookup(ctx, f.Name)
				if err != nil {
					log.Printf("Source %s: lookup of %s failed: %v", src.Name(), f.Name, err)
					price = 0
				}
				if price > 0 {
					found++
				}

				mu.Lock()
				out[f.Key()][src.Name()] = price
				mu.Unlock()
			}
			log.Printf("Source %s: priced %d of %d foods", src.Name(), found, len(foods))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
