package planner

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"menu-optimizer/internal/catalog"
)

// Selector runs the generator once per price source and keeps the cheapest
// successful menu.
type Selector struct {
	generator *Generator
	workers   int
}

// NewSelector creates a Selector running at most workers sources at a time.
// workers <= 0 means one source at a time.
func NewSelector(g *Generator, workers int) *Selector {
	if workers <= 0 {
		workers = 1
	}
	return &Selector{generator: g, workers: workers}
}

// Select generates a menu per source from its own snapshot of records. Ties
// go to the source listed first. The returned MenuResult is always usable;
// the error carries the typed failure when there is one.
func (s *Selector) Select(ctx context.Context, records []catalog.RawFood, t Targets, sources []string) (MenuResult, error) {
	if len(sources) == 0 {
		return failure(t, ErrNoPriceSources), ErrNoPriceSources
	}
	if err := t.Validate(); err != nil {
		return failure(t, err), err
	}

	results := make([]*MenuResult, len(sources))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for idx, source := range sources {
		g.Go(func() error {
			snapshot := catalog.ForSource(records, source)
			if len(snapshot) == 0 {
				log.Printf("Source %s: no priced foods, skipping", source)
				return nil
			}
			cat, err := catalog.Load(snapshot)
			if err != nil {
				log.Printf("Source %s: failed to load catalog: %v", source, err)
				return nil
			}
			res := s.generator.Generate(ctx, cat, t)
			results[idx] = &res
			return nil
		})
	}
	_ = g.Wait()

	costs := make(map[string]float64)
	best := -1
	for idx, source := range sources {
		r := results[idx]
		if r == nil || !r.Success {
			continue
		}
		costs[source] = r.TotalCost
		log.Printf("Source %s: total cost %.2f", source, r.TotalCost)
		if best < 0 || r.TotalCost < results[best].TotalCost {
			best = idx
		}
	}

	if best < 0 {
		err := &NoFeasibleSourceError{Sources: sources}
		res := failure(t, err)
		return res, err
	}

	out := *results[best]
	out.PriceSource = sources[best]
	out.SourceCosts = costs
	log.Printf("Chosen price source: %s (%.2f)", out.PriceSource, out.TotalCost)
	return out, nil
}
