package planner

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"runtime/debug"

	"menu-optimizer/internal/catalog"
)

// Generator builds multi-day menus from a catalog snapshot.
type Generator struct {
	Solver   MILPSolver
	Policy   Policy
	Observer SolveObserver

	// Shuffle reorders the generated days with a generator seeded by Seed.
	Shuffle bool
	Seed    int64
}

// NewGenerator creates a Generator with the default policy.
func NewGenerator(solver MILPSolver) *Generator {
	return &Generator{Solver: solver, Policy: DefaultPolicy(), Seed: 42}
}

// Generate runs the day sequencer for t.NumDays days. It never panics and
// never returns an error: failures come back as an unsuccessful MenuResult.
func (g *Generator) Generate(ctx context.Context, cat *catalog.Catalog, t Targets) (res MenuResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Menu generation panicked: %v\n%s", r, debug.Stack())
			res = failure(t, fmt.Errorf("internal error while generating menu: %v", r))
		}
	}()

	days, err := g.generateDays(ctx, cat, t)
	if err != nil {
		log.Printf("Menu generation failed (%d days, %d foods): %v", t.NumDays, cat.Len(), err)
		return failure(t, err)
	}
	return Format(cat, days, t)
}

func (g *Generator) generateDays(ctx context.Context, cat *catalog.Catalog, t Targets) ([]DayPlan, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if g.Solver == nil {
		return nil, fmt.Errorf("generator has no solver")
	}

	days, err := newSequencer(g, cat, t).run(ctx)
	if err != nil {
		return nil, err
	}

	if g.Shuffle {
		rng := rand.New(rand.NewSource(g.Seed))
		days = ShuffleDays(days, t.NumDays, cat.IsVegetable, rng)
	}
	return days, nil
}
