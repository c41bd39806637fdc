package planner

import (
	"context"
	"log"
	"time"

	"menu-optimizer/internal/catalog"
)

// Two consecutive infeasible days end fresh solving.
const maxConsecutiveFailures = 2

// sequencer holds the state of one multi-day run. It is never shared.
type sequencer struct {
	cat      *catalog.Catalog
	targets  Targets
	policy   Policy
	solver   MILPSolver
	observer SolveObserver

	allowed    catalog.AllowedFoods
	accepted   []DayPlan
	stripped   [][catalog.NumSlots][]int
	failures   int
	needsReset bool
	builds     int
}

func newSequencer(g *Generator, cat *catalog.Catalog, t Targets) *sequencer {
	return &sequencer{
		cat:      cat,
		targets:  t,
		policy:   g.Policy,
		solver:   g.Solver,
		observer: g.Observer,
		allowed:  cat.AllowedFoods(),
	}
}

// run produces exactly targets.NumDays days, recycling accepted days when
// fresh solving keeps failing.
func (s *sequencer) run(ctx context.Context) ([]DayPlan, error) {
	for len(s.accepted) < s.targets.NumDays {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		day := len(s.accepted) + 1

		if s.needsReset {
			s.allowed = s.cat.AllowedFoods()
			s.needsReset = false
		}
		if len(s.accepted) > 0 {
			s.prune(s.accepted[len(s.accepted)-1])
		}

		dm := BuildDayModel(BuildInput{
			Catalog: s.cat,
			Allowed: s.allowed,
			Targets: s.targets,
			Policy:  s.policy,
			Run:     s.builds,
		})
		s.builds++
		dm.AddSelectionIndicators()
		s.addDuplicateGuards(dm)

		start := time.Now()
		attempt := dm.Solve(ctx, s.solver, day)
		if s.observer != nil {
			s.observer.ObserveSolve(attempt.SolverStatus.String(), time.Since(start))
		}

		switch attempt.Status {
		case AttemptAccepted:
			s.accept(attempt.Day)
			s.failures = 0
		case AttemptInfeasible:
			s.needsReset = true
			s.failures++
			log.Printf("Day %d: %v (attempt %d)", day, attempt.Err, s.failures)
			if s.failures >= maxConsecutiveFailures {
				return s.repair(&ExhaustedRetriesError{Day: day, Failures: s.failures, Last: attempt.Err})
			}
		default:
			return nil, attempt.Err
		}
	}
	return s.accepted, nil
}

// prune removes the previous day's non-vegetable main-slot foods from their
// slots, its lunch vegetables from lunch and its snacks from snacks.
func (s *sequencer) prune(prev DayPlan) {
	for _, slot := range catalog.MainSlots {
		for _, p := range prev.Meals[slot] {
			i, ok := s.cat.Lookup(p.FoodID)
			if !ok {
				continue
			}
			food := s.cat.Food(i)
			isVeg := food.Category == catalog.Vegetable
			if !isVeg || s.policy.rotatesAlways(food) || slot == catalog.Lunch {
				s.allowed.Remove(slot, i)
			}
		}
	}
	for _, p := range prev.Meals[catalog.Snacks] {
		if i, ok := s.cat.Lookup(p.FoodID); ok {
			s.allowed.Remove(catalog.Snacks, i)
		}
	}
}

func (s *sequencer) addDuplicateGuards(dm *DayModel) {
	for d, slots := range s.stripped {
		for _, slot := range catalog.MainSlots {
			dm.AddDuplicateGuard(slot, slots[slot], d+1)
		}
	}
}

func (s *sequencer) accept(day DayPlan) {
	s.accepted = append(s.accepted, day)

	var stripped [catalog.NumSlots][]int
	for _, slot := range catalog.MainSlots {
		for _, p := range day.Meals[slot] {
			i, ok := s.cat.Lookup(p.FoodID)
			if !ok || s.cat.Food(i).Category == catalog.Vegetable {
				continue
			}
			stripped[slot] = append(stripped[slot], i)
		}
	}
	s.stripped = append(s.stripped, stripped)
}

// repair fills the remaining days by cycling through the accepted ones.
func (s *sequencer) repair(cause *ExhaustedRetriesError) ([]DayPlan, error) {
	base := len(s.accepted)
	if base == 0 {
		return nil, cause
	}

	remaining := s.targets.NumDays - base
	log.Printf("Repair mode after day %d: recycling %d accepted day(s) to fill %d remaining", cause.Day, base, remaining)

	days := append([]DayPlan(nil), s.accepted...)
	for i := 0; len(days) < s.targets.NumDays; i++ {
		d := s.accepted[i%base].clone()
		d.Recycled = true
		d.SourceDay = i%base + 1
		days = append(days, d)
	}
	return days, nil
}
