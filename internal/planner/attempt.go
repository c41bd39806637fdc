package planner

import (
	"context"
	"fmt"
	"time"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/milp"
)

// Quantities at or below qtyTolerance are solver noise. It stays well under
// selectionEpsilon so every food the solver selected is read back.
const qtyTolerance = 1e-6

// MILPSolver solves a model. *milp.Solver satisfies it.
type MILPSolver interface {
	Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error)
}

// SolveObserver is told about every day solve.
type SolveObserver interface {
	ObserveSolve(status string, elapsed time.Duration)
}

// AttemptStatus classifies a day solve.
type AttemptStatus int

const (
	AttemptAccepted AttemptStatus = iota
	AttemptInfeasible
	AttemptFatal
)

// Attempt is the outcome of solving one day's model.
type Attempt struct {
	Status       AttemptStatus
	SolverStatus milp.Status
	Day          DayPlan
	Err          error
}

// Solve runs the model and reads back the day. Only a proven optimum is
// accepted.
func (dm *DayModel) Solve(ctx context.Context, solver MILPSolver, day int) Attempt {
	sol, err := solver.Solve(ctx, dm.Model)
	if err != nil {
		return Attempt{Status: AttemptFatal, Err: fmt.Errorf("solver failed on day %d: %w", day, err)}
	}
	if sol.Status != milp.StatusOptimal {
		return Attempt{
			Status:       AttemptInfeasible,
			SolverStatus: sol.Status,
			Err:          &InfeasibleDayError{Day: day, Status: sol.Status},
		}
	}
	return Attempt{Status: AttemptAccepted, SolverStatus: sol.Status, Day: dm.readDay(sol)}
}

func (dm *DayModel) readDay(sol *milp.Solution) DayPlan {
	day := DayPlan{Meals: make(map[catalog.Slot][]Portion, catalog.NumSlots), Cost: sol.Objective}
	for _, slot := range catalog.Slots {
		portions := []Portion{}
		for i := 0; i < dm.cat.Len(); i++ {
			if !dm.eligible[i][slot] {
				continue
			}
			q := sol.Value(dm.qty[i][slot])
			if q <= qtyTolerance {
				continue
			}
			food := dm.cat.Food(i)
			portions = append(portions, Portion{FoodID: food.ID, Name: food.Name, Grams: q})
		}
		day.Meals[slot] = portions
	}
	day.Totals = NutritionOf(dm.cat, day)
	return day
}
