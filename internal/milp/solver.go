package milp

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Status is the outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusNodeLimit
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusNodeLimit:
		return "node limit"
	case StatusUnbounded:
		return "unbounded"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Solution is the result of Solver.Solve. Values is nil when no integer
// feasible point was found.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	Nodes     int
	Elapsed   time.Duration
}

// Value returns the solved value of v, or 0 without an incumbent.
func (s *Solution) Value(v Var) float64 {
	if s.Values == nil {
		return 0
	}
	return s.Values[v]
}

const (
	// DefaultNodeLimit bounds the branch-and-bound tree.
	DefaultNodeLimit = 100000
	// DefaultGapRel is the relative optimality gap used for pruning.
	DefaultGapRel = 1e-4

	intTol = 1e-6
)

// Options tunes the solver. Zero values pick the defaults.
type Options struct {
	NodeLimit int
	GapRel    float64
}

// Solver runs branch and bound. It dives depth-first until a first integer
// point is found and then always expands the open node with the lowest
// bound. It is stateless and safe for concurrent use.
type Solver struct {
	nodeLimit int
	gapRel    float64
}

// NewSolver creates a Solver.
func NewSolver(opts Options) *Solver {
	s := &Solver{nodeLimit: opts.NodeLimit, gapRel: opts.GapRel}
	if s.nodeLimit <= 0 {
		s.nodeLimit = DefaultNodeLimit
	}
	if s.gapRel <= 0 {
		s.gapRel = DefaultGapRel
	}
	return s
}

// Solve minimizes the model objective. Binary variables take integral values
// in the returned solution. On StatusNodeLimit, Values holds the best point
// found so far, if any.
func (s *Solver) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", m.Name, err)
	}
	start := time.Now()
	p := compile(m)

	sol := &Solution{Status: StatusInfeasible, Objective: math.Inf(1)}
	open := &nodeQueue{}
	open.push(&node{j: -1, bound: math.Inf(-1)})

	lower := make([]float64, len(p.lower))
	upper := make([]float64, len(p.upper))
	limited := false

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nd := open.pop()
		if sol.Values != nil && nd.bound >= sol.Objective-s.allowance(sol.Objective) {
			continue
		}
		if sol.Nodes >= s.nodeLimit {
			limited = true
			break
		}
		sol.Nodes++

		nd.bounds(p, lower, upper)
		lp, err := solveLP(p, lower, upper)
		if err != nil {
			return nil, fmt.Errorf("relaxation at node %d: %w", sol.Nodes, err)
		}
		switch lp.status {
		case lpInfeasible:
			continue
		case lpUnbounded:
			sol.Status = StatusUnbounded
			sol.Values = nil
			sol.Elapsed = time.Since(start)
			return sol, nil
		}

		if sol.Values != nil && lp.objective >= sol.Objective-s.allowance(sol.Objective) {
			continue
		}

		j := mostFractional(p, lp.x)
		if j < 0 {
			s.improve(sol, roundIntegers(p, lp.x), lp.objective, open)
			continue
		}

		rounded, blocked := p.round(lp.x, lower, upper)
		if rounded != nil {
			obj := floats.Dot(p.cost, rounded)
			s.improve(sol, rounded, obj, open)
			if obj <= lp.objective+s.allowance(lp.objective) {
				continue
			}
		}
		if len(blocked) > 0 {
			j = mostFractionalOf(blocked, lp.x)
		}

		v := lp.x[j]
		down := &node{parent: nd, j: j, value: math.Floor(v), bound: lp.objective, depth: nd.depth + 1}
		up := &node{parent: nd, j: j, up: true, value: math.Ceil(v), bound: lp.objective, depth: nd.depth + 1}

		// The nearer rounding is pushed last so it is expanded first.
		if v-math.Floor(v) >= 0.5 {
			open.push(down)
			open.push(up)
		} else {
			open.push(up)
			open.push(down)
		}
	}

	switch {
	case limited:
		sol.Status = StatusNodeLimit
	case sol.Values != nil:
		sol.Status = StatusOptimal
	}
	sol.Elapsed = time.Since(start)
	return sol, nil
}

// improve records x as the incumbent when it beats the current one. The
// first incumbent ends the initial dive.
func (s *Solver) improve(sol *Solution, x []float64, obj float64, open *nodeQueue) {
	if sol.Values != nil && obj >= sol.Objective {
		return
	}
	sol.Values = x
	sol.Objective = obj
	open.bestFirst()
}

func (s *Solver) allowance(incumbent float64) float64 {
	return math.Max(1e-9, s.gapRel*math.Abs(incumbent))
}

// mostFractional picks the integer variable farthest from integrality,
// lowest index first on ties. It returns -1 when all are integral.
func mostFractional(p *problem, x []float64) int {
	best, bestDist := -1, intTol
	for j, isInt := range p.integer {
		if !isInt {
			continue
		}
		f := x[j] - math.Floor(x[j])
		dist := math.Min(f, 1-f)
		if dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

func mostFractionalOf(vars []int, x []float64) int {
	best, bestDist := vars[0], -1.0
	for _, j := range vars {
		f := x[j] - math.Floor(x[j])
		if dist := math.Min(f, 1-f); dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

func roundIntegers(p *problem, x []float64) []float64 {
	out := clone(x)
	for j, isInt := range p.integer {
		if isInt {
			out[j] = math.Round(out[j])
		}
	}
	return out
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
