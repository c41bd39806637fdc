package milp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, m *Model) *Solution {
	t.Helper()
	sol, err := NewSolver(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	return sol
}

func TestSolveLinearProgram(t *testing.T) {
	m := NewModel("lp")
	x := m.AddVar("x", 0, 10, Continuous)
	y := m.AddVar("y", 0, 10, Continuous)
	m.AddConstraint("c1", []Term{{x, 1}, {y, 2}}, LessEqual, 4)
	m.AddConstraint("c2", []Term{{x, 3}, {y, 1}}, LessEqual, 6)
	m.SetObjective([]Term{{x, -1}, {y, -1}})

	sol := solve(t, m)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, -2.8, sol.Objective, 1e-7)
	assert.InDelta(t, 1.6, sol.Value(x), 1e-7)
	assert.InDelta(t, 1.2, sol.Value(y), 1e-7)
}

func TestSolveEqualities(t *testing.T) {
	m := NewModel("eq")
	x := m.AddVar("x", 0, 10, Continuous)
	y := m.AddVar("y", 0, 10, Continuous)
	m.AddConstraint("sum", []Term{{x, 1}, {y, 1}}, Equal, 3)
	m.AddConstraint("diff", []Term{{x, 1}, {y, -1}}, Equal, 1)
	m.SetObjective([]Term{{x, 1}, {y, 1}})

	sol := solve(t, m)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 2, sol.Value(x), 1e-7)
	assert.InDelta(t, 1, sol.Value(y), 1e-7)
	assert.InDelta(t, 3, sol.Objective, 1e-7)
}

func TestSolveBoundFlipAndShiftedBounds(t *testing.T) {
	m := NewModel("bounds")
	x := m.AddVar("x", 0, 10, Continuous)
	y := m.AddVar("y", 1, 3, Continuous)
	z := m.AddVar("z", 0, 5, Continuous)
	m.AddConstraint("link", []Term{{x, 1}, {y, -2}}, GreaterEqual, 0)
	m.AddConstraint("cap", []Term{{z, 1}}, LessEqual, 8)
	m.SetObjective([]Term{{x, 1}, {z, -1}})

	sol := solve(t, m)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 2, sol.Value(x), 1e-7)
	assert.InDelta(t, 1, sol.Value(y), 1e-7)
	assert.InDelta(t, 5, sol.Value(z), 1e-7)
}

func TestSolveKnapsack(t *testing.T) {
	m := NewModel("knapsack")
	a := m.AddVar("a", 0, 1, Binary)
	b := m.AddVar("b", 0, 1, Binary)
	c := m.AddVar("c", 0, 1, Binary)
	m.AddConstraint("weight", []Term{{a, 2}, {b, 3}, {c, 1}}, LessEqual, 5)
	m.SetObjective([]Term{{a, -5}, {b, -4}, {c, -3}})

	sol := solve(t, m)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, -9, sol.Objective, 1e-7)
	assert.Equal(t, 1.0, sol.Value(a))
	assert.Equal(t, 1.0, sol.Value(b))
	assert.Equal(t, 0.0, sol.Value(c))
	assert.Greater(t, sol.Nodes, 1)
}

func TestSolveIndicatorLink(t *testing.T) {
	// Pick exactly one of two foods with a minimum portion when picked.
	m := NewModel("indicator")
	x1 := m.AddVar("x1", 0, 500, Continuous)
	x2 := m.AddVar("x2", 0, 500, Continuous)
	y1 := m.AddVar("y1", 0, 1, Binary)
	y2 := m.AddVar("y2", 0, 1, Binary)
	m.AddConstraint("one", []Term{{y1, 1}, {y2, 1}}, Equal, 1)
	m.AddConstraint("min1", []Term{{x1, 1}, {y1, -50}}, GreaterEqual, 0)
	m.AddConstraint("max1", []Term{{x1, 1}, {y1, -500}}, LessEqual, 0)
	m.AddConstraint("min2", []Term{{x2, 1}, {y2, -50}}, GreaterEqual, 0)
	m.AddConstraint("max2", []Term{{x2, 1}, {y2, -500}}, LessEqual, 0)
	m.AddConstraint("energy", []Term{{x1, 2}, {x2, 1}}, GreaterEqual, 200)
	m.SetObjective([]Term{{x1, 0.03}, {x2, 0.02}})

	sol := solve(t, m)
	require.Equal(t, StatusOptimal, sol.Status)
	// x1 alone costs 100*0.03 = 3, x2 alone costs 200*0.02 = 4.
	assert.InDelta(t, 3, sol.Objective, 1e-6)
	assert.Equal(t, 1.0, sol.Value(y1))
	assert.InDelta(t, 0, sol.Value(x2), 1e-7)
}

func TestSolveInfeasible(t *testing.T) {
	t.Run("ContradictoryRows", func(t *testing.T) {
		m := NewModel("infeasible")
		x := m.AddVar("x", 0, 2, Continuous)
		y := m.AddVar("y", 0, 2, Continuous)
		m.AddConstraint("need", []Term{{x, 1}, {y, 1}}, GreaterEqual, 5)
		m.SetObjective([]Term{{x, 1}})

		assert.Equal(t, StatusInfeasible, solve(t, m).Status)
	})

	t.Run("EmptyRow", func(t *testing.T) {
		m := NewModel("empty")
		x := m.AddVar("x", 0, 0, Continuous)
		m.AddConstraint("pick_one", []Term{{x, 1}}, Equal, 1)
		m.AddConstraint("nothing", nil, Equal, 1)
		assert.Equal(t, StatusInfeasible, solve(t, m).Status)
	})

	t.Run("IntegerOnly", func(t *testing.T) {
		m := NewModel("parity")
		a := m.AddVar("a", 0, 1, Binary)
		b := m.AddVar("b", 0, 1, Binary)
		m.AddConstraint("half", []Term{{a, 2}, {b, 2}}, Equal, 1)
		assert.Equal(t, StatusInfeasible, solve(t, m).Status)
	})
}

func TestSolveNodeLimit(t *testing.T) {
	m := NewModel("knapsack")
	a := m.AddVar("a", 0, 1, Binary)
	b := m.AddVar("b", 0, 1, Binary)
	c := m.AddVar("c", 0, 1, Binary)
	m.AddConstraint("weight", []Term{{a, 2}, {b, 3}, {c, 1}}, LessEqual, 5)
	m.SetObjective([]Term{{a, -5}, {b, -4}, {c, -3}})

	sol, err := NewSolver(Options{NodeLimit: 1}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, StatusNodeLimit, sol.Status)
	// Rounding the root relaxation already yields a+c.
	require.NotNil(t, sol.Values)
	assert.InDelta(t, -8, sol.Objective, 1e-7)
}

func TestSolveRoundsCostFreeIndicatorsAtRoot(t *testing.T) {
	m := NewModel("served")
	x := m.AddVar("x", 0, 10, Continuous)
	s := m.AddVar("s", 0, 1, Binary)
	m.AddConstraint("cap", []Term{{x, 1}}, LessEqual, 4)
	m.AddConstraint("sel_max", []Term{{x, 1}, {s, -10}}, LessEqual, 0)
	m.AddConstraint("sel_min", []Term{{x, 1}, {s, -0.001}}, GreaterEqual, 0)
	m.SetObjective([]Term{{x, -1}})

	sol := solve(t, m)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, 1, sol.Nodes)
	assert.InDelta(t, 4, sol.Value(x), 1e-7)
	assert.Equal(t, 1.0, sol.Value(s))
}

func TestSolveBranchesOnConflictingIndicators(t *testing.T) {
	// The relaxation splits the need over both portions, but at most one of
	// them may be served.
	m := NewModel("guard")
	x1 := m.AddVar("x1", 0, 10, Continuous)
	x2 := m.AddVar("x2", 0, 10, Continuous)
	s1 := m.AddVar("s1", 0, 1, Binary)
	s2 := m.AddVar("s2", 0, 1, Binary)
	m.AddConstraint("cap1", []Term{{x1, 1}}, LessEqual, 6)
	m.AddConstraint("max1", []Term{{x1, 1}, {s1, -10}}, LessEqual, 0)
	m.AddConstraint("max2", []Term{{x2, 1}, {s2, -10}}, LessEqual, 0)
	m.AddConstraint("guard", []Term{{s1, 1}, {s2, 1}}, LessEqual, 1)
	m.AddConstraint("need", []Term{{x1, 1}, {x2, 1}}, GreaterEqual, 8)
	m.SetObjective([]Term{{x1, 1}, {x2, 2}})

	sol := solve(t, m)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Greater(t, sol.Nodes, 1)
	assert.InDelta(t, 16, sol.Objective, 1e-6)
	assert.Equal(t, 0.0, sol.Value(s1))
	assert.Equal(t, 1.0, sol.Value(s2))
	assert.InDelta(t, 8, sol.Value(x2), 1e-7)
}

func TestNodeBounds(t *testing.T) {
	p := &problem{lower: []float64{0, 0, 0}, upper: []float64{1, 1, 5}}
	root := &node{j: -1}
	left := &node{parent: root, j: 0, value: 0, depth: 1}
	leaf := &node{parent: left, j: 1, up: true, value: 1, depth: 2}

	lower := make([]float64, 3)
	upper := make([]float64, 3)
	leaf.bounds(p, lower, upper)
	assert.Equal(t, []float64{0, 1, 0}, lower)
	assert.Equal(t, []float64{0, 1, 5}, upper)

	root.bounds(p, lower, upper)
	assert.Equal(t, p.lower, lower)
	assert.Equal(t, p.upper, upper)
}

func TestNodeQueueOrder(t *testing.T) {
	q := &nodeQueue{}
	q.push(&node{bound: 5, depth: 1})
	q.push(&node{bound: 1, depth: 1})
	q.push(&node{bound: 3, depth: 2})

	// Diving takes the deepest node first.
	assert.Equal(t, 3.0, q.pop().bound)

	q.push(&node{bound: 3, depth: 2})
	q.bestFirst()
	assert.Equal(t, 1.0, q.pop().bound)
	assert.Equal(t, 3.0, q.pop().bound)
	assert.Equal(t, 5.0, q.pop().bound)
	assert.Zero(t, q.Len())
}

func TestSolveValidation(t *testing.T) {
	m := NewModel("dup")
	x := m.AddVar("x", 0, 1, Continuous)
	m.AddConstraint("row", []Term{{x, 1}}, LessEqual, 1)
	m.AddConstraint("row", []Term{{x, 1}}, GreaterEqual, 0)

	_, err := NewSolver(Options{}).Solve(context.Background(), m)
	assert.ErrorContains(t, err, "duplicate constraint name")
}

func TestSolveCanceled(t *testing.T) {
	m := NewModel("canceled")
	x := m.AddVar("x", 0, 1, Continuous)
	m.SetObjective([]Term{{x, 1}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSolver(Options{}).Solve(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveDeterministic(t *testing.T) {
	build := func() *Model {
		m := NewModel("det")
		var vars []Var
		for i := 0; i < 6; i++ {
			vars = append(vars, m.AddVar("", 0, 1, Binary))
		}
		terms := make([]Term, len(vars))
		obj := make([]Term, len(vars))
		for i, v := range vars {
			terms[i] = Term{v, float64(i%3 + 1)}
			obj[i] = Term{v, -1}
		}
		m.AddConstraint("cap", terms, LessEqual, 4)
		m.SetObjective(obj)
		return m
	}

	first := solve(t, build())
	second := solve(t, build())
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Objective, second.Objective)
}
