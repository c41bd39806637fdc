// Package milp holds a small mixed-integer linear programming model and a
// branch-and-bound solver over a bounded-variable simplex.
package milp

import (
	"fmt"
	"math"
)

// Kind is the domain of a variable.
type Kind int

const (
	Continuous Kind = iota
	Binary
)

// Var is a handle to a model variable.
type Var int

// Term is one coefficient of a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// Sense is the relation of a constraint row to its right-hand side.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "=="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Constraint is a named linear row: sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

type variable struct {
	name  string
	lower float64
	upper float64
	kind  Kind
}

// Model is a minimization MILP with finite variable bounds.
type Model struct {
	Name        string
	vars        []variable
	objective   []Term
	constraints []Constraint
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVar adds a variable with bounds [lower, upper]. Binary bounds are
// clamped to [0, 1].
func (m *Model) AddVar(name string, lower, upper float64, kind Kind) Var {
	if kind == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	m.vars = append(m.vars, variable{name: name, lower: lower, upper: upper, kind: kind})
	return Var(len(m.vars) - 1)
}

// AddConstraint appends a named row.
func (m *Model) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, Constraint{
		Name:  name,
		Terms: append([]Term(nil), terms...),
		Sense: sense,
		RHS:   rhs,
	})
}

// SetObjective sets the expression to minimize.
func (m *Model) SetObjective(terms []Term) {
	m.objective = append([]Term(nil), terms...)
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumConstraints returns the number of rows.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// VarName returns the name given to v.
func (m *Model) VarName(v Var) string {
	return m.vars[v].name
}

// Bounds returns the bounds of v.
func (m *Model) Bounds(v Var) (float64, float64) {
	return m.vars[v].lower, m.vars[v].upper
}

// Kind returns the domain of v.
func (m *Model) Kind(v Var) Kind {
	return m.vars[v].kind
}

// Constraints returns the rows in insertion order.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// Constraint returns the row with the given name.
func (m *Model) Constraint(name string) (Constraint, bool) {
	for _, c := range m.constraints {
		if c.Name == name {
			return c, true
		}
	}
	return Constraint{}, false
}

// Validate checks names, bounds and variable references.
func (m *Model) Validate() error {
	seen := make(map[string]struct{}, len(m.vars)+len(m.constraints))
	for i, v := range m.vars {
		if v.name != "" {
			if _, dup := seen[v.name]; dup {
				return fmt.Errorf("duplicate variable name %q", v.name)
			}
			seen[v.name] = struct{}{}
		}
		if math.IsInf(v.lower, 0) || math.IsInf(v.upper, 0) || math.IsNaN(v.lower) || math.IsNaN(v.upper) {
			return fmt.Errorf("variable %d (%s) needs finite bounds", i, v.name)
		}
	}

	rowNames := make(map[string]struct{}, len(m.constraints))
	for _, c := range m.constraints {
		if c.Name != "" {
			if _, dup := rowNames[c.Name]; dup {
				return fmt.Errorf("duplicate constraint name %q", c.Name)
			}
			rowNames[c.Name] = struct{}{}
		}
		for _, t := range c.Terms {
			if t.Var < 0 || int(t.Var) >= len(m.vars) {
				return fmt.Errorf("constraint %q references unknown variable %d", c.Name, t.Var)
			}
		}
	}
	for _, t := range m.objective {
		if t.Var < 0 || int(t.Var) >= len(m.vars) {
			return fmt.Errorf("objective references unknown variable %d", t.Var)
		}
	}
	return nil
}
