package milp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	feasTol    = 1e-7
	optTol     = 1e-9
	pivotTol   = 1e-9
	ratioTol   = 1e-12
	blandAfter = 50
)

// ErrIterationLimit is returned when a relaxation does not converge.
var ErrIterationLimit = errors.New("simplex iteration limit reached")

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
)

type lpResult struct {
	status    lpStatus
	objective float64
	x         []float64
}

// problem is a model flattened for repeated relaxation solves.
type problem struct {
	cost    []float64
	rows    []sparseRow
	integer []bool
	lower   []float64
	upper   []float64
	// cols lists the rows each variable appears in.
	cols [][]colEntry
}

type colEntry struct {
	row  int
	coef float64
}

type sparseRow struct {
	idx   []int
	val   []float64
	sense Sense
	rhs   float64
	// tol is the feasibility slack allowed when checking a rounded point.
	tol float64
}

func compile(m *Model) *problem {
	n := len(m.vars)
	p := &problem{
		cost:    make([]float64, n),
		integer: make([]bool, n),
		lower:   make([]float64, n),
		upper:   make([]float64, n),
		cols:    make([][]colEntry, n),
	}
	for j, v := range m.vars {
		p.integer[j] = v.kind == Binary
		p.lower[j] = v.lower
		p.upper[j] = v.upper
	}
	for _, t := range m.objective {
		p.cost[t.Var] += t.Coef
	}

	for _, c := range m.constraints {
		merged := make(map[int]float64, len(c.Terms))
		order := make([]int, 0, len(c.Terms))
		for _, t := range c.Terms {
			j := int(t.Var)
			if _, ok := merged[j]; !ok {
				order = append(order, j)
			}
			merged[j] += t.Coef
		}
		r := sparseRow{sense: c.Sense, rhs: c.RHS}
		scale := math.Max(1, math.Abs(c.RHS))
		for _, j := range order {
			if v := merged[j]; v != 0 {
				r.idx = append(r.idx, j)
				r.val = append(r.val, v)
				p.cols[j] = append(p.cols[j], colEntry{row: len(p.rows), coef: v})
				scale = math.Max(scale, math.Abs(v))
			}
		}
		r.tol = 1e-6 * scale
		p.rows = append(p.rows, r)
	}
	return p
}

// tableau is a dense bounded-variable simplex tableau. Every column has a
// lower bound of zero; upper may be +Inf.
type tableau struct {
	t       *mat.Dense
	m, n    int
	beta    []float64
	upper   []float64
	basis   []int
	inBasis []int
	atUpper []bool
	d       []float64
}

func (tb *tableau) reducedCosts(cost []float64) {
	copy(tb.d, cost)
	for i := 0; i < tb.m; i++ {
		cb := cost[tb.basis[i]]
		if cb == 0 {
			continue
		}
		floats.AddScaled(tb.d, -cb, tb.t.RawRowView(i))
	}
	for i := 0; i < tb.m; i++ {
		tb.d[tb.basis[i]] = 0
	}
}

func (tb *tableau) pivot(r, q int) {
	rowR := tb.t.RawRowView(r)
	floats.Scale(1/rowR[q], rowR)
	rowR[q] = 1
	for i := 0; i < tb.m; i++ {
		if i == r {
			continue
		}
		row := tb.t.RawRowView(i)
		f := row[q]
		if f == 0 {
			continue
		}
		floats.AddScaled(row, -f, rowR)
		row[q] = 0
	}
	if dq := tb.d[q]; dq != 0 {
		floats.AddScaled(tb.d, -dq, rowR)
		tb.d[q] = 0
	}
}

// run minimizes cost over the current basis. Dantzig pricing switches to
// Bland's rule after a streak of degenerate pivots.
func (tb *tableau) run(cost []float64, maxIter int) (lpStatus, error) {
	tb.reducedCosts(cost)
	degenerate := 0

	for iter := 0; ; iter++ {
		if iter >= maxIter {
			return 0, ErrIterationLimit
		}
		bland := degenerate > blandAfter

		q, best := -1, 0.0
		for j := 0; j < tb.n; j++ {
			if tb.inBasis[j] >= 0 || tb.upper[j] <= feasTol {
				continue
			}
			gain := -tb.d[j]
			if tb.atUpper[j] {
				gain = tb.d[j]
			}
			if gain <= optTol {
				continue
			}
			if bland {
				q = j
				break
			}
			if gain > best {
				q, best = j, gain
			}
		}
		if q < 0 {
			return lpOptimal, nil
		}

		dir := 1.0
		if tb.atUpper[q] {
			dir = -1
		}

		theta := tb.upper[q]
		r, rAlpha, toUpper := -1, 0.0, false
		for i := 0; i < tb.m; i++ {
			alpha := tb.t.At(i, q) * dir
			var step float64
			up := false
			switch {
			case alpha > pivotTol:
				step = tb.beta[i] / alpha
			case alpha < -pivotTol:
				u := tb.upper[tb.basis[i]]
				if math.IsInf(u, 1) {
					continue
				}
				step = (u - tb.beta[i]) / -alpha
				up = true
			default:
				continue
			}
			if step < 0 {
				step = 0
			}

			take := step < theta-ratioTol
			if !take && r >= 0 && step <= theta+ratioTol {
				if bland {
					take = tb.basis[i] < tb.basis[r]
				} else {
					take = math.Abs(alpha) > math.Abs(rAlpha)
				}
			}
			if take {
				theta, r, rAlpha, toUpper = step, i, alpha, up
			}
		}

		if r < 0 && math.IsInf(theta, 1) {
			return lpUnbounded, nil
		}
		if theta <= ratioTol {
			degenerate++
		} else {
			degenerate = 0
		}

		if theta != 0 {
			for i := 0; i < tb.m; i++ {
				if a := tb.t.At(i, q); a != 0 {
					tb.beta[i] -= theta * dir * a
				}
			}
		}

		if r < 0 {
			tb.atUpper[q] = !tb.atUpper[q]
			continue
		}

		entering := theta
		if dir < 0 {
			entering = tb.upper[q] - theta
		}
		leaving := tb.basis[r]

		tb.pivot(r, q)
		tb.beta[r] = entering
		tb.inBasis[leaving] = -1
		tb.atUpper[leaving] = toUpper
		tb.basis[r] = q
		tb.inBasis[q] = r
		tb.atUpper[q] = false
	}
}

func (tb *tableau) value(j int) float64 {
	if r := tb.inBasis[j]; r >= 0 {
		v := tb.beta[r]
		if v < 0 {
			v = 0
		}
		if v > tb.upper[j] {
			v = tb.upper[j]
		}
		return v
	}
	if tb.atUpper[j] {
		return tb.upper[j]
	}
	return 0
}

// solveLP solves the relaxation of p with the given variable bounds.
func solveLP(p *problem, lower, upper []float64) (lpResult, error) {
	n := len(p.cost)

	// Shift every variable to x = lower + y. Fixed variables get no column.
	col := make([]int, n)
	var structural []int
	for j := 0; j < n; j++ {
		if upper[j] < lower[j]-feasTol {
			return lpResult{status: lpInfeasible}, nil
		}
		col[j] = -1
		if upper[j]-lower[j] > feasTol {
			col[j] = len(structural)
			structural = append(structural, j)
		}
	}

	type stdRow struct {
		idx   []int
		val   []float64
		sense Sense
		rhs   float64
	}
	rows := make([]stdRow, 0, len(p.rows))
	for _, pr := range p.rows {
		rhs := pr.rhs
		var r stdRow
		for k, j := range pr.idx {
			rhs -= pr.val[k] * lower[j]
			if col[j] >= 0 {
				r.idx = append(r.idx, col[j])
				r.val = append(r.val, pr.val[k])
			}
		}
		r.sense, r.rhs = pr.sense, rhs
		if len(r.idx) == 0 {
			if !constantHolds(r.sense, r.rhs) {
				return lpResult{status: lpInfeasible}, nil
			}
			continue
		}
		rows = append(rows, r)
	}

	k := len(structural)
	x := make([]float64, n)
	copy(x, lower)

	if len(rows) == 0 {
		for _, j := range structural {
			if p.cost[j] < 0 {
				x[j] = upper[j]
			}
		}
		return lpResult{status: lpOptimal, objective: floats.Dot(p.cost, x), x: x}, nil
	}

	// Normalize each row to a non-negative right-hand side and decide which
	// rows start on their slack and which need an artificial.
	m := len(rows)
	sign := make([]float64, m)
	slackCoef := make([]float64, m)
	needArt := make([]bool, m)
	nSlack, nArt := 0, 0
	for i, r := range rows {
		sign[i] = 1
		if r.rhs < 0 || (r.rhs == 0 && r.sense == GreaterEqual) {
			sign[i] = -1
		}
		switch r.sense {
		case LessEqual:
			slackCoef[i] = sign[i]
			nSlack++
		case GreaterEqual:
			slackCoef[i] = -sign[i]
			nSlack++
		}
		if r.sense == Equal || slackCoef[i] < 0 {
			needArt[i] = true
			nArt++
		}
	}

	cols := k + nSlack + nArt
	tb := &tableau{
		t:       mat.NewDense(m, cols, nil),
		m:       m,
		n:       cols,
		beta:    make([]float64, m),
		upper:   make([]float64, cols),
		basis:   make([]int, m),
		inBasis: make([]int, cols),
		atUpper: make([]bool, cols),
		d:       make([]float64, cols),
	}
	for c, j := range structural {
		tb.upper[c] = upper[j] - lower[j]
	}
	for c := k; c < cols; c++ {
		tb.upper[c] = math.Inf(1)
	}
	for c := range tb.inBasis {
		tb.inBasis[c] = -1
	}

	artCols := make([]int, 0, nArt)
	nextSlack, nextArt := k, k+nSlack
	for i, r := range rows {
		row := tb.t.RawRowView(i)
		for q, c := range r.idx {
			row[c] += sign[i] * r.val[q]
		}
		tb.beta[i] = sign[i] * r.rhs

		if r.sense != Equal {
			row[nextSlack] = slackCoef[i]
			if !needArt[i] {
				tb.basis[i] = nextSlack
				tb.inBasis[nextSlack] = i
			}
			nextSlack++
		}
		if needArt[i] {
			row[nextArt] = 1
			tb.basis[i] = nextArt
			tb.inBasis[nextArt] = i
			artCols = append(artCols, nextArt)
			nextArt++
		}
	}

	maxIter := 50 * (m + cols)
	if maxIter < 10000 {
		maxIter = 10000
	}

	if nArt > 0 {
		phase1 := make([]float64, cols)
		for _, c := range artCols {
			phase1[c] = 1
		}
		if _, err := tb.run(phase1, maxIter); err != nil {
			return lpResult{}, err
		}
		var infeasibility float64
		for _, c := range artCols {
			infeasibility += tb.value(c)
		}
		if infeasibility > 1e-6 {
			return lpResult{status: lpInfeasible}, nil
		}
		for _, c := range artCols {
			tb.upper[c] = 0
		}
	}

	phase2 := make([]float64, cols)
	for c, j := range structural {
		phase2[c] = p.cost[j]
	}
	status, err := tb.run(phase2, maxIter)
	if err != nil {
		return lpResult{}, err
	}
	if status == lpUnbounded {
		return lpResult{status: lpUnbounded}, nil
	}

	for c, j := range structural {
		x[j] = lower[j] + tb.value(c)
	}
	return lpResult{status: lpOptimal, objective: floats.Dot(p.cost, x), x: x}, nil
}

func constantHolds(sense Sense, rhs float64) bool {
	switch sense {
	case LessEqual:
		return rhs >= -feasTol
	case GreaterEqual:
		return rhs <= feasTol
	default:
		return math.Abs(rhs) <= feasTol
	}
}
