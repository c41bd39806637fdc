package milp

import "math"

// activities returns the row activities of x.
func (p *problem) activities(x []float64) []float64 {
	act := make([]float64, len(p.rows))
	for i, r := range p.rows {
		for k, j := range r.idx {
			act[i] += r.val[k] * x[j]
		}
	}
	return act
}

// shiftHolds reports whether moving variable j by delta keeps every row it
// appears in within tolerance.
func (p *problem) shiftHolds(act []float64, j int, delta float64) bool {
	for _, e := range p.cols[j] {
		r := p.rows[e.row]
		a := act[e.row] + e.coef*delta
		switch r.sense {
		case LessEqual:
			if a > r.rhs+r.tol {
				return false
			}
		case GreaterEqual:
			if a < r.rhs-r.tol {
				return false
			}
		default:
			if math.Abs(a-r.rhs) > r.tol {
				return false
			}
		}
	}
	return true
}

func (p *problem) shift(act []float64, j int, delta float64) {
	for _, e := range p.cols[j] {
		act[e.row] += e.coef * delta
	}
}

// round tries to move every fractional integer variable of an LP point to a
// neighbouring integer while the continuous part stays put. Each variable
// tries its nearer integer first. It returns the rounded point, or nil and
// the variables that could go neither way.
func (p *problem) round(x, lower, upper []float64) ([]float64, []int) {
	out := clone(x)
	act := p.activities(out)

	var blocked []int
	for j, isInt := range p.integer {
		if !isInt {
			continue
		}
		v := out[j]
		f := v - math.Floor(v)
		if f <= intTol || f >= 1-intTol {
			r := math.Round(v)
			p.shift(act, j, r-v)
			out[j] = r
			continue
		}

		near, far := math.Floor(v), math.Ceil(v)
		if f >= 0.5 {
			near, far = far, near
		}
		placed := false
		for _, cand := range [2]float64{near, far} {
			if cand < lower[j]-feasTol || cand > upper[j]+feasTol {
				continue
			}
			if p.shiftHolds(act, j, cand-v) {
				p.shift(act, j, cand-v)
				out[j] = cand
				placed = true
				break
			}
		}
		if !placed {
			blocked = append(blocked, j)
		}
	}
	if len(blocked) > 0 {
		return nil, blocked
	}
	return out, nil
}
