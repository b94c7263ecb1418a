package symbolic

import (
	"errors"
	"fmt"
	"math"
)

// ============================================================
// Differentiation helpers
// ============================================================

// Diff differentiates expr with respect to varName and simplifies the result.
func Diff(expr Expr, varName string) Expr {
	return DeepSimplify(expr.Diff(varName))
}

// ============================================================
// Integration (rule-based)
// ============================================================

// ErrNoIntegrationRule is returned when no rule matches the integrand.
var ErrNoIntegrationRule = errors.New("no integration rule matches")

// maxPartsDegree bounds repeated integration by parts on x^n*f(x).
const maxPartsDegree = 8

// Integrate returns an antiderivative of expr with respect to varName,
// without the constant of integration.
func Integrate(expr Expr, varName string) (Expr, error) {
	r, err := integrate(expr.Simplify(), varName)
	if err != nil {
		return nil, err
	}
	return r.Simplify(), nil
}

func integrate(e Expr, v string) (Expr, error) {
	x := S(v)
	if !dependsOn(e, v) {
		return MulOf(e, x), nil
	}
	switch t := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), nil
	case *Add:
		parts := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			r, err := integrate(term, v)
			if err != nil {
				return nil, err
			}
			parts[i] = r
		}
		return AddOf(parts...), nil
	case *Mul:
		var constant, variable []Expr
		for _, f := range t.factors {
			if dependsOn(f, v) {
				variable = append(variable, f)
			} else {
				constant = append(constant, f)
			}
		}
		if len(constant) > 0 {
			inner, err := integrate(MulOf(variable...), v)
			if err != nil {
				return nil, err
			}
			return MulOf(append(constant, inner)...), nil
		}
		if expanded := Expand(t); !expanded.Equal(t) {
			if _, isSum := expanded.(*Add); isSum {
				return integrate(expanded, v)
			}
		}
		if r, ok := byParts(t, v); ok {
			return r, nil
		}
	case *Pow:
		if a, _, ok := linearIn(t.base, v); ok && !dependsOn(t.exp, v) {
			if n, isNum := t.exp.(*Num); isNum && n.IsNegOne() {
				return MulOf(PowOf(a, N(-1)), LnOf(AbsOf(t.base))), nil
			}
			next := AddOf(t.exp, N(1))
			return MulOf(PowOf(MulOf(a, next), N(-1)), PowOf(t.base, next)), nil
		}
		if a, _, ok := linearIn(t.exp, v); ok && !dependsOn(t.base, v) {
			return MulOf(PowOf(MulOf(a, LnOf(t.base)), N(-1)), t), nil
		}
	case *Func:
		if r, ok := integrateFunc(t, v); ok {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoIntegrationRule, e)
}

// integrateFunc handles f(a*x + b) for functions with a known antiderivative.
func integrateFunc(f *Func, v string) (Expr, bool) {
	a, _, ok := linearIn(f.arg, v)
	if !ok {
		return nil, false
	}
	u := f.arg
	inv := PowOf(a, N(-1))
	var r Expr
	switch f.name {
	case "sin":
		r = MulOf(N(-1), CosOf(u))
	case "cos":
		r = SinOf(u)
	case "tan":
		r = MulOf(N(-1), LnOf(AbsOf(CosOf(u))))
	case "exp":
		r = ExpOf(u)
	case "sinh":
		r = CoshOf(u)
	case "cosh":
		r = SinhOf(u)
	case "tanh":
		r = LnOf(CoshOf(u))
	case "ln":
		r = AddOf(MulOf(u, LnOf(u)), MulOf(N(-1), u))
	case "asin":
		r = AddOf(MulOf(u, AsinOf(u)), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2))))))
	case "acos":
		r = AddOf(MulOf(u, AcosOf(u)), MulOf(N(-1), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))))))
	case "atan":
		r = AddOf(MulOf(u, AtanOf(u)), MulOf(F(-1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))))
	default:
		return nil, false
	}
	return MulOf(inv, r), true
}

// byParts integrates x^n * f(a*x+b) for f in sin, cos, exp by repeated
// integration by parts.
func byParts(m *Mul, v string) (Expr, bool) {
	if len(m.factors) != 2 {
		return nil, false
	}
	for i := 0; i < 2; i++ {
		poly, other := m.factors[i], m.factors[1-i]
		deg, _, ok := monomial(poly, v)
		if !ok || deg < 1 || deg > maxPartsDegree {
			continue
		}
		switch g := other.(type) {
		case *Func:
			if g.name != "sin" && g.name != "cos" && g.name != "exp" {
				continue
			}
		case *Pow:
			if dependsOn(g.base, v) {
				continue
			}
		default:
			continue
		}
		antider, err := integrate(other, v)
		if err != nil {
			continue
		}
		rest, err := integrate(MulOf(poly.Diff(v), antider).Simplify(), v)
		if err != nil {
			continue
		}
		return AddOf(MulOf(poly, antider), MulOf(N(-1), rest)), true
	}
	return nil, false
}

// linearIn reports whether e = a*v + b with a, b independent of v and a != 0.
func linearIn(e Expr, v string) (a, b Expr, ok bool) {
	coeffs, ok := PolyCoeffs(e, v)
	if !ok || Degree(e, v) != 1 {
		return nil, nil, false
	}
	a = coeffs[1]
	b = coeffs[0]
	if b == nil {
		b = N(0)
	}
	return a, b, true
}

// ============================================================
// Taylor series
// ============================================================

// TaylorSeries expands expr around a up to the given order.
func TaylorSeries(expr Expr, varName string, a Expr, order int) Expr {
	terms := []Expr{}
	current := expr.Simplify()
	factorial := N(1)
	shift := AddOf(S(varName), MulOf(N(-1), a))
	for k := 0; k <= order; k++ {
		if k > 0 {
			factorial = numMul(factorial, N(int64(k)))
		}
		coeff := MulOf(current.Sub(varName, a), numRecip(factorial))
		if n, ok := coeff.(*Num); !ok || !n.IsZero() {
			terms = append(terms, MulOf(coeff, PowOf(shift, N(int64(k)))))
		}
		current = current.Diff(varName).Simplify()
	}
	return AddOf(terms...)
}

// ============================================================
// Limits
// ============================================================

// maxLHopital bounds the number of L'Hopital rewrites in Limit.
const maxLHopital = 5

// Limit computes the two-sided limit of expr as varName approaches point.
// It tries L'Hopital on 0/0 quotients, then direct substitution, then a
// Taylor expansion around the point.
func Limit(expr Expr, varName string, point Expr) (Expr, error) {
	return limit(expr.Simplify(), varName, point.Simplify(), maxLHopital)
}

func limit(expr Expr, v string, point Expr, depth int) (Expr, error) {
	if breaksAt(expr, v, point, false) {
		return nil, fmt.Errorf("limit of %s as %s -> %s: discontinuous or indeterminate at the point", expr, v, point)
	}
	if num, den, ok := splitQuotient(expr, v); ok && depth > 0 {
		nv, nok := num.Sub(v, point).Eval()
		dv, dok := den.Sub(v, point).Eval()
		if nok && dok && dv.IsZero() {
			if !nv.IsZero() {
				return nil, fmt.Errorf("limit of %s as %s -> %s does not exist (division by zero)", expr, v, point)
			}
			if breaksAt(num, v, point, true) || breaksAt(den, v, point, true) {
				return nil, fmt.Errorf("limit of %s as %s -> %s: not differentiable at the point", expr, v, point)
			}
			next := MulOf(Diff(num, v), PowOf(Diff(den, v), N(-1)))
			return limit(next, v, point, depth-1)
		}
	}
	subbed := expr.Sub(v, point)
	if !hasUndefined(subbed) {
		if n, ok := subbed.Eval(); ok {
			if f := n.Float64(); !math.IsNaN(f) && !math.IsInf(f, 0) {
				return subbed, nil
			}
		} else if len(FreeSymbols(subbed)) > 0 {
			// Symbolic in the remaining parameters.
			return subbed, nil
		}
	}
	if _, ok := point.Eval(); ok {
		series := TaylorSeries(expr, v, point, 4).Sub(v, point)
		if !hasUndefined(series) {
			if _, ok := series.Eval(); ok {
				return series, nil
			}
		}
	}
	return nil, fmt.Errorf("limit of %s as %s -> %s could not be determined", expr, v, point)
}

// valueAt evaluates e at v = point. It reports false when the result is
// undefined or not a finite number.
func valueAt(e Expr, v string, point Expr) (*Num, bool) {
	s := e.Sub(v, point)
	if hasUndefined(s) {
		return nil, false
	}
	n, ok := s.Eval()
	if !ok {
		return nil, false
	}
	if f := n.Float64(); math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return n, true
}

// breaksAt reports whether e contains a jump (sign, floor, ceil) or an
// indeterminate power at v = point. With kinks set, abs at zero counts too.
func breaksAt(e Expr, v string, point Expr, kinks bool) bool {
	switch t := e.(type) {
	case *Add:
		for _, term := range t.terms {
			if breaksAt(term, v, point, kinks) {
				return true
			}
		}
	case *Mul:
		for _, f := range t.factors {
			if breaksAt(f, v, point, kinks) {
				return true
			}
		}
	case *Pow:
		if indeterminatePower(t, v, point) {
			return true
		}
		return breaksAt(t.base, v, point, kinks) || breaksAt(t.exp, v, point, kinks)
	case *Func:
		if dependsOn(t.arg, v) {
			if n, ok := valueAt(t.arg, v, point); ok {
				switch t.name {
				case "sign":
					if n.IsZero() {
						return true
					}
				case "abs":
					if kinks && n.IsZero() {
						return true
					}
				case "floor", "ceil":
					if n.IsInteger() {
						return true
					}
				}
			}
		}
		return breaksAt(t.arg, v, point, kinks)
	}
	return false
}

// indeterminatePower reports the forms 1^inf, 0^0 and inf^0 at v = point.
func indeterminatePower(p *Pow, v string, point Expr) bool {
	if !dependsOn(p.base, v) || !dependsOn(p.exp, v) {
		return false
	}
	b, bok := valueAt(p.base, v, point)
	e, eok := valueAt(p.exp, v, point)
	switch {
	case bok && !eok:
		return b.IsOne()
	case bok && eok:
		return b.IsZero() && e.IsZero()
	case !bok && eok:
		return e.IsZero()
	}
	return false
}

// splitQuotient separates the factors of a product with a negative numeric
// exponent depending on v into a denominator.
func splitQuotient(e Expr, v string) (num, den Expr, ok bool) {
	factors := []Expr{e}
	if m, isMul := e.(*Mul); isMul {
		factors = m.factors
	}
	var top, bottom []Expr
	for _, f := range factors {
		if p, isPow := f.(*Pow); isPow && dependsOn(p.base, v) {
			if n, isNum := p.exp.(*Num); isNum && n.IsNegative() {
				bottom = append(bottom, PowOf(p.base, numNeg(n)))
				continue
			}
		}
		top = append(top, f)
	}
	if len(bottom) == 0 {
		return nil, nil, false
	}
	return MulOf(top...), MulOf(bottom...), true
}

// hasUndefined reports whether e contains a division by an exact zero.
func hasUndefined(e Expr) bool {
	switch v := e.(type) {
	case *Pow:
		return isUndefined(v) || hasUndefined(v.base) || hasUndefined(v.exp)
	case *Add:
		for _, t := range v.terms {
			if hasUndefined(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if hasUndefined(f) {
				return true
			}
		}
	case *Func:
		return hasUndefined(v.arg)
	}
	return false
}
