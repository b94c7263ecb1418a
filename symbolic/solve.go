package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Solvers
// ============================================================

// noSolutionError marks solver outcomes that leave no roots to report.
type noSolutionError string

func (e noSolutionError) Error() string { return string(e) }

// NoSolution reports that the equation has no root list to return.
func (noSolutionError) NoSolution() bool { return true }

var (
	// ErrNoSolution is returned when an equation has no solution.
	ErrNoSolution error = noSolutionError("no solution")
	// ErrIdentity is returned when every value satisfies the equation.
	ErrIdentity error = noSolutionError("equation is an identity; every value is a solution")
	// ErrNoRealSolution is returned when all roots are complex.
	ErrNoRealSolution error = noSolutionError("no real solutions")
)

// Solve returns the real roots of expr = 0 in varName. Polynomials of degree
// one and two are solved exactly, also with symbolic coefficients. Numeric
// polynomials of higher degree use rational roots first, then the cubic
// formula or Newton iteration on what is left. Other equations in a single
// variable fall back to Newton iteration.
func Solve(expr Expr, varName string) ([]Expr, error) {
	e := expr.Simplify()
	coeffs, ok := PolyCoeffs(clearDenominators(e, varName), varName)
	if !ok {
		if len(FreeSymbols(e)) > 1 {
			return nil, fmt.Errorf("cannot isolate %s in %s", varName, e)
		}
		return solveNewton(e, varName)
	}
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	var roots []Expr
	switch {
	case deg == 0:
		if len(coeffs) == 0 {
			return nil, ErrIdentity
		}
		return nil, fmt.Errorf("%w: %s does not occur in %s", ErrNoSolution, varName, e)
	case deg == 1:
		roots = []Expr{MulOf(N(-1), coeff(coeffs, 0), PowOf(coeffs[1], N(-1)))}
	default:
		if p, numeric := numericCoeffs(coeffs); numeric {
			var err error
			if roots, err = solveNumericPoly(p, varName); err != nil {
				return nil, err
			}
			break
		}
		if deg != 2 {
			return nil, fmt.Errorf("cannot solve a degree %d polynomial with symbolic coefficients", deg)
		}
		roots = quadraticFormula(coeff(coeffs, 2), coeff(coeffs, 1), coeff(coeffs, 0))
	}
	return validRoots(e, varName, roots)
}

func coeff(coeffs map[int]Expr, d int) Expr {
	if c, ok := coeffs[d]; ok {
		return c
	}
	return N(0)
}

// clearDenominators multiplies every term by the product of the
// denominators g(v)^k found in e, so p(x)/q(x) + r(x) becomes a polynomial.
// Roots of q are removed again by validRoots.
func clearDenominators(e Expr, v string) Expr {
	terms := []Expr{e}
	if sum, ok := e.(*Add); ok {
		terms = sum.terms
	}
	type denom struct {
		base Expr
		exp  *Num
	}
	dens := map[string]*denom{}
	var order []string
	for _, t := range terms {
		factors := []Expr{t}
		if m, ok := t.(*Mul); ok {
			factors = m.factors
		}
		for _, f := range factors {
			p, ok := f.(*Pow)
			if !ok || !dependsOn(p.base, v) {
				continue
			}
			n, ok := p.exp.(*Num)
			if !ok || !n.IsNegative() {
				continue
			}
			key := p.base.String()
			d, seen := dens[key]
			if !seen {
				d = &denom{base: p.base, exp: N(0)}
				dens[key] = d
				order = append(order, key)
			}
			if k := numNeg(n); k.val.Cmp(d.exp.val) > 0 {
				d.exp = k
			}
		}
	}
	if len(order) == 0 {
		return e
	}
	multiplier := make([]Expr, len(order))
	for i, key := range order {
		multiplier[i] = PowOf(dens[key].base, dens[key].exp)
	}
	cleared := make([]Expr, len(terms))
	for i, t := range terms {
		cleared[i] = MulOf(append([]Expr{t}, multiplier...)...)
	}
	return Expand(AddOf(cleared...))
}

// validRoots drops numeric roots at which the original expression is
// undefined, then removes duplicates keeping the first occurrence.
func validRoots(e Expr, v string, roots []Expr) ([]Expr, error) {
	var out []Expr
	seen := map[string]bool{}
	for _, r := range roots {
		r = r.Simplify()
		if _, numeric := r.Eval(); numeric && len(FreeSymbols(e)) == 1 {
			if hasUndefined(e.Sub(v, r)) {
				continue
			}
		}
		if key := r.String(); !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoSolution, v)
	}
	return out, nil
}

// quadraticFormula returns (-b + sqrt(D))/(2a) and (-b - sqrt(D))/(2a).
func quadraticFormula(a, b, c Expr) []Expr {
	disc := Expand(AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c)))
	if n, ok := disc.(*Num); ok && n.IsZero() {
		return []Expr{MulOf(N(-1), b, PowOf(MulOf(N(2), a), N(-1)))}
	}
	denom := PowOf(MulOf(N(2), a), N(-1))
	root := SqrtOf(disc)
	negB := MulOf(N(-1), b)
	return []Expr{
		MulOf(AddOf(negB, root), denom),
		MulOf(AddOf(negB, MulOf(N(-1), root)), denom),
	}
}

// solveNumericPoly finds the real roots of a polynomial with rational
// coefficients, in ascending order.
func solveNumericPoly(p ratPoly, varName string) ([]Expr, error) {
	rats, rest := rationalRoots(p)
	roots := make([]Expr, 0, len(rats)+2)
	for _, r := range rats {
		roots = append(roots, NRat(r))
	}
	switch rest.degree() {
	case 0:
	case 1:
		roots = append(roots, NRat(new(big.Rat).Neg(new(big.Rat).Quo(rest[0], rest[1]))))
	case 2:
		a, b, c := NRat(rest[2]), NRat(rest[1]), NRat(rest[0])
		disc := numSub(numMul(b, b), numMul(N(4), numMul(a, c)))
		if disc.IsNegative() {
			break
		}
		for _, r := range quadraticFormula(a, b, c) {
			roots = append(roots, Expand(r))
		}
	case 3:
		for _, f := range cubicRoots(rest) {
			roots = append(roots, floatRoot(f))
		}
	default:
		fn := func(x float64) float64 {
			xr := new(big.Rat)
			if xr.SetFloat64(x) == nil {
				return math.NaN()
			}
			f, _ := rest.eval(xr).Float64()
			return f
		}
		for _, f := range newtonRoots(fn) {
			roots = append(roots, floatRoot(f))
		}
	}
	if len(roots) == 0 {
		return nil, ErrNoRealSolution
	}
	sortRoots(roots)
	return roots, nil
}

// cubicRoots returns the real roots of a*x^3 + b*x^2 + c*x + d.
func cubicRoots(p ratPoly) []float64 {
	af, _ := p[3].Float64()
	bf, _ := p[2].Float64()
	cf, _ := p[1].Float64()
	df, _ := p[0].Float64()
	q1 := (3*af*cf - bf*bf) / (3 * af * af)
	q2 := (2*bf*bf*bf - 9*af*bf*cf + 27*af*af*df) / (27 * af * af * af)
	offset := bf / (3 * af)
	disc := -(4*q1*q1*q1 + 27*q2*q2)
	switch {
	case disc > 0:
		m := 2 * math.Sqrt(-q1/3)
		theta := math.Acos(3*q2/(q1*m)) / 3
		roots := make([]float64, 3)
		for k := range roots {
			roots[k] = m*math.Cos(theta-2*math.Pi*float64(k)/3) - offset
		}
		return roots
	case disc == 0:
		if q2 == 0 {
			return []float64{-offset}
		}
		return []float64{3*q2/q1 - offset, -3*q2/(2*q1) - offset}
	}
	s := math.Sqrt(q2*q2/4 + q1*q1*q1/27)
	return []float64{math.Cbrt(-q2/2+s) + math.Cbrt(-q2/2-s) - offset}
}

// floatRoot turns a float root into a number, snapping to integers.
func floatRoot(f float64) Expr {
	if r := math.Round(f); math.Abs(f-r) < 1e-9 {
		return N(int64(r))
	}
	return NFloat(f)
}

func sortRoots(roots []Expr) {
	sort.SliceStable(roots, func(i, j int) bool {
		a, okA := roots[i].Eval()
		b, okB := roots[j].Eval()
		if !okA || !okB {
			return false
		}
		return a.Float64() < b.Float64()
	})
}

// ============================================================
// Newton iteration
// ============================================================

const (
	newtonRange    = 100.0
	newtonSeeds    = 200
	newtonMaxIter  = 100
	newtonTol      = 1e-10
	maxNewtonRoots = 10
)

// truncatedError accompanies a partial root list.
type truncatedError string

func (e truncatedError) Error() string { return string(e) }

// Truncated reports that the roots returned alongside the error are a subset.
func (truncatedError) Truncated() bool { return true }

// ErrRootsTruncated is returned together with the roots nearest zero when
// the numeric search finds more than it reports.
var ErrRootsTruncated error = truncatedError(fmt.Sprintf(
	"more than %d roots in [-%g, %g]; showing the %d nearest 0", maxNewtonRoots, newtonRange, newtonRange, maxNewtonRoots))

// solveNewton returns the roots of e in [-newtonRange, newtonRange]. When
// there are more than maxNewtonRoots it returns those nearest zero together
// with ErrRootsTruncated.
func solveNewton(e Expr, v string) ([]Expr, error) {
	if !dependsOn(e, v) {
		return nil, fmt.Errorf("%w: %s does not occur in %s", ErrNoSolution, v, e)
	}
	fn := func(x float64) float64 {
		f, ok := floatEval(e, map[string]float64{v: x})
		if !ok {
			return math.NaN()
		}
		return f
	}
	var found []float64
	for _, r := range newtonRoots(fn) {
		if math.Abs(r) <= newtonRange {
			found = append(found, r)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no real root of %s found in [-%g, %g]", ErrNoSolution, e, newtonRange, newtonRange)
	}
	var err error
	if len(found) > maxNewtonRoots {
		sort.Slice(found, func(i, j int) bool { return math.Abs(found[i]) < math.Abs(found[j]) })
		found = found[:maxNewtonRoots]
		sort.Float64s(found)
		err = ErrRootsTruncated
	}
	roots := make([]Expr, len(found))
	for i, f := range found {
		roots[i] = floatRoot(f)
	}
	return roots, err
}

// newtonRoots seeds Newton's method across [-newtonRange, newtonRange] and
// returns the distinct roots found, ascending.
func newtonRoots(f func(float64) float64) []float64 {
	const h = 1e-7
	var roots []float64
	for i := 0; i <= newtonSeeds; i++ {
		x := -newtonRange + 2*newtonRange*float64(i)/newtonSeeds
		for iter := 0; iter < newtonMaxIter; iter++ {
			fx := f(x)
			if math.IsNaN(fx) || math.IsInf(fx, 0) {
				break
			}
			if math.Abs(fx) < newtonTol {
				dup := false
				for _, r := range roots {
					if math.Abs(r-x) < 1e-7 {
						dup = true
						break
					}
				}
				if !dup {
					roots = append(roots, x)
				}
				break
			}
			dfx := (f(x+h) - f(x-h)) / (2 * h)
			if math.IsNaN(dfx) || math.Abs(dfx) < 1e-15 {
				break
			}
			x -= fx / dfx
			if math.Abs(x) > newtonRange*10 {
				break
			}
		}
	}
	sort.Float64s(roots)
	return roots
}

// floatEval evaluates e in float64 arithmetic with the given variable values.
func floatEval(e Expr, env map[string]float64) (float64, bool) {
	var r float64
	switch v := e.(type) {
	case *Num:
		r = v.Float64()
	case *Sym:
		if x, ok := env[v.name]; ok {
			r = x
		} else if c, ok := constants[v.name]; ok {
			r = c
		} else {
			return 0, false
		}
	case *Add:
		for _, t := range v.terms {
			x, ok := floatEval(t, env)
			if !ok {
				return 0, false
			}
			r += x
		}
	case *Mul:
		r = 1
		for _, f := range v.factors {
			x, ok := floatEval(f, env)
			if !ok {
				return 0, false
			}
			r *= x
		}
	case *Pow:
		b, ok1 := floatEval(v.base, env)
		x, ok2 := floatEval(v.exp, env)
		if !ok1 || !ok2 {
			return 0, false
		}
		r = math.Pow(b, x)
	case *Func:
		x, ok := floatEval(v.arg, env)
		if !ok {
			return 0, false
		}
		return floatFunc(v.name, x)
	default:
		return 0, false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// FormatRoots renders roots as "r" for a single root or "[r1, r2, ...]".
func FormatRoots(roots []Expr) string {
	if len(roots) == 1 {
		return roots[0].String()
	}
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
