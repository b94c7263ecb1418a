package symbolic

import (
	"fmt"
	"math/big"
	"sort"
)

// ============================================================
// Polynomial utilities
// ============================================================

// PolyCoeffs returns the coefficients of expr as a polynomial in varName,
// keyed by degree. ok is false when expr is not a polynomial in varName
// (negative or fractional powers, varName inside a function, ...).
func PolyCoeffs(expr Expr, varName string) (coeffs map[int]Expr, ok bool) {
	coeffs = map[int]Expr{}
	e := Expand(expr)
	terms := []Expr{e}
	if sum, isSum := e.(*Add); isSum {
		terms = sum.terms
	}
	for _, t := range terms {
		deg, coeff, ok := monomial(t, varName)
		if !ok {
			return nil, false
		}
		if prev, seen := coeffs[deg]; seen {
			coeffs[deg] = AddOf(prev, coeff)
		} else {
			coeffs[deg] = coeff
		}
	}
	for d, c := range coeffs {
		if n, isNum := c.(*Num); isNum && n.IsZero() {
			delete(coeffs, d)
		}
	}
	return coeffs, true
}

// monomial splits c*v^k into (k, c).
func monomial(t Expr, varName string) (int, Expr, bool) {
	if !dependsOn(t, varName) {
		return 0, t, true
	}
	factors := []Expr{t}
	if m, isMul := t.(*Mul); isMul {
		factors = m.factors
	}
	deg := 0
	var rest []Expr
	for _, f := range factors {
		if !dependsOn(f, varName) {
			rest = append(rest, f)
			continue
		}
		switch v := f.(type) {
		case *Sym:
			deg++
		case *Pow:
			s, isSym := v.base.(*Sym)
			n, isNum := v.exp.(*Num)
			if !isSym || s.name != varName || !isNum || !n.IsInteger() || n.IsNegative() || !n.val.Num().IsInt64() {
				return 0, nil, false
			}
			deg += int(n.val.Num().Int64())
		default:
			return 0, nil, false
		}
	}
	if len(rest) == 0 {
		return deg, N(1), true
	}
	return deg, MulOf(rest...), true
}

// Degree returns the polynomial degree of expr in varName, or -1 when expr
// is not a polynomial in varName.
func Degree(expr Expr, varName string) int {
	coeffs, ok := PolyCoeffs(expr, varName)
	if !ok {
		return -1
	}
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	return deg
}

// Collect regroups a polynomial by descending powers of varName.
func Collect(expr Expr, varName string) Expr {
	coeffs, ok := PolyCoeffs(expr, varName)
	if !ok {
		return expr.Simplify()
	}
	return buildPoly(coeffs, varName)
}

func buildPoly(coeffs map[int]Expr, varName string) Expr {
	degrees := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degrees = append(degrees, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))
	terms := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		terms = append(terms, MulOf(coeffs[d], PowOf(S(varName), N(int64(d)))))
	}
	return AddOf(terms...)
}

// numericCoeffs converts symbolic coefficients to a dense rational
// polynomial. ok is false when any coefficient is not a number.
func numericCoeffs(coeffs map[int]Expr) (ratPoly, bool) {
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	p := make(ratPoly, deg+1)
	for i := range p {
		p[i] = new(big.Rat)
	}
	for d, c := range coeffs {
		n, ok := c.(*Num)
		if !ok {
			return nil, false
		}
		p[d].Set(n.val)
	}
	return p, true
}

// ============================================================
// Dense rational polynomials
// ============================================================

// ratPoly holds coefficients indexed by degree.
type ratPoly []*big.Rat

func (p ratPoly) degree() int {
	for d := len(p) - 1; d >= 0; d-- {
		if p[d].Sign() != 0 {
			return d
		}
	}
	return 0
}

func (p ratPoly) eval(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for d := p.degree(); d >= 0; d-- {
		acc.Mul(acc, x)
		acc.Add(acc, p[d])
	}
	return acc
}

// deflate divides p by (x - r) using synthetic division. r must be a root.
func (p ratPoly) deflate(r *big.Rat) ratPoly {
	n := p.degree()
	q := make(ratPoly, n)
	carry := new(big.Rat)
	for d := n; d >= 1; d-- {
		carry = new(big.Rat).Add(new(big.Rat).Mul(carry, r), p[d])
		q[d-1] = carry
	}
	return q
}

func (p ratPoly) scale(k *big.Rat) ratPoly {
	out := make(ratPoly, len(p))
	for i, c := range p {
		out[i] = new(big.Rat).Mul(c, k)
	}
	return out
}

// primitive scales p to integer coefficients with gcd 1 and a positive
// leading coefficient. It returns the scaled polynomial and the content c
// such that p = c * primitive.
func (p ratPoly) primitive() (ratPoly, *big.Rat) {
	lcm := big.NewInt(1)
	for _, c := range p {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	g := new(big.Int)
	for _, c := range p {
		n := new(big.Int).Mul(c.Num(), new(big.Int).Quo(lcm, c.Denom()))
		g.GCD(nil, nil, g, new(big.Int).Abs(n))
	}
	if g.Sign() == 0 {
		return p, big.NewRat(1, 1)
	}
	content := new(big.Rat).SetFrac(g, lcm)
	if p[p.degree()].Sign() < 0 {
		content.Neg(content)
	}
	return p.scale(new(big.Rat).Inv(content)), content
}

func (p ratPoly) toExpr(varName string) Expr {
	coeffs := map[int]Expr{}
	for d, c := range p[:p.degree()+1] {
		if c.Sign() != 0 {
			coeffs[d] = NRat(c)
		}
	}
	return buildPoly(coeffs, varName)
}

// maxRootSearch bounds the coefficients whose divisors are enumerated.
var maxRootSearch = big.NewInt(1_000_000_000)

// rationalRoots finds every rational root of p (with multiplicity, in
// ascending order) and returns the polynomial left after deflating them.
func rationalRoots(p ratPoly) ([]*big.Rat, ratPoly) {
	var roots []*big.Rat
	for p.degree() > 0 && p[0].Sign() == 0 {
		roots = append(roots, new(big.Rat))
		p = p.deflate(new(big.Rat))
	}
	if p.degree() == 0 {
		return roots, p
	}
	prim, _ := p.primitive()
	lead := prim[prim.degree()].Num()
	constant := new(big.Int).Abs(prim[0].Num())
	if lead.CmpAbs(maxRootSearch) > 0 || constant.Cmp(maxRootSearch) > 0 {
		return roots, p
	}
	var candidates []*big.Rat
	seen := map[string]bool{}
	for _, num := range divisors(constant.Int64()) {
		for _, den := range divisors(new(big.Int).Abs(lead).Int64()) {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*num, den)
				if key := r.RatString(); !seen[key] {
					seen[key] = true
					candidates = append(candidates, r)
				}
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Cmp(candidates[j]) < 0 })
	for _, r := range candidates {
		for p.degree() > 0 && p.eval(r).Sign() == 0 {
			roots = append(roots, r)
			p = p.deflate(r)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots, p
}

func divisors(n int64) []int64 {
	var out []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
			if d*d != n {
				out = append(out, n/d)
			}
		}
	}
	return out
}

// ============================================================
// Factoring
// ============================================================

// Factor factors a polynomial over the rationals: numeric content, powers of
// the variable and linear factors from rational roots are pulled out, and
// whatever is left is kept as an irreducible remainder. Polynomials with
// symbolic coefficients only have common powers of the variable extracted.
func Factor(expr Expr) (Expr, error) {
	e := Expand(expr)
	varName, ok := factorVariable(e)
	if !ok {
		return e, nil
	}
	coeffs, ok := PolyCoeffs(e, varName)
	if !ok {
		return nil, fmt.Errorf("%s is not a polynomial in %s", e, varName)
	}
	p, numeric := numericCoeffs(coeffs)
	if !numeric {
		return factorMonomial(coeffs, varName), nil
	}
	prim, content := p.primitive()
	roots, rest := rationalRoots(prim)

	factors := []Expr{NRat(content)}
	for _, r := range roots {
		// (x - p/q) becomes (q*x - p), keeping integer coefficients.
		q := new(big.Rat).SetInt(r.Denom())
		factors = append(factors, AddOf(MulOf(NRat(q), S(varName)), NRat(new(big.Rat).Neg(new(big.Rat).SetInt(r.Num())))))
		rest = rest.scale(new(big.Rat).Inv(q))
	}
	if rest.degree() > 0 {
		factors = append(factors, rest.toExpr(varName))
	} else {
		factors = append(factors, NRat(rest[0]))
	}
	return MulOf(factors...), nil
}

// factorVariable picks the variable of highest degree, breaking ties by name.
func factorVariable(e Expr) (string, bool) {
	syms := FreeSymbols(e)
	if len(syms) == 0 {
		return "", false
	}
	names := make([]string, 0, len(syms))
	for s := range syms {
		names = append(names, s)
	}
	sort.Strings(names)
	best, bestDeg := names[0], Degree(e, names[0])
	for _, n := range names[1:] {
		if d := Degree(e, n); d > bestDeg {
			best, bestDeg = n, d
		}
	}
	return best, true
}

func factorMonomial(coeffs map[int]Expr, varName string) Expr {
	low := -1
	for d := range coeffs {
		if low < 0 || d < low {
			low = d
		}
	}
	if low <= 0 {
		return buildPoly(coeffs, varName)
	}
	shifted := make(map[int]Expr, len(coeffs))
	for d, c := range coeffs {
		shifted[d-low] = c
	}
	return MulOf(PowOf(S(varName), N(int64(low))), buildPoly(shifted, varName))
}
