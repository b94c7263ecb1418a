package symbolic

// ============================================================
// Expansion
// ============================================================

// maxExpandPower bounds the integer powers that Expand multiplies out.
const maxExpandPower = 12

// Expand distributes products over sums and multiplies out small integer
// powers: (x+1)^2 -> x^2 + 2*x + 1.
func Expand(e Expr) Expr { return expand(e.Simplify()).Simplify() }

func expand(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expand(t)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = expand(f)
		}
		return distribute(factors)
	case *Pow:
		base := expand(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			k := n.val.Num().Int64()
			if _, isSum := base.(*Add); isSum && k >= 2 && k <= maxExpandPower {
				factors := make([]Expr, k)
				for i := range factors {
					factors[i] = base
				}
				return distribute(factors)
			}
		}
		return PowOf(base, expand(v.exp))
	case *Func:
		return funcOf(v.name, expand(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies already expanded factors, splitting over the first
// sum it finds.
func distribute(factors []Expr) Expr {
	for i, f := range factors {
		sum, ok := f.(*Add)
		if !ok {
			continue
		}
		rest := make([]Expr, 0, len(factors)-1)
		rest = append(rest, factors[:i]...)
		rest = append(rest, factors[i+1:]...)
		terms := make([]Expr, len(sum.terms))
		for k, t := range sum.terms {
			terms[k] = distribute(append([]Expr{t}, rest...))
		}
		return AddOf(terms...)
	}
	product := MulOf(factors...)
	// Merging powers can produce a new sum (e.g. (x+1)^(1/2)*(x+1)^(3/2)).
	if _, ok := product.(*Add); ok {
		return expand(product)
	}
	if p, ok := product.(*Pow); ok {
		if _, isSum := p.base.(*Add); isSum {
			if n, ok2 := p.exp.(*Num); ok2 && n.IsInteger() && n.IsPositive() {
				return expand(product)
			}
		}
	}
	return product
}

// ============================================================
// Trig identities and deep simplification
// ============================================================

// TrigSimplify rewrites c*sin(u)^2 + c*cos(u)^2 into c, recursively.
func TrigSimplify(e Expr) Expr {
	return trigSimplify(e.Simplify()).Simplify()
}

func trigSimplify(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = trigSimplify(t)
		}
		return pythagorean(AddOf(terms...))
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = trigSimplify(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(trigSimplify(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplify(v.arg)).Simplify()
	}
	return e
}

func pythagorean(e Expr) Expr {
	sum, ok := e.(*Add)
	if !ok {
		return e
	}
	type square struct {
		fn    string
		arg   string
		coeff *Num
		idx   int
	}
	var squares []square
	for idx, t := range sum.terms {
		coeff, rest := extractCoefficient(t)
		p, ok := rest.(*Pow)
		if !ok {
			continue
		}
		fn, ok := p.base.(*Func)
		if !ok || (fn.name != "sin" && fn.name != "cos") {
			continue
		}
		if n, ok := p.exp.(*Num); ok && n.Equal(N(2)) {
			squares = append(squares, square{fn.name, fn.arg.String(), coeff, idx})
		}
	}
	for i := 0; i < len(squares); i++ {
		for j := i + 1; j < len(squares); j++ {
			a, b := squares[i], squares[j]
			if a.arg != b.arg || a.fn == b.fn || !a.coeff.Equal(b.coeff) {
				continue
			}
			terms := []Expr{a.coeff}
			for idx, t := range sum.terms {
				if idx != a.idx && idx != b.idx {
					terms = append(terms, t)
				}
			}
			return pythagorean(AddOf(terms...))
		}
	}
	return e
}

// DeepSimplify repeats simplification and trig rewriting until the printed
// form stops changing.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		s := curr.String()
		if s == prev {
			break
		}
		prev = s
		curr = TrigSimplify(curr)
	}
	return curr
}
