package numeric

import (
	"math"
	"math/big"
)

// Options controls constant folding in Simplify.
type Options struct {
	// ExactFractions keeps non-integer quotients of integers as a fraction
	// node ("1 / 3") instead of folding them to a decimal.
	ExactFractions bool
}

const maxSimplifyPasses = 10

// Simplify folds constants and applies algebraic identities (x+0, x*1, x*0,
// x^1, x^0, x-x, x+x, x/x, double negation) until the tree stops changing.
func Simplify(n Node, opts Options) Node {
	prev := ""
	for i := 0; i < maxSimplifyPasses; i++ {
		n = opts.simplify(n)
		s := n.String()
		if s == prev {
			break
		}
		prev = s
	}
	return n
}

func (o Options) simplify(n Node) Node {
	switch t := n.(type) {
	case *Operator:
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = o.simplify(a)
		}
		if len(args) == 1 {
			return o.simplifyNeg(args[0])
		}
		return o.simplifyBinary(t.Op, args[0], args[1])
	case *Call:
		arg := o.simplify(t.Arg)
		if f, ok := floatOf(arg); ok {
			if fn, known := floatFuncs[t.Fn]; known {
				if r := fn(f); r == math.Trunc(r) && !math.IsInf(r, 0) {
					return Const(r)
				}
			}
		}
		return &Call{Fn: t.Fn, Arg: arg}
	}
	return n
}

func (o Options) simplifyNeg(a Node) Node {
	if r, ok := ratOf(a); ok {
		return o.fromRat(new(big.Rat).Neg(r))
	}
	if f, ok := floatOf(a); ok {
		return Const(-f)
	}
	if inner, ok := a.(*Operator); ok && inner.unary() {
		return inner.Args[0]
	}
	return negate(a)
}

func (o Options) simplifyBinary(op string, l, r Node) Node {
	if folded, ok := o.fold(op, l, r); ok {
		return folded
	}
	ls, rs := l.String(), r.String()
	switch op {
	case "+":
		switch {
		case isValue(l, 0):
			return r
		case isValue(r, 0):
			return l
		case ls == rs:
			return binary("*", Const(2), l)
		}
		if neg, ok := r.(*Operator); ok && neg.unary() {
			if neg.Args[0].String() == ls {
				return Const(0)
			}
			return binary("-", l, neg.Args[0])
		}
		if f, ok := floatOf(r); ok && f < 0 {
			return binary("-", l, o.simplifyNeg(r))
		}
	case "-":
		switch {
		case isValue(r, 0):
			return l
		case isValue(l, 0):
			return o.simplifyNeg(r)
		case ls == rs:
			return Const(0)
		}
	case "*":
		switch {
		case isValue(l, 0), isValue(r, 0):
			return Const(0)
		case isValue(l, 1):
			return r
		case isValue(r, 1):
			return l
		case isValue(l, -1):
			return o.simplifyNeg(r)
		case isValue(r, -1):
			return o.simplifyNeg(l)
		case ls == rs:
			return binary("^", l, Const(2))
		}
		_, lc := floatOf(l)
		_, rc := floatOf(r)
		if rc && !lc {
			return o.simplifyBinary("*", r, l)
		}
		// c1 * (c2 * x) -> (c1*c2) * x
		if inner, ok := r.(*Operator); ok && lc && inner.Op == "*" && !inner.unary() {
			if folded, ok := o.fold("*", l, inner.Args[0]); ok {
				return binary("*", folded, inner.Args[1])
			}
		}
	case "/":
		switch {
		case isValue(r, 1):
			return l
		case isValue(l, 0) && !isValue(r, 0):
			return Const(0)
		case ls == rs:
			return Const(1)
		}
	case "^":
		switch {
		case isValue(r, 0):
			return Const(1)
		case isValue(r, 1):
			return l
		case isValue(l, 1):
			return Const(1)
		}
	}
	return binary(op, l, r)
}

// fold evaluates op when both operands are numbers. Exact rationals are
// used when both sides carry one.
func (o Options) fold(op string, l, r Node) (Node, bool) {
	if lr, ok := ratOf(l); ok {
		if rr, ok := ratOf(r); ok {
			if res, ok := ratFold(op, lr, rr); ok {
				return o.fromRat(res), true
			}
		}
	}
	lf, ok1 := floatOf(l)
	rf, ok2 := floatOf(r)
	if !ok1 || !ok2 {
		return nil, false
	}
	var res float64
	switch op {
	case "+":
		res = lf + rf
	case "-":
		res = lf - rf
	case "*":
		res = lf * rf
	case "/":
		res = lf / rf
	case "^":
		res = math.Pow(lf, rf)
	}
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return nil, false
	}
	return Const(res), true
}

func ratFold(op string, a, b *big.Rat) (*big.Rat, bool) {
	switch op {
	case "+":
		return new(big.Rat).Add(a, b), true
	case "-":
		return new(big.Rat).Sub(a, b), true
	case "*":
		return new(big.Rat).Mul(a, b), true
	case "/":
		if b.Sign() == 0 {
			return nil, false
		}
		return new(big.Rat).Quo(a, b), true
	case "^":
		if !b.IsInt() || !b.Num().IsInt64() {
			return nil, false
		}
		k := b.Num().Int64()
		if k > 64 || k < -64 || (k < 0 && a.Sign() == 0) {
			return nil, false
		}
		base := a
		if k < 0 {
			base = new(big.Rat).Inv(a)
			k = -k
		}
		out := big.NewRat(1, 1)
		for i := int64(0); i < k; i++ {
			out.Mul(out, base)
		}
		return out, true
	}
	return nil, false
}

// fromRat builds a constant node for r, as a fraction when requested.
func (o Options) fromRat(r *big.Rat) Node {
	if r.IsInt() || !o.ExactFractions {
		return ratConst(r)
	}
	num := new(big.Rat).SetInt(new(big.Int).Abs(r.Num()))
	frac := binary("/", ratConst(num), ratConst(new(big.Rat).SetInt(r.Denom())))
	if r.Sign() < 0 {
		return negate(frac)
	}
	return frac
}

// ratOf returns the exact value of a constant or of a fraction built by
// fromRat.
func ratOf(n Node) (*big.Rat, bool) {
	switch t := n.(type) {
	case *Constant:
		return t.rat, t.rat != nil
	case *Operator:
		if t.unary() {
			r, ok := ratOf(t.Args[0])
			if !ok {
				return nil, false
			}
			return new(big.Rat).Neg(r), true
		}
		if t.Op != "/" {
			return nil, false
		}
		a, ok1 := t.Args[0].(*Constant)
		b, ok2 := t.Args[1].(*Constant)
		if !ok1 || !ok2 || a.rat == nil || b.rat == nil || !a.rat.IsInt() || !b.rat.IsInt() || b.rat.Sign() == 0 {
			return nil, false
		}
		return new(big.Rat).Quo(a.rat, b.rat), true
	}
	return nil, false
}

func floatOf(n Node) (float64, bool) {
	if r, ok := ratOf(n); ok {
		f, _ := r.Float64()
		return f, true
	}
	if c, ok := n.(*Constant); ok {
		return c.Value, true
	}
	return 0, false
}

func isValue(n Node, v float64) bool {
	f, ok := floatOf(n)
	return ok && f == v
}
