package symbolic

import (
	"math"
	"math/big"
	"strings"
)

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	bn, baseIsNum := base.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	// 0^0 is indeterminate and 0^negative is a division by zero; both are
	// kept so Eval can refuse them.
	if baseIsNum && bn.IsZero() {
		if expIsNum && (en.IsZero() || en.IsNegative()) {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}
	if baseIsNum && bn.IsOne() {
		return N(1)
	}
	if baseIsNum && expIsNum {
		if en.IsInteger() {
			e := en.val.Num()
			if e.IsInt64() && e.Int64() >= -64 && e.Int64() <= 64 {
				return numPowInt(bn, e.Int64())
			}
		} else if r, ok := exactRoot(bn, en); ok {
			return r
		}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	if m, ok := base.(*Mul); ok && expIsNum && en.IsInteger() {
		factors := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			factors[i] = PowOf(f, exp)
		}
		return MulOf(factors...)
	}
	return &Pow{base: base, exp: exp}
}

// exactRoot evaluates b^(p/q) for a rational exponent when b is a perfect
// q-th power, and pulls square factors out of integer square roots
// (sqrt(8) -> 2*sqrt(2)).
func exactRoot(b, e *Num) (Expr, bool) {
	if b.IsNegative() {
		return nil, false
	}
	q := e.val.Denom()
	if !q.IsInt64() || q.Int64() > 10 {
		return nil, false
	}
	qi := q.Int64()
	num, okN := intRoot(b.val.Num(), qi)
	den, okD := intRoot(b.val.Denom(), qi)
	if okN && okD {
		root := &Num{val: new(big.Rat).SetFrac(num, den)}
		p := e.val.Num()
		if p.IsInt64() && p.Int64() >= -64 && p.Int64() <= 64 {
			return numPowInt(root, p.Int64()), true
		}
		return nil, false
	}
	if qi != 2 || !b.IsInteger() || !b.val.Num().IsInt64() || e.val.Num().Int64() != 1 {
		return nil, false
	}
	n := b.val.Num().Int64()
	outside, inside := int64(1), n
	for f := int64(2); f*f <= inside && f <= 1e6; f++ {
		for inside%(f*f) == 0 {
			inside /= f * f
			outside *= f
		}
	}
	if outside == 1 {
		return nil, false
	}
	return &Mul{factors: []Expr{N(outside), &Pow{base: N(inside), exp: F(1, 2)}}}, true
}

// intRoot returns the exact integer q-th root of n if one exists.
func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if n.Sign() == 0 {
		return new(big.Int), true
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, big.NewInt(q), nil).Cmp(n) == 0 {
			return r, true
		}
	}
	return nil, false
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok {
		switch {
		case en.Equal(F(1, 2)):
			return "sqrt(" + p.base.String() + ")"
		case en.Equal(F(-1, 2)):
			return "1/sqrt(" + p.base.String() + ")"
		case en.IsNegative():
			return "1/" + factorString(PowOf(p.base, numNeg(en)))
		}
	}
	baseStr := p.base.String()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch e := p.exp.(type) {
	case *Sym:
	case *Num:
		if !e.IsInteger() || e.IsNegative() {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := p.exp.(*Num); expIsNum || !dependsOn(p.exp, varName) {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !dependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if e.IsInteger() && e.val.Num().IsInt64() {
		ei := e.val.Num().Int64()
		if b.IsZero() && ei < 0 {
			return nil, false
		}
		if ei >= -64 && ei <= 64 {
			return numPowInt(b, ei), true
		}
	}
	pf := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// funcNames lists every function the parser accepts. log is an alias of ln
// and sqrt is rewritten to a power.
var funcNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "asin": true, "acos": true, "atan": true,
	"sinh": true, "cosh": true, "tanh": true, "exp": true, "ln": true, "log": true,
	"sqrt": true, "abs": true, "floor": true, "ceil": true, "sign": true,
}

// IsFunction reports whether name is a known function.
func IsFunction(name string) bool { return funcNames[strings.ToLower(name)] }

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr  { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func SignOf(arg Expr) Expr  { return funcOf("sign", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }

// applyFunc builds a function node by name, used by the parser.
func applyFunc(name string, arg Expr) Expr {
	switch name {
	case "sqrt":
		return SqrtOf(arg)
	case "log":
		return LnOf(arg)
	}
	return funcOf(name, arg).Simplify()
}

func floatFunc(name string, v float64) (float64, bool) {
	var r float64
	switch name {
	case "sin":
		r = math.Sin(v)
	case "cos":
		r = math.Cos(v)
	case "tan":
		r = math.Tan(v)
	case "exp":
		r = math.Exp(v)
	case "ln":
		r = math.Log(v)
	case "abs":
		r = math.Abs(v)
	case "asin":
		r = math.Asin(v)
	case "acos":
		r = math.Acos(v)
	case "atan":
		r = math.Atan(v)
	case "sinh":
		r = math.Sinh(v)
	case "cosh":
		r = math.Cosh(v)
	case "tanh":
		r = math.Tanh(v)
	case "floor":
		r = math.Floor(v)
	case "ceil":
		r = math.Ceil(v)
	case "sign":
		switch {
		case v > 0:
			r = 1
		case v < 0:
			r = -1
		}
	default:
		return 0, false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		switch f.name {
		case "abs":
			return numAbs(n)
		case "floor", "ceil", "sign":
			if v, ok := floatFunc(f.name, n.Float64()); ok {
				return NFloat(v)
			}
		}
		if n.IsZero() {
			switch f.name {
			case "sin", "tan", "asin", "atan", "sinh", "tanh":
				return N(0)
			case "cos", "cosh", "exp":
				return N(1)
			}
		}
		if f.name == "ln" && n.IsOne() {
			return N(0)
		}
		// Irrational results are only folded for inexact arguments.
		if !n.exact() {
			if v, ok := floatFunc(f.name, n.Float64()); ok {
				return NFloat(v)
			}
		}
	}
	switch f.name {
	case "ln":
		if s, ok := arg.(*Sym); ok && s.name == "e" {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
		if p, ok := arg.(*Pow); ok {
			if s, ok2 := p.base.(*Sym); ok2 && s.name == "e" {
				return p.exp
			}
		}
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if m, ok := arg.(*Mul); ok {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				return MulOf(numAbs(coeff), AbsOf(MulOf(m.factors[1:]...)))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "abs":
		outer = SignOf(f.arg)
	case "floor", "ceil", "sign":
		return N(0)
	default:
		panic("symbolic: no derivative rule for " + f.name)
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	if f.name == "abs" {
		return numAbs(n), true
	}
	v, ok := floatFunc(f.name, n.Float64())
	if !ok {
		return nil, false
	}
	return NFloat(v), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}

// Residual returns LHS - RHS, which is zero exactly where the equation holds.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS))
}

// ============================================================
// Free Symbols
// ============================================================

// FreeSymbols returns the variables of e. Named constants are excluded.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		if _, ok := constants[v.name]; !ok {
			out[v.name] = struct{}{}
		}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

func dependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}
