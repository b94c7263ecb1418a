// Package numeric is a floating-point expression engine: an AST with
// derivative and simplification passes, and evaluation through govaluate.
package numeric

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Node is an expression tree node.
type Node interface {
	String() string
	precedence() int
}

const (
	precSum = iota + 1
	precProduct
	precUnary
	precPower
	precAtom
)

// Constant is a number. Literals parsed from text keep their exact rational
// value so simplification can fold them without rounding.
type Constant struct {
	Value float64
	rat   *big.Rat
}

// Const returns a constant node. Integral values keep an exact form.
func Const(v float64) *Constant {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return &Constant{Value: v, rat: new(big.Rat).SetInt64(int64(v))}
	}
	return &Constant{Value: v}
}

func ratConst(r *big.Rat) *Constant {
	f, _ := r.Float64()
	return &Constant{Value: f, rat: r}
}

func (c *Constant) precedence() int {
	if c.Value < 0 {
		return precUnary
	}
	return precAtom
}

func (c *Constant) String() string {
	if c.rat != nil && c.rat.IsInt() {
		return c.rat.Num().String()
	}
	return formatFloat(c.Value)
}

// formatFloat prints v with 14 significant digits.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', 14, 64)
	if strings.ContainsAny(s, "e") {
		return s
	}
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// Symbol is a variable or a named constant (pi, e).
type Symbol struct{ Name string }

func (s *Symbol) String() string  { return s.Name }
func (s *Symbol) precedence() int { return precAtom }

// Operator is a binary operator (+ - * / ^) or unary minus (Op "-" with a
// single argument).
type Operator struct {
	Op   string
	Args []Node
}

func binary(op string, l, r Node) *Operator { return &Operator{Op: op, Args: []Node{l, r}} }
func negate(n Node) *Operator               { return &Operator{Op: "-", Args: []Node{n}} }

func (o *Operator) unary() bool { return len(o.Args) == 1 }

func (o *Operator) precedence() int {
	if o.unary() {
		return precUnary
	}
	switch o.Op {
	case "+", "-":
		return precSum
	case "*", "/":
		return precProduct
	}
	return precPower
}

func (o *Operator) String() string {
	p := o.precedence()
	if o.unary() {
		return "-" + paren(o.Args[0], o.Args[0].precedence() < precAtom && o.Args[0].precedence() <= p)
	}
	l, r := o.Args[0], o.Args[1]
	var lp, rp bool
	if o.Op == "^" {
		lp = l.precedence() <= p
		rp = r.precedence() < p
	} else {
		lp = l.precedence() < p
		rp = r.precedence() < p || (r.precedence() == p && (o.Op == "-" || o.Op == "/"))
	}
	return paren(l, lp) + " " + o.Op + " " + paren(r, rp)
}

func paren(n Node, wrap bool) string {
	if wrap {
		return "(" + n.String() + ")"
	}
	return n.String()
}

// Call is a single-argument function application.
type Call struct {
	Fn  string
	Arg Node
}

func (c *Call) String() string  { return c.Fn + "(" + c.Arg.String() + ")" }
func (c *Call) precedence() int { return precAtom }

// namedConstants are symbols with a fixed value.
var namedConstants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// dependsOn reports whether n mentions the variable v.
func dependsOn(n Node, v string) bool {
	switch t := n.(type) {
	case *Symbol:
		return t.Name == v
	case *Operator:
		for _, a := range t.Args {
			if dependsOn(a, v) {
				return true
			}
		}
	case *Call:
		return dependsOn(t.Arg, v)
	}
	return false
}
