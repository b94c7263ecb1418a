package numeric

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

var floatFuncs = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"ln":    math.Log,
	"log":   math.Log,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"sign": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	},
}

var evalFunctions = func() map[string]govaluate.ExpressionFunction {
	m := make(map[string]govaluate.ExpressionFunction, len(floatFuncs))
	for name, fn := range floatFuncs {
		m[name] = unary(name, fn)
	}
	return m
}()

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s: argument is not a number", name)
		}
		return fn(x), nil
	}
}

// Evaluate parses text and computes its value with the variables in scope.
// pi and e are predefined unless scope overrides them.
func Evaluate(text string, scope map[string]float64) (float64, error) {
	n, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return EvaluateNode(n, scope)
}

// EvaluateNode computes the value of an already parsed tree.
func EvaluateNode(n Node, scope map[string]float64) (float64, error) {
	if missing := undefinedSymbols(n, scope); len(missing) > 0 {
		return 0, fmt.Errorf("undefined symbol: %s", strings.Join(missing, ", "))
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(render(n, scope), evalFunctions)
	if err != nil {
		return 0, fmt.Errorf("evaluate %s: %w", n, err)
	}
	params := make(map[string]interface{}, len(scope))
	for k, v := range scope {
		params[k] = v
	}
	out, err := expr.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("evaluate %s: %w", n, err)
	}
	f, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("evaluate %s: result %v is not a number", n, out)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("evaluate %s: result is not a finite number", n)
	}
	return f, nil
}

// render writes n in govaluate syntax, fully parenthesised. Variables use the
// bracket form so names never collide with govaluate keywords.
func render(n Node, scope map[string]float64) string {
	switch t := n.(type) {
	case *Constant:
		s := strconv.FormatFloat(t.Value, 'f', -1, 64)
		if t.Value < 0 {
			return "(" + s + ")"
		}
		return s
	case *Symbol:
		if _, ok := scope[t.Name]; !ok {
			if c, ok := namedConstants[t.Name]; ok {
				return strconv.FormatFloat(c, 'f', -1, 64)
			}
		}
		return "[" + t.Name + "]"
	case *Operator:
		if t.unary() {
			return "(-" + render(t.Args[0], scope) + ")"
		}
		op := t.Op
		if op == "^" {
			op = "**"
		}
		return "(" + render(t.Args[0], scope) + " " + op + " " + render(t.Args[1], scope) + ")"
	case *Call:
		return t.Fn + "(" + render(t.Arg, scope) + ")"
	}
	return ""
}

func undefinedSymbols(n Node, scope map[string]float64) []string {
	seen := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *Symbol:
			_, inScope := scope[t.Name]
			_, isConst := namedConstants[t.Name]
			if !inScope && !isConst {
				seen[t.Name] = true
			}
		case *Operator:
			for _, a := range t.Args {
				walk(a)
			}
		case *Call:
			walk(t.Arg)
		}
	}
	walk(n)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
