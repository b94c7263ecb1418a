package numeric

import "fmt"

// Engine exposes the numeric backend over expression strings.
type Engine struct{}

// NewEngine returns a numeric engine.
func NewEngine() *Engine { return &Engine{} }

func (*Engine) Name() string { return "numeric" }

func recoverTo(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("numeric engine: %v", r)
	}
}

// Evaluate computes expr, which must not contain free variables.
func (*Engine) Evaluate(expr string) (out string, err error) {
	defer recoverTo(&err)
	v, err := Evaluate(expr, nil)
	if err != nil {
		return "", err
	}
	return formatFloat(v), nil
}

// EvaluateAt computes expr with variable bound to x.
func (*Engine) EvaluateAt(expr, variable string, x float64) (v float64, err error) {
	defer recoverTo(&err)
	return Evaluate(expr, map[string]float64{variable: x})
}

// Derivative returns the simplified derivative of expr in variable.
func (*Engine) Derivative(expr, variable string) (out string, err error) {
	defer recoverTo(&err)
	n, err := Parse(expr)
	if err != nil {
		return "", err
	}
	d, err := Derivative(n, variable)
	if err != nil {
		return "", err
	}
	return Simplify(d, Options{ExactFractions: true}).String(), nil
}

// Simplify folds constants and identities in expr. With exact set,
// non-integer quotients stay fractions.
func (*Engine) Simplify(expr string, exact bool) (out string, err error) {
	defer recoverTo(&err)
	n, err := Parse(expr)
	if err != nil {
		return "", err
	}
	return Simplify(n, Options{ExactFractions: exact}).String(), nil
}
