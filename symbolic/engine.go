package symbolic

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// Engine: text in, text out
// ============================================================

// Engine exposes the symbolic kernel over expression strings. Every method
// recovers from internal panics (division by zero, unknown derivative rules)
// and reports them as errors.
type Engine struct{}

// NewEngine returns a symbolic engine.
func NewEngine() *Engine { return &Engine{} }

func (*Engine) Name() string { return "symbolic" }

func recoverTo(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("symbolic engine: %v", r)
	}
}

// Evaluate reduces expr to a number. Matrix expressions are evaluated to a
// matrix or scalar.
func (*Engine) Evaluate(expr string) (out string, err error) {
	defer recoverTo(&err)
	if isMatrixInput(expr) {
		return EvaluateMatrix(expr)
	}
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	e = e.Simplify()
	if free := sortedSymbols(e); len(free) > 0 {
		return "", fmt.Errorf("cannot evaluate %s: free variables %s", e, strings.Join(free, ", "))
	}
	if hasUndefined(e) {
		return "", fmt.Errorf("cannot evaluate %s: division by zero", expr)
	}
	n, ok := e.Eval()
	if !ok {
		return "", fmt.Errorf("cannot evaluate %s: result is not a real number", expr)
	}
	if n.exact() {
		return n.String(), nil
	}
	return n.Decimal(), nil
}

func isMatrixInput(expr string) bool {
	if strings.Contains(expr, "[") {
		return true
	}
	s := strings.TrimSpace(expr)
	if i := strings.IndexByte(s, '('); i > 0 {
		return IsMatrixFunction(strings.TrimSpace(s[:i]))
	}
	return false
}

// Differentiate returns d(expr)/d(variable).
func (*Engine) Differentiate(expr, variable string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	return Diff(e, variable).String(), nil
}

// Integrate returns an antiderivative of expr in variable.
func (*Engine) Integrate(expr, variable string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	r, err := Integrate(e, variable)
	if err != nil {
		return "", err
	}
	return DeepSimplify(r).String(), nil
}

// Simplify returns the shorter of the simplified and expanded forms.
func (*Engine) Simplify(expr string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	simplified := DeepSimplify(e).String()
	if expanded := DeepSimplify(Expand(e)).String(); len(expanded) < len(simplified) {
		return expanded, nil
	}
	return simplified, nil
}

func (*Engine) Factor(expr string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	r, err := Factor(e)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

func (*Engine) Expand(expr string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	return Expand(e).String(), nil
}

// SolveEquation solves expr = 0 for variable. A single root is returned as
// is, several roots as a bracketed list "[r1, r2]". A cut-down root list is
// returned together with ErrRootsTruncated.
func (*Engine) SolveEquation(expr, variable string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	roots, err := Solve(e, variable)
	if len(roots) == 0 {
		return "", err
	}
	return FormatRoots(roots), err
}

// Substitute replaces variable with value in expr. A fully numeric result is
// returned in decimal form.
func (*Engine) Substitute(expr, variable, value string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	v, err := Parse(value)
	if err != nil {
		return "", fmt.Errorf("value for %s: %w", variable, err)
	}
	r := e.Sub(variable, v).Simplify()
	if len(FreeSymbols(r)) == 0 && !hasUndefined(r) {
		if n, ok := r.Eval(); ok {
			return n.Decimal(), nil
		}
	}
	return r.String(), nil
}

// Limit computes the two-sided limit of expr as variable approaches the
// finite point approach.
func (*Engine) Limit(expr, variable, approach string) (out string, err error) {
	defer recoverTo(&err)
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}
	point, err := Parse(approach)
	if err != nil {
		return "", fmt.Errorf("approach value: %w", err)
	}
	if _, ok := point.Eval(); !ok {
		return "", fmt.Errorf("approach value %q is not a finite number", approach)
	}
	r, err := Limit(e, variable, point)
	if err != nil {
		return "", err
	}
	return r.Simplify().String(), nil
}

func sortedSymbols(e Expr) []string {
	syms := FreeSymbols(e)
	out := make([]string, 0, len(syms))
	for s := range syms {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
