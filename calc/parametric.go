package calc

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/njchilds90/gocalc/internal/lexer"
)

// ParametricSolution is the result of solving a multi-variable equation.
type ParametricSolution struct {
	Analysis         VariableAnalysis
	GeneralSolution  string
	SpecificSolution string
	Substitutions    map[string]string
}

// ParametricSolver isolates the primary variable of an equation and
// optionally substitutes parameter values.
type ParametricSolver struct {
	sym    SymbolicEngine
	logger *slog.Logger
}

// NewParametricSolver returns a solver backed by sym. A nil logger uses
// slog.Default.
func NewParametricSolver(sym SymbolicEngine, logger *slog.Logger) *ParametricSolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParametricSolver{sym: sym, logger: logger}
}

// SolveParametric solves equation for target (or the primary variable) and
// substitutes params in caller order. Blank values are skipped. A failed
// substitution is logged and the general solution is still returned.
func (p *ParametricSolver) SolveParametric(ctx context.Context, equation, target string, params []ParamValue) (*ParametricSolution, error) {
	a, roots, err := p.solve(equation, target)
	if err != nil {
		return nil, err
	}
	sol := &ParametricSolution{Analysis: a, GeneralSolution: roots[0]}
	if len(params) == 0 {
		return sol, nil
	}
	known := map[string]bool{}
	for _, name := range normalizeNames(a.Parameters) {
		known[name] = true
	}
	current := sol.GeneralSolution
	subs := map[string]string{}
	for _, pv := range params {
		value := strings.TrimSpace(pv.Value)
		name := lexer.NormalizeSubscripts(pv.Name)
		if value == "" {
			continue
		}
		if !known[name] {
			p.logger.DebugContext(ctx, "skipping value for non-parameter",
				"equation", equation, "parameter", pv.Name)
			continue
		}
		next, err := p.sym.Substitute(current, name, value)
		if err != nil {
			p.logger.WarnContext(ctx, "parameter substitution failed",
				"equation", equation, "parameter", pv.Name, "value", value, "error", err)
			return sol, nil
		}
		current = next
		subs[pv.Name] = value
	}
	if len(subs) == 0 {
		return sol, nil
	}
	sol.Substitutions = subs
	sol.SpecificSolution = cleanSolution(formatSpecific(current))
	return sol, nil
}

// normalizeNames rewrites x_1 style names to the x1 form used in solutions.
func normalizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = lexer.NormalizeSubscripts(n)
	}
	return out
}

// SolveParametricAll returns every root of equation in target.
func (p *ParametricSolver) SolveParametricAll(equation, target string) ([]string, error) {
	_, roots, err := p.solve(equation, target)
	return roots, err
}

func (p *ParametricSolver) solve(equation, target string) (VariableAnalysis, []string, error) {
	a := Analyze(equation, target)
	if a.IsConstant {
		return a, nil, newError(KindNoVariable, OpSolve, "no variable to solve for")
	}
	eq := lexer.NormalizeSubscripts(strings.Join(strings.Fields(equation), ""))
	lhs, rhs, err := splitEquation(eq)
	if err != nil {
		return a, nil, err
	}
	primary := lexer.NormalizeSubscripts(a.PrimaryVariable)
	if lhs == primary {
		return a, []string{cleanSolution(rhs)}, nil
	}
	out, err := p.sym.SolveEquation("("+lhs+")-("+rhs+")", primary)
	if err != nil && !(out != "" && IsTruncated(err)) {
		return a, nil, solveError(p.sym.Name(), err)
	}
	roots := splitRoots(out)
	for i, r := range roots {
		roots[i] = cleanSolution(r)
	}
	return a, roots, nil
}

// splitEquation splits on the single '='.
func splitEquation(eq string) (string, string, error) {
	switch n := strings.Count(eq, "="); {
	case n == 0:
		return "", "", newError(KindIllFormedEquation, OpSolve, "no equals sign in %q", eq)
	case n > 1:
		return "", "", newError(KindIllFormedEquation, OpSolve, "%d equals signs in %q; expected one", n, eq)
	}
	i := strings.IndexByte(eq, '=')
	lhs, rhs := strings.TrimSpace(eq[:i]), strings.TrimSpace(eq[i+1:])
	if lhs == "" || rhs == "" {
		return "", "", newError(KindIllFormedEquation, OpSolve, "missing side in %q", eq)
	}
	return lhs, rhs, nil
}

// formatSpecific prints finite numbers with 10 decimals, trailing zeros
// removed.
func formatSpecific(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	out := strconv.FormatFloat(f, 'f', 10, 64)
	out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	if out == "-0" {
		return "0"
	}
	return out
}

var parenNumberRe = regexp.MustCompile(`^\(([-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?)\)$`)

// cleanSolution removes whitespace and a redundant pair of parentheses
// around a plain number.
func cleanSolution(s string) string {
	s = strings.Join(strings.Fields(s), "")
	if m := parenNumberRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
