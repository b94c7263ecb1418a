package calc_test

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/numeric"
	"github.com/njchilds90/gocalc/symbolic"
)

// ============================================================
// Variable Analyzer
// ============================================================

func TestAnalyze_SingleVariable(t *testing.T) {
	for _, in := range []string{"2x+3", "sin(theta)^2", "q*q + 1", "y = 2y - 1"} {
		a := calc.Analyze(in, "")
		if a.HasMultipleVariables {
			t.Errorf("%s: want single variable, got %v", in, a.AllVariables)
		}
		if len(a.Parameters) != 0 {
			t.Errorf("%s: want no parameters, got %v", in, a.Parameters)
		}
	}
}

func TestAnalyze_Priority(t *testing.T) {
	tests := []struct {
		input, preferred string
		primary          string
		params           []string
	}{
		{"b*y + a*x", "", "x", []string{"b", "y", "a"}},
		{"k*t + w", "", "t", []string{"k", "w"}},
		{"m*n + k", "", "k", []string{"m", "n"}},
		{"a*x + b", "b", "b", []string{"a", "x"}},
		{"a*x + b", "z", "x", []string{"a", "b"}},
		{"y + x + y", "", "x", []string{"y"}},
	}
	for _, tt := range tests {
		a := calc.Analyze(tt.input, tt.preferred)
		if a.PrimaryVariable != tt.primary {
			t.Errorf("%s: want primary %s, got %s", tt.input, tt.primary, a.PrimaryVariable)
		}
		if !reflect.DeepEqual(a.Parameters, tt.params) {
			t.Errorf("%s: want parameters %v, got %v", tt.input, tt.params, a.Parameters)
		}
	}
}

func TestAnalyze_PriorityIgnoresOrder(t *testing.T) {
	for i, p := range calc.VariablePriority {
		later := calc.VariablePriority[i:]
		expr := "alpha"
		for j := len(later) - 1; j >= 0; j-- {
			expr += " + " + later[j]
		}
		if got := calc.Analyze(expr, "").PrimaryVariable; got != p {
			t.Errorf("%s: want %s, got %s", expr, p, got)
		}
	}
}

func TestAnalyze_Extraction(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"sin(theta) + pi", []string{"theta"}},
		{"2e10*q", []string{"q"}},
		{"2e + x", []string{"x"}},
		{"a_1*x + a_2", []string{"a_1", "x", "a_2"}},
		{"sqrt(abs(r)) + ln(s)", []string{"r", "s"}},
	}
	for _, tt := range tests {
		if got := calc.Analyze(tt.input, "").AllVariables; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: want %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestAnalyze_Constant(t *testing.T) {
	a := calc.Analyze("2+3*sqrt(4)", "")
	if !a.IsConstant || a.PrimaryVariable != "" || len(a.Parameters) != 0 {
		t.Errorf("want constant analysis, got %+v", a)
	}
}

// ============================================================
// Intent Classifier
// ============================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		input      string
		intent     calc.Intent
		op         calc.Operation
		confidence float64
		auto       bool
	}{
		{"", calc.IntentExpression, calc.OpEvaluate, 0, false},
		{"   ", calc.IntentExpression, calc.OpEvaluate, 0, false},
		{"2x+3=7", calc.IntentEquation, calc.OpSolve, 0.95, true},
		{"d/dx(x^2)", calc.IntentDerivative, calc.OpDifferentiate, 0.9, true},
		{"DIFF(x^2)", calc.IntentDerivative, calc.OpDifferentiate, 0.9, true},
		{"∂f/∂x", calc.IntentDerivative, calc.OpDifferentiate, 0.9, true},
		{"f'(x)", calc.IntentDerivative, calc.OpDifferentiate, 0.85, true},
		{"integrate(x^2, x)", calc.IntentIntegral, calc.OpIntegrate, 0.9, true},
		{"∫ x dx", calc.IntentIntegral, calc.OpIntegrate, 0.9, true},
		{"lim(sin(x)/x, x->0)", calc.IntentLimit, calc.OpLimit, 0.85, true},
		{"x -> 0", calc.IntentLimit, calc.OpLimit, 0.85, true},
		{"[[1,2],[3,4]]", calc.IntentMatrix, calc.OpEvaluate, 0.85, false},
		{"2+3*4", calc.IntentExpression, calc.OpEvaluate, 0.9, false},
		{"(1.5+2)^2", calc.IntentExpression, calc.OpEvaluate, 0.9, false},
		{"x^2+3x", calc.IntentExpression, calc.OpSimplify, 0.8, false},
		{"let y = 2", calc.IntentExpression, calc.OpSimplify, 0.8, false},
		{"#", calc.IntentExpression, calc.OpEvaluate, 0.7, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := calc.Classify(tt.input)
			if got.Intent != tt.intent || got.SuggestedOperation != tt.op || got.Confidence != tt.confidence || got.AutoSwitch != tt.auto {
				t.Errorf("want %s/%s/%v/%v, got %s/%s/%v/%v",
					tt.intent, tt.op, tt.confidence, tt.auto,
					got.Intent, got.SuggestedOperation, got.Confidence, got.AutoSwitch)
			}
			if got.Reason == "" {
				t.Error("want a reason")
			}
		})
	}
}

func TestIsCompatibleMode(t *testing.T) {
	ev, simp, solve := calc.Mode(calc.OpEvaluate), calc.Mode(calc.OpSimplify), calc.Mode(calc.OpSolve)
	tests := []struct {
		current, suggested calc.Mode
		want               bool
	}{
		{calc.ModeAll, solve, true},
		{solve, solve, true},
		{ev, simp, true},
		{simp, ev, true},
		{ev, solve, false},
		{solve, ev, false},
	}
	for _, tt := range tests {
		if got := calc.IsCompatibleMode(tt.current, tt.suggested); got != tt.want {
			t.Errorf("%s/%s: want %v, got %v", tt.current, tt.suggested, tt.want, got)
		}
	}
}

func TestShouldAutoSwitch(t *testing.T) {
	eq := calc.Classify("2x+3=7")
	if !calc.ShouldAutoSwitch(eq, calc.Mode(calc.OpEvaluate)) {
		t.Error("equation in evaluate mode: want switch")
	}
	if calc.ShouldAutoSwitch(eq, calc.ModeAll) {
		t.Error("equation in all mode: want no switch")
	}
	if calc.ShouldAutoSwitch(eq, calc.Mode(calc.OpSolve)) {
		t.Error("equation in solve mode: want no switch")
	}
	if calc.ShouldAutoSwitch(calc.Classify("[[1]]"), calc.Mode(calc.OpSolve)) {
		t.Error("matrix: want no switch")
	}
}

func TestShouldAutoSwitch_LowConfidence(t *testing.T) {
	for _, rule := range calc.ClassificationRules {
		low := rule.Result
		low.AutoSwitch = true
		if low.Confidence >= calc.AutoSwitchThreshold {
			low.Confidence = calc.AutoSwitchThreshold - 0.01
		}
		if calc.ShouldAutoSwitch(low, calc.Mode(calc.OpEvaluate)) {
			t.Errorf("rule %s: want no switch below threshold", rule.Name)
		}
	}
}

// ============================================================
// Unwrap
// ============================================================

func TestUnwrap(t *testing.T) {
	tests := []struct {
		input string
		want  calc.Unwrapped
	}{
		{"d/dx(x^2)", calc.Unwrapped{Operation: calc.OpDifferentiate, Expr: "x^2", Variable: "x"}},
		{"diff(x^2*y, y)", calc.Unwrapped{Operation: calc.OpDifferentiate, Expr: "x^2*y", Variable: "y"}},
		{"f'(x^3)", calc.Unwrapped{Operation: calc.OpDifferentiate, Expr: "x^3"}},
		{"integrate(sin(x), x)", calc.Unwrapped{Operation: calc.OpIntegrate, Expr: "sin(x)", Variable: "x"}},
		{"∫ x^2 dx", calc.Unwrapped{Operation: calc.OpIntegrate, Expr: "x^2", Variable: "x"}},
		{"limit(sin(x)/x, x->0)", calc.Unwrapped{Operation: calc.OpLimit, Expr: "sin(x)/x", Variable: "x", Approach: "0"}},
		{"lim(1/x, x, inf)", calc.Unwrapped{Operation: calc.OpLimit, Expr: "1/x", Variable: "x", Approach: "inf"}},
		{"x^2+1", calc.Unwrapped{Operation: calc.OpSimplify, Expr: "x^2+1"}},
		{"2x+3=7", calc.Unwrapped{Operation: calc.OpSolve, Expr: "2x+3=7"}},
		{"diff(x)+1", calc.Unwrapped{Operation: calc.OpDifferentiate, Expr: "diff(x)+1"}},
	}
	for _, tt := range tests {
		if got := calc.Unwrap(tt.input); got != tt.want {
			t.Errorf("%s: want %+v, got %+v", tt.input, tt.want, got)
		}
	}
}

// ============================================================
// Numeric Limit Approximator
// ============================================================

func TestApproximateLimit_TwoSided(t *testing.T) {
	num := numeric.NewEngine()
	tests := []struct {
		expr, approach, want string
	}{
		{"x^2", "2", "4"},
		{"sin(x)/x", "0", "1"},
		{"x^3", "0.5", "0.125"},
		{"1/x", "inf", "0"},
		{"(2x+1)/(x+3)", "infinity", "2"},
		{"x", "-inf", "-1000000000000"},
		{"cos(x)", "pi", "-1"},
	}
	for _, tt := range tests {
		res, err := calc.ApproximateLimit(num, tt.expr, "x", tt.approach, calc.TwoSided)
		if err != nil {
			t.Errorf("lim %s at %s: %v", tt.expr, tt.approach, err)
			continue
		}
		if got := res.Text(); got != tt.want {
			t.Errorf("lim %s at %s: want %s, got %s", tt.expr, tt.approach, tt.want, got)
		}
		if res.Engine != "numeric" || len(res.Steps) == 0 {
			t.Errorf("lim %s: want numeric engine with steps, got %+v", tt.expr, res)
		}
	}
}

// The representative value of a side is the sample at the smallest epsilon
// only. This is a known approximation, not a Richardson extrapolation.
func TestApproximateLimit_LastEpsilonValue(t *testing.T) {
	res, err := calc.ApproximateLimit(numeric.NewEngine(), "x", "x", "1", calc.FromRight)
	if err != nil {
		t.Fatal(err)
	}
	// 1 + 1e-10 rounds to 1 within the tolerance.
	if got := res.Text(); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
	res, err = calc.ApproximateLimit(numeric.NewEngine(), "1/(x-1)", "x", "1", calc.FromRight)
	if err != nil {
		t.Fatal(err)
	}
	if f, err := strconv.ParseFloat(res.Text(), 64); err != nil || f < 1e9 {
		t.Errorf("want a value near 1e10, got %s", res.Text())
	}
}

func TestApproximateLimit_OneSided(t *testing.T) {
	num := numeric.NewEngine()
	right, err := calc.ApproximateLimit(num, "abs(x)/x", "x", "0", calc.FromRight)
	if err != nil {
		t.Fatal(err)
	}
	left, err := calc.ApproximateLimit(num, "abs(x)/x", "x", "0", calc.FromLeft)
	if err != nil {
		t.Fatal(err)
	}
	if right.Text() != "1" || left.Text() != "-1" {
		t.Errorf("want 1 and -1, got %s and %s", right.Text(), left.Text())
	}
}

func TestApproximateLimit_NotConverged(t *testing.T) {
	res, err := calc.ApproximateLimit(numeric.NewEngine(), "abs(x)/x", "x", "0", calc.TwoSided)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Text(); got != "left: -1, right: 1" {
		t.Errorf("want left: -1, right: 1, got %s", got)
	}
	if len(res.Warnings) == 0 {
		t.Error("want a warning")
	}
}

func TestApproximateLimit_Errors(t *testing.T) {
	num := numeric.NewEngine()
	if _, err := calc.ApproximateLimit(num, "ln(x)", "x", "0", calc.FromLeft); err == nil {
		t.Error("ln(x) from the left: expected error")
	}
	if _, err := calc.ApproximateLimit(num, "x", "x", "nowhere", calc.TwoSided); err == nil {
		t.Error("bad approach: expected error")
	}
	if _, err := calc.ApproximateLimit(num, "x +", "x", "0", calc.TwoSided); err == nil {
		t.Error("syntax error: expected error")
	}
}

// ============================================================
// Parametric Equation Solver
// ============================================================

func newSolver() *calc.ParametricSolver {
	return calc.NewParametricSolver(symbolic.NewEngine(), nil)
}

func TestSolveParametric_QuadraticFormula(t *testing.T) {
	params := []calc.ParamValue{{Name: "a", Value: "1"}, {Name: "b", Value: "-5"}, {Name: "c", Value: "6"}}
	sol, err := newSolver().SolveParametric(context.Background(), "x = (-b + sqrt(b^2-4*a*c))/(2*a)", "x", params)
	if err != nil {
		t.Fatal(err)
	}
	if sol.GeneralSolution != "(-b+sqrt(b^2-4*a*c))/(2*a)" {
		t.Errorf("want the right-hand side verbatim, got %s", sol.GeneralSolution)
	}
	if sol.SpecificSolution != "3" {
		t.Errorf("want 3, got %s", sol.SpecificSolution)
	}
	if len(sol.Substitutions) != 3 {
		t.Errorf("want 3 substitutions, got %v", sol.Substitutions)
	}
}

func TestSolveParametric_Linear(t *testing.T) {
	params := []calc.ParamValue{{Name: "a", Value: "2"}, {Name: "b", Value: "1"}, {Name: "c", Value: "8"}}
	sol, err := newSolver().SolveParametric(context.Background(), "a*x + b = c", "", params)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Analysis.PrimaryVariable != "x" {
		t.Errorf("want x, got %s", sol.Analysis.PrimaryVariable)
	}
	if strings.ContainsAny(sol.GeneralSolution, " ") {
		t.Errorf("want whitespace removed, got %q", sol.GeneralSolution)
	}
	if sol.SpecificSolution != "3.5" {
		t.Errorf("want 3.5, got %s", sol.SpecificSolution)
	}
}

func TestSolveParametric_Subscripts(t *testing.T) {
	params := []calc.ParamValue{{Name: "a_1", Value: "2"}, {Name: "a_2", Value: "3"}}
	sol, err := newSolver().SolveParametric(context.Background(), "x = a_1 + a_2", "x", params)
	if err != nil {
		t.Fatal(err)
	}
	if sol.GeneralSolution != "a1+a2" {
		t.Errorf("want a1+a2, got %s", sol.GeneralSolution)
	}
	if sol.SpecificSolution != "5" {
		t.Errorf("want 5, got %s", sol.SpecificSolution)
	}
}

func TestSolveParametric_SkipsBlankValues(t *testing.T) {
	params := []calc.ParamValue{{Name: "a", Value: "1"}, {Name: "b", Value: " "}, {Name: "c", Value: "6"}}
	sol, err := newSolver().SolveParametric(context.Background(), "x = (-b + sqrt(b^2-4*a*c))/(2*a)", "x", params)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sol.Substitutions["b"]; ok || len(sol.Substitutions) != 2 {
		t.Errorf("want a and c substituted, got %v", sol.Substitutions)
	}
	if !strings.Contains(sol.SpecificSolution, "b") {
		t.Errorf("want b left symbolic, got %s", sol.SpecificSolution)
	}
}

func TestSolveParametric_SubstitutionFailureIsSwallowed(t *testing.T) {
	params := []calc.ParamValue{{Name: "a", Value: "2+"}}
	sol, err := newSolver().SolveParametric(context.Background(), "x = a + b", "x", params)
	if err != nil {
		t.Fatalf("want no error, got %v", err)
	}
	if sol.GeneralSolution != "a+b" || sol.SpecificSolution != "" {
		t.Errorf("want general a+b and no specific, got %+v", sol)
	}
}

func TestSolveParametric_CleansParentheses(t *testing.T) {
	sol, err := newSolver().SolveParametric(context.Background(), "x = (5)", "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if sol.GeneralSolution != "5" {
		t.Errorf("want 5, got %s", sol.GeneralSolution)
	}
}

func TestSolveParametric_Errors(t *testing.T) {
	s := newSolver()
	if _, err := s.SolveParametric(context.Background(), "2 = 3", "", nil); !errors.Is(err, calc.ErrNoVariable) {
		t.Errorf("want ErrNoVariable, got %v", err)
	}
	if _, err := s.SolveParametric(context.Background(), "a*x + b", "", nil); !errors.Is(err, calc.ErrIllFormedEquation) {
		t.Errorf("want ErrIllFormedEquation, got %v", err)
	}
	if _, err := s.SolveParametric(context.Background(), "x = a = b", "", nil); !errors.Is(err, calc.ErrIllFormedEquation) {
		t.Errorf("want ErrIllFormedEquation, got %v", err)
	}
}

func TestSolveParametricAll(t *testing.T) {
	roots, err := newSolver().SolveParametricAll("a*x^2 + b*x + c = 0", "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 2 {
		t.Fatalf("want 2 roots, got %v", roots)
	}
	for _, r := range roots {
		if strings.Contains(r, " ") {
			t.Errorf("want cleaned root, got %q", r)
		}
	}
}
