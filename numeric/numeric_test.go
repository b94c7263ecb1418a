package numeric_test

import (
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/gocalc/numeric"
)

// ============================================================
// Parse
// ============================================================

func TestParse_String(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2x^2 + sin(x)", "2 * x ^ 2 + sin(x)"},
		{"(x+1)(x-1)", "(x + 1) * (x - 1)"},
		{"a - (b - c)", "a - (b - c)"},
		{"2^3^2", "2 ^ 3 ^ 2"},
		{"-x^2", "-x ^ 2"},
		{"(a/b)/c", "a / b / c"},
		{"a/(b*c)", "a / (b * c)"},
		{"x**2", "x ^ 2"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			n, err := numeric.Parse(c.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.in, err)
			}
			if got := n.String(); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "2 +", "sin x", "(1 + 2", "[[1, 2]]", "x = 2", "5 % 2"} {
		if _, err := numeric.Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error", in)
		}
	}
}

// ============================================================
// Evaluate
// ============================================================

func TestEvaluate(t *testing.T) {
	cases := []struct {
		in    string
		scope map[string]float64
		want  float64
	}{
		{"2+3*4", nil, 14},
		{"2^10", nil, 1024},
		{"2^-1", nil, 0.5},
		{"sin(pi/2)", nil, 1},
		{"sqrt(16) + abs(-3)", nil, 7},
		{"e", nil, math.E},
		{"ln(e^2)", nil, 2},
		{"x^2 + y", map[string]float64{"x": 3, "y": 1}, 10},
		{"2x", map[string]float64{"x": -4}, -8},
		{"sign(-2) + floor(2.7) + ceil(0.2)", nil, 2},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := numeric.Evaluate(c.in, c.scope)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", c.in, err)
			}
			if math.Abs(got-c.want) > 1e-12 {
				t.Errorf("want %v, got %v", c.want, got)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	if _, err := numeric.Evaluate("x + 1", nil); err == nil || !strings.Contains(err.Error(), "undefined symbol: x") {
		t.Errorf("want undefined symbol error, got %v", err)
	}
	if _, err := numeric.Evaluate("1/0", nil); err == nil || !strings.Contains(err.Error(), "not a finite number") {
		t.Errorf("want non-finite error, got %v", err)
	}
	if _, err := numeric.Evaluate("sqrt(-1)", nil); err == nil {
		t.Error("sqrt(-1): expected error")
	}
}

// ============================================================
// Derivative
// ============================================================

func TestEngine_Derivative(t *testing.T) {
	eng := numeric.NewEngine()
	cases := []struct{ in, want string }{
		{"x^2", "2 * x"},
		{"x^3 + 2x", "3 * x ^ 2 + 2"},
		{"sin(x)", "cos(x)"},
		{"5", "0"},
		{"exp(2x)", "2 * exp(2 * x)"},
		{"ln(x)", "1 / x"},
		{"y*x", "y"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := eng.Derivative(c.in, "x")
			if err != nil {
				t.Fatalf("Derivative(%q): %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestDerivative_MatchesFiniteDifference(t *testing.T) {
	exprs := []string{"x^x", "tan(x)", "sqrt(x)", "atan(x^2)", "2^x", "x/(x+1)"}
	for _, src := range exprs {
		n, err := numeric.Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		d, err := numeric.Derivative(n, "x")
		if err != nil {
			t.Fatalf("Derivative(%q): %v", src, err)
		}
		const x0, h = 0.7, 1e-6
		got, err := numeric.EvaluateNode(d, map[string]float64{"x": x0})
		if err != nil {
			t.Fatalf("evaluate derivative of %q: %v", src, err)
		}
		hi, _ := numeric.EvaluateNode(n, map[string]float64{"x": x0 + h})
		lo, _ := numeric.EvaluateNode(n, map[string]float64{"x": x0 - h})
		if want := (hi - lo) / (2 * h); math.Abs(got-want) > 1e-5 {
			t.Errorf("%s: want %v, got %v", src, want, got)
		}
	}
}

// ============================================================
// Simplify
// ============================================================

func TestSimplify(t *testing.T) {
	cases := []struct {
		in    string
		exact bool
		want  string
	}{
		{"x + 0", true, "x"},
		{"x * 1", true, "x"},
		{"0 * x", true, "0"},
		{"x - x", true, "0"},
		{"x + x", true, "2 * x"},
		{"x / x", true, "1"},
		{"x^0", true, "1"},
		{"--x", true, "x"},
		{"2 + 3 * 4", true, "14"},
		{"2 * (3 * x)", true, "6 * x"},
		{"1/3 + 1/6", true, "1 / 2"},
		{"1/3 + 1/6", false, "0.5"},
		{"x * 2", false, "2 * x"},
	}
	eng := numeric.NewEngine()
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := eng.Simplify(c.in, c.exact)
			if err != nil {
				t.Fatalf("Simplify(%q): %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestEngine_Evaluate(t *testing.T) {
	eng := numeric.NewEngine()
	if got, err := eng.Evaluate("2+3*4"); err != nil || got != "14" {
		t.Errorf("want 14, got %q (%v)", got, err)
	}
	if got, err := eng.Evaluate("1/4"); err != nil || got != "0.25" {
		t.Errorf("want 0.25, got %q (%v)", got, err)
	}
	if _, err := eng.Evaluate("x+1"); err == nil {
		t.Error("expected error for free variable")
	}
	v, err := eng.EvaluateAt("x^2", "x", 3)
	if err != nil || v != 9 {
		t.Errorf("want 9, got %v (%v)", v, err)
	}
}
