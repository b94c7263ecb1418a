package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/toolapi"
)

func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	for _, k := range []string{"GOCALC_LOG_LEVEL", "GOCALC_LOG_FORMAT", "GOCALC_OPERATIONS", "GOCALC_LIMIT_APPROACH", "GOCALC_LIMIT_DIRECTION"} {
		t.Setenv(k, "")
	}
	return base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ============================================================
// Operation commands
// ============================================================

func TestOperationCommands(t *testing.T) {
	isolate(t)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "2+3*4"}, "Evaluate: 14"},
		{[]string{"eval", "2", "+", "3"}, "Evaluate: 5"},
		{[]string{"diff", "--var", "x", "x^3"}, "Derivative: 3*x^2"},
		{[]string{"integrate", "x^2"}, "Integral: x^3/3"},
		{[]string{"expand", "(x+1)^2"}, "Expanded: x^2 + 2*x + 1"},
		{[]string{"solve", "2x+3=7"}, "Solution: 2"},
		{[]string{"limit", "sin(x)/x"}, "Limit: 1"},
		{[]string{"auto", "d/dx(x^2)"}, "Derivative: 2*x"},
	}
	for _, tt := range tests {
		out, err := execute(t, tt.args...)
		if err != nil {
			t.Errorf("%v: %v", tt.args, err)
			continue
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%v: want %q in output, got %q", tt.args, tt.want, out)
		}
	}
}

func TestSolveWithParams(t *testing.T) {
	isolate(t)
	out, err := execute(t, "solve", "x = (-b + sqrt(b^2-4*a*c))/(2*a)", "--var", "x",
		"--param", "a=1", "--param", "b=-5", "--param", "c=6")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Solution: 3") || !strings.Contains(out, "general: ") {
		t.Errorf("want specific and general solutions, got %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--json", "eval", "2^10")
	if err != nil {
		t.Fatal(err)
	}
	var res calc.OperationResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("want JSON, got %q: %v", out, err)
	}
	if res.Text() != "1024" {
		t.Errorf("want 1024, got %s", res.Text())
	}
}

func TestCommandErrors(t *testing.T) {
	isolate(t)
	_, err := execute(t, "solve", "x + 1")
	if !errors.Is(err, calc.ErrIllFormedEquation) {
		t.Errorf("want ErrIllFormedEquation, got %v", err)
	}
	if _, err := execute(t, "limit", "1/x", "--direction", "up"); err == nil {
		t.Error("expected error for bad direction")
	}
	if _, err := execute(t, "solve", "x = a", "--param", "a"); err == nil {
		t.Error("expected error for bad --param")
	}
	if _, err := execute(t, "--log-level", "loud", "eval", "1"); err == nil {
		t.Error("expected error for bad log level")
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"a=1", " b = -2 ", "c="})
	if err != nil {
		t.Fatal(err)
	}
	want := []calc.ParamValue{{Name: "a", Value: "1"}, {Name: "b", Value: "-2"}, {Name: "c", Value: ""}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("param %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
	if _, err := parseParams([]string{"=1"}); err == nil {
		t.Error("expected error for empty name")
	}
}

// ============================================================
// Inspection and batch commands
// ============================================================

func TestClassifyAndAnalyze(t *testing.T) {
	isolate(t)
	out, err := execute(t, "classify", "2x+3=7")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "equation") || !strings.Contains(out, "solve") {
		t.Errorf("want equation/solve, got %q", out)
	}

	out, err = execute(t, "analyze", "a*t + y")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Primary") || !strings.Contains(out, "y") {
		t.Errorf("want primary y, got %q", out)
	}
}

func TestAllCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "all", "2+3*4")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Evaluate", "14", "Not applicable", "no variable present, cannot differentiate", "succeeded in"} {
		if !strings.Contains(out, want) {
			t.Errorf("want %q in output, got %q", want, out)
		}
	}
}

func TestAllCommand_JSONAndOps(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--json", "all", "--ops", "differentiate,integrate", "x^2")
	if err != nil {
		t.Fatal(err)
	}
	var res toolapi.CalculateAllResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("want JSON, got %q: %v", out, err)
	}
	if len(res.Batch.Entries) != 2 {
		t.Errorf("want 2 entries, got %d", len(res.Batch.Entries))
	}
	if res.Prioritized.Primary == nil || res.Prioritized.Primary.Operation != calc.OpDifferentiate {
		t.Errorf("want differentiate first, got %+v", res.Prioritized.Primary)
	}

	if _, err := execute(t, "all", "--ops", "plot", "x"); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestAllCommand_ConfigOperations(t *testing.T) {
	isolate(t)
	t.Setenv("GOCALC_OPERATIONS", "evaluate,simplify")
	out, err := execute(t, "--json", "all", "1+1")
	if err != nil {
		t.Fatal(err)
	}
	var res toolapi.CalculateAllResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Batch.Entries) != 2 {
		t.Errorf("want 2 entries from config, got %d", len(res.Batch.Entries))
	}
}

// ============================================================
// Config command
// ============================================================

func TestConfigCommands(t *testing.T) {
	base := isolate(t)
	want := filepath.Join(base, "gocalc", "config.json")

	out, err := execute(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != want {
		t.Errorf("want %s, got %q", want, out)
	}

	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("want config file written: %v", err)
	}
	if _, err := execute(t, "config", "init"); err == nil {
		t.Error("expected error when the file already exists")
	}
	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Errorf("want --force to overwrite, got %v", err)
	}

	out, err = execute(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"log_level": "info"`) {
		t.Errorf("want the effective config, got %q", out)
	}
}
