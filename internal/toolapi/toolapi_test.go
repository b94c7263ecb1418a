package toolapi_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/toolapi"
	"github.com/njchilds90/gocalc/numeric"
	"github.com/njchilds90/gocalc/symbolic"
)

func newHandler() *toolapi.Handler {
	o := calc.New(symbolic.NewEngine(), numeric.NewEngine())
	return toolapi.NewHandler(o, toolapi.Defaults{Approach: "0", Direction: calc.TwoSided})
}

// decode round-trips a request through JSON so params have the types an
// HTTP client would produce.
func decode(t *testing.T, body string) toolapi.ToolRequest {
	t.Helper()
	var req toolapi.ToolRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	return req
}

func call(t *testing.T, body string) toolapi.ToolResponse {
	t.Helper()
	return newHandler().HandleToolCall(context.Background(), decode(t, body))
}

// ============================================================
// Operations
// ============================================================

func TestHandleToolCall_Operations(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"tool":"evaluate","params":{"input":"2+3*4"}}`, "14"},
		{`{"tool":"differentiate","params":{"input":"x^3"}}`, "3*x^2"},
		{`{"tool":"differentiate","params":{"input":"x*y","variable":"y"}}`, "x"},
		{`{"tool":"integrate","params":{"input":"x^2","variable":"x"}}`, "x^3/3"},
		{`{"tool":"expand","params":{"input":"(x+1)^2"}}`, "x^2 + 2*x + 1"},
		{`{"tool":"solve","params":{"input":"x^2 = 4"}}`, "-2, 2"},
		{`{"tool":"limit","params":{"input":"sin(x)/x","approach":0}}`, "1"},
		{`{"tool":"limit","params":{"input":"1/x","approach":"inf","direction":"both"}}`, "0"},
	}
	for _, tt := range tests {
		resp := call(t, tt.body)
		if resp.Error != "" {
			t.Errorf("%s: unexpected error %s", tt.body, resp.Error)
			continue
		}
		if resp.String != tt.want {
			t.Errorf("%s: want %s, got %s", tt.body, tt.want, resp.String)
		}
		if _, ok := resp.Result.(*calc.OperationResult); !ok {
			t.Errorf("%s: want an OperationResult, got %T", tt.body, resp.Result)
		}
	}
}

func TestHandleToolCall_SolveParams(t *testing.T) {
	resp := call(t, `{"tool":"solve","params":{
		"input":"x = (-b + sqrt(b^2-4*a*c))/(2*a)",
		"variable":"x",
		"params":[{"name":"a","value":1},{"name":"b","value":"-5"},{"name":"c","value":6}]}}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "3" {
		t.Errorf("want 3, got %s", resp.String)
	}
	res := resp.Result.(*calc.OperationResult)
	if res.Metadata == nil || !res.Metadata.IsParametric {
		t.Errorf("want parametric metadata, got %+v", res.Metadata)
	}
}

func TestHandleToolCall_Errors(t *testing.T) {
	tests := []struct {
		body string
		want string
		kind calc.Kind
	}{
		{`{"tool":"evaluate","params":{}}`, "missing param: input", ""},
		{`{"tool":"evaluate","params":{"input":3}}`, "param input must be a string", ""},
		{`{"tool":"limit","params":{"input":"x","direction":"up"}}`, "param direction", ""},
		{`{"tool":"solve","params":{"input":"x","params":{"a":1}}}`, "must be array", ""},
		{`{"tool":"solve","params":{"input":"x","params":[{"value":1}]}}`, "name must be a non-empty string", ""},
		{`{"tool":"solve","params":{"input":"x + 1"}}`, "no equals sign", calc.KindIllFormedEquation},
		{`{"tool":"solve","params":{"input":"x = 1 = 2"}}`, "2 equals signs", calc.KindIllFormedEquation},
		{`{"tool":"differentiate","params":{"input":"2+3"}}`, "no variable", calc.KindNoVariable},
		{`{"tool":"plot","params":{}}`, "unknown tool: plot", ""},
		{`{"tool":"calculate_all","params":{"input":"x","operations":["plot"]}}`, "unknown operation: plot", ""},
	}
	for _, tt := range tests {
		resp := call(t, tt.body)
		if !strings.Contains(resp.Error, tt.want) {
			t.Errorf("%s: want error containing %q, got %q", tt.body, tt.want, resp.Error)
		}
		if resp.ErrorKind != tt.kind {
			t.Errorf("%s: want kind %q, got %q", tt.body, tt.kind, resp.ErrorKind)
		}
	}
}

// ============================================================
// Helper tools
// ============================================================

func TestHandleToolCall_ClassifyAnalyze(t *testing.T) {
	resp := call(t, `{"tool":"classify","params":{"input":"2x+3=7"}}`)
	if resp.String != "equation" {
		t.Errorf("want equation, got %s", resp.String)
	}
	resp = call(t, `{"tool":"analyze","params":{"input":"a*t + y","variable":"t"}}`)
	a, ok := resp.Result.(calc.VariableAnalysis)
	if !ok {
		t.Fatalf("want VariableAnalysis, got %T", resp.Result)
	}
	if resp.String != "t" || len(a.AllVariables) != 3 {
		t.Errorf("want primary t of 3 variables, got %+v", a)
	}
}

func TestHandleToolCall_Auto(t *testing.T) {
	resp := call(t, `{"tool":"auto","params":{"input":"d/dx(x^2)"}}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "2*x" {
		t.Errorf("want 2*x, got %s", resp.String)
	}
	out := resp.Result.(*calc.AutoResult)
	if out.Intent.Intent != calc.IntentDerivative || out.Unwrapped.Expr != "x^2" {
		t.Errorf("want derivative of x^2, got %+v", out)
	}
}

func TestHandleToolCall_SolveParametricAll(t *testing.T) {
	resp := call(t, `{"tool":"solve_parametric_all","params":{"input":"x + a = b","variable":"x"}}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	roots, ok := resp.Result.([]string)
	if !ok || len(roots) != 1 {
		t.Fatalf("want one root, got %#v", resp.Result)
	}
}

func TestHandleToolCall_CalculateAll(t *testing.T) {
	resp := call(t, `{"tool":"calculate_all","params":{"input":"2+3*4"}}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	out, ok := resp.Result.(toolapi.CalculateAllResult)
	if !ok {
		t.Fatalf("want CalculateAllResult, got %T", resp.Result)
	}
	if len(out.Batch.Entries) != len(calc.AllOperations) {
		t.Errorf("want %d entries, got %d", len(calc.AllOperations), len(out.Batch.Entries))
	}
	if out.Prioritized.Primary == nil || out.Prioritized.Primary.Operation != calc.OpEvaluate {
		t.Errorf("want evaluate as primary, got %+v", out.Prioritized.Primary)
	}
	if resp.String != "14" {
		t.Errorf("want 14, got %s", resp.String)
	}

	resp = call(t, `{"tool":"calculate_all","params":{"input":"x^2","operations":["differentiate","integrate"]}}`)
	out = resp.Result.(toolapi.CalculateAllResult)
	if len(out.Batch.Entries) != 2 {
		t.Errorf("want 2 entries, got %d", len(out.Batch.Entries))
	}
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(toolapi.ToolSpec()), &spec); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range spec.Tools {
		names[tool.Name] = true
	}
	for _, op := range calc.AllOperations {
		if !names[string(op)] {
			t.Errorf("tool %s missing from schema", op)
		}
	}
	resp := call(t, `{"tool":"mcp_spec","params":{}}`)
	if resp.Error != "" || resp.Result == nil {
		t.Errorf("want the schema, got %+v", resp)
	}
}
