// Package toolapi exposes the calculator as JSON tool calls for agent
// frameworks. Requests name a tool and carry loosely typed params.
package toolapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/njchilds90/gocalc/calc"
)

// ToolRequest is a single tool invocation.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries either a result or an error. String is the plain
// text form of the result when it has one.
type ToolResponse struct {
	Result    interface{} `json:"result,omitempty"`
	String    string      `json:"string,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind calc.Kind   `json:"errorKind,omitempty"`
}

// CalculateAllResult is the result of the calculate_all tool.
type CalculateAllResult struct {
	Batch       *calc.BatchResult       `json:"batch"`
	Prioritized calc.PrioritizedResults `json:"prioritized"`
}

// Defaults fill in calculate_all arguments the caller leaves out.
type Defaults struct {
	Operations []calc.Operation
	Approach   string
	Direction  calc.Direction
}

// Handler runs tool calls against an orchestrator.
type Handler struct {
	orch     *calc.Orchestrator
	defaults Defaults
}

// NewHandler returns a Handler over o.
func NewHandler(o *calc.Orchestrator, d Defaults) *Handler {
	return &Handler{orch: o, defaults: d}
}

func failure(err error) ToolResponse {
	resp := ToolResponse{Error: err.Error()}
	var ce *calc.Error
	if errors.As(err, &ce) {
		resp.ErrorKind = ce.Kind
	}
	return resp
}

// HandleToolCall runs req. Failures are reported in the response, never as
// a Go error.
func (h *Handler) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	optString := func(key string) (string, error) {
		if _, ok := req.Params[key]; !ok {
			return "", nil
		}
		return getString(key)
	}
	// optScalar accepts a string or a number.
	optScalar := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", nil
		}
		switch x := v.(type) {
		case string:
			return x, nil
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		}
		return "", fmt.Errorf("param %s must be a string or number", key)
	}
	getStrings := func(key string) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	getParams := func(key string) ([]calc.ParamValue, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array of {name, value}", key)
		}
		out := make([]calc.ParamValue, 0, len(raw))
		for i, r := range raw {
			m, ok := r.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be an object", key, i)
			}
			name, ok := m["name"].(string)
			if !ok || name == "" {
				return nil, fmt.Errorf("param %s[%d].name must be a non-empty string", key, i)
			}
			var value string
			switch x := m["value"].(type) {
			case string:
				value = x
			case float64:
				value = strconv.FormatFloat(x, 'g', -1, 64)
			case nil:
			default:
				return nil, fmt.Errorf("param %s[%d].value must be a string or number", key, i)
			}
			out = append(out, calc.ParamValue{Name: name, Value: value})
		}
		return out, nil
	}
	getRequest := func() (calc.Request, error) {
		var r calc.Request
		var err error
		if r.Input, err = getString("input"); err != nil {
			return r, err
		}
		if r.Variable, err = optString("variable"); err != nil {
			return r, err
		}
		if r.Approach, err = optScalar("approach"); err != nil {
			return r, err
		}
		dir, err := optString("direction")
		if err != nil {
			return r, err
		}
		d, ok := calc.ParseDirection(dir)
		if !ok {
			return r, fmt.Errorf("param direction must be one of both, left, right")
		}
		r.Direction = d
		if r.Params, err = getParams("params"); err != nil {
			return r, err
		}
		return r, nil
	}
	respond := func(res *calc.OperationResult, err error) ToolResponse {
		if err != nil {
			return failure(err)
		}
		return ToolResponse{Result: res, String: res.Text()}
	}

	if op, ok := calc.ParseOperation(req.Tool); ok {
		r, err := getRequest()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(h.orch.Run(ctx, op, r))
	}

	switch req.Tool {
	case "auto":
		in, err := getString("input")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		out, err := h.orch.Auto(ctx, in)
		if err != nil {
			resp := failure(err)
			resp.Result = out
			return resp
		}
		return ToolResponse{Result: out, String: out.Result.Text()}

	case "classify":
		in, err := getString("input")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		p := calc.Classify(in)
		return ToolResponse{Result: p, String: string(p.Intent)}

	case "analyze":
		in, err := getString("input")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		pref, err := optString("variable")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		a := calc.Analyze(in, pref)
		return ToolResponse{Result: a, String: a.PrimaryVariable}

	case "solve_parametric_all":
		in, err := getString("input")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		target, err := optString("variable")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		roots, err := h.orch.Parametric().SolveParametricAll(in, target)
		if err != nil {
			return failure(err)
		}
		res := &calc.OperationResult{Success: true, Value: roots}
		return ToolResponse{Result: roots, String: res.Text()}

	case "calculate_all":
		r, err := getRequest()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		names, err := getStrings("operations")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		ops := h.defaults.Operations
		if names != nil {
			ops = make([]calc.Operation, 0, len(names))
			for _, n := range names {
				op, ok := calc.ParseOperation(n)
				if !ok {
					return ToolResponse{Error: fmt.Sprintf("unknown operation: %s", n)}
				}
				ops = append(ops, op)
			}
		}
		if r.Approach == "" {
			r.Approach = h.defaults.Approach
		}
		if _, set := req.Params["direction"]; !set && h.defaults.Direction != "" {
			r.Direction = h.defaults.Direction
		}
		batch := h.orch.CalculateAll(ctx, r, ops)
		pr := calc.Prioritize(batch, r.Input)
		resp := ToolResponse{Result: CalculateAllResult{Batch: batch, Prioritized: pr}}
		if pr.Primary != nil && pr.Primary.Success {
			resp.String = pr.Primary.Result.Text()
		}
		return resp

	case "mcp_spec":
		return ToolResponse{Result: json.RawMessage(ToolSpec())}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}
