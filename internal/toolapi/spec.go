package toolapi

import "encoding/json"

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// ToolSpec returns the JSON schema of every tool, for agent registration.
func ToolSpec() string {
	in := map[string]string{"input": "string"}
	withVar := map[string]string{"input": "string", "variable": "string"}
	tools := []map[string]interface{}{
		ts("evaluate", "Evaluate an expression to a number; matrix literals are evaluated symbolically", []string{"input"}, in),
		ts("differentiate", "Derivative with respect to variable (defaults to the primary variable)", []string{"input"}, withVar),
		ts("integrate", "Indefinite integral, symbolic only", []string{"input"}, withVar),
		ts("simplify", "Simplify an expression", []string{"input"}, in),
		ts("factor", "Factor a polynomial over the rationals", []string{"input"}, in),
		ts("expand", "Expand products and integer powers", []string{"input"}, in),
		ts("solve", "Solve an equation with exactly one '='. Optional params: [{name, value}] for parametric solving",
			[]string{"input"}, map[string]string{"input": "string", "variable": "string", "params": "array"}),
		ts("limit", "Limit as variable approaches approach. direction is both, left or right; approach may be inf or -inf",
			[]string{"input"}, map[string]string{"input": "string", "variable": "string", "approach": "string", "direction": "string"}),
		ts("auto", "Classify the input, strip operator notation such as d/dx(...) and run the implied operation", []string{"input"}, in),
		ts("classify", "Guess the intent of the input", []string{"input"}, in),
		ts("analyze", "List the variables of the input and choose the primary one", []string{"input"}, withVar),
		ts("solve_parametric_all", "General solutions of a multi-variable equation for variable", []string{"input"}, withVar),
		ts("calculate_all", "Run several operations and rank the results",
			[]string{"input"}, map[string]string{"input": "string", "operations": "array", "approach": "string", "direction": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}
