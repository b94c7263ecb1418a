// Package calc classifies math input, analyses its variables, and runs
// operations against a symbolic and a numeric engine with fallback between
// them. It also solves multi-variable equations parametrically,
// approximates limits numerically and ranks batch results for display.
package calc

// SymbolicEngine is the capability set required from the symbolic backend.
type SymbolicEngine interface {
	Name() string
	Evaluate(expr string) (string, error)
	Differentiate(expr, variable string) (string, error)
	Integrate(expr, variable string) (string, error)
	Simplify(expr string) (string, error)
	Factor(expr string) (string, error)
	Expand(expr string) (string, error)
	// SolveEquation solves expr = 0. Several roots come back as "[r1, r2]".
	// A non-empty result with a TruncatedError is a partial root list.
	SolveEquation(expr, variable string) (string, error)
	Substitute(expr, variable, value string) (string, error)
	Limit(expr, variable, approach string) (string, error)
}

// NumericEngine is the capability set required from the numeric backend.
type NumericEngine interface {
	Name() string
	Evaluate(expr string) (string, error)
	EvaluateAt(expr, variable string, x float64) (float64, error)
	Derivative(expr, variable string) (string, error)
	Simplify(expr string, exactFractions bool) (string, error)
}

// Operation names one of the operations the orchestrator runs.
type Operation string

const (
	OpEvaluate      Operation = "evaluate"
	OpDifferentiate Operation = "differentiate"
	OpIntegrate     Operation = "integrate"
	OpSimplify      Operation = "simplify"
	OpFactor        Operation = "factor"
	OpExpand        Operation = "expand"
	OpSolve         Operation = "solve"
	OpLimit         Operation = "limit"
)

// AllOperations lists every operation in batch order.
var AllOperations = []Operation{
	OpEvaluate, OpDifferentiate, OpIntegrate, OpSimplify,
	OpFactor, OpExpand, OpSolve, OpLimit,
}

// OperationLabels are display names for each operation.
var OperationLabels = map[Operation]string{
	OpEvaluate:      "Evaluate",
	OpDifferentiate: "Derivative",
	OpIntegrate:     "Integral",
	OpSimplify:      "Simplified",
	OpFactor:        "Factored",
	OpExpand:        "Expanded",
	OpSolve:         "Solution",
	OpLimit:         "Limit",
}

// ParseOperation maps a name to an Operation.
func ParseOperation(name string) (Operation, bool) {
	for _, op := range AllOperations {
		if string(op) == name {
			return op, true
		}
	}
	return "", false
}

// ParamValue binds a parameter to a value in a parametric solve.
type ParamValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParametricMetadata describes a multi-variable solve.
type ParametricMetadata struct {
	IsParametric     bool              `json:"isParametric"`
	GeneralSolution  string            `json:"generalSolution,omitempty"`
	SpecificSolution string            `json:"specificSolution,omitempty"`
	Parameters       []string          `json:"parameters"`
	Substitutions    map[string]string `json:"substitutions,omitempty"`
}

// OperationResult is the engine-agnostic outcome of one operation.
type OperationResult struct {
	Success  bool                `json:"success"`
	Value    []string            `json:"value"`
	Steps    []string            `json:"steps"`
	Engine   string              `json:"engine"`
	Warnings []string            `json:"warnings,omitempty"`
	Metadata *ParametricMetadata `json:"metadata,omitempty"`
}

// Text returns the value as a single string; several values are joined
// with ", ".
func (r *OperationResult) Text() string {
	switch len(r.Value) {
	case 0:
		return ""
	case 1:
		return r.Value[0]
	}
	out := r.Value[0]
	for _, v := range r.Value[1:] {
		out += ", " + v
	}
	return out
}

// Direction selects which side a limit is approached from.
type Direction string

const (
	TwoSided  Direction = "both"
	FromLeft  Direction = "left"
	FromRight Direction = "right"
)

// ParseDirection accepts "both", "left", "right" and the shorthands "-"
// and "+". Empty input means two-sided.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "", "both", "two-sided":
		return TwoSided, true
	case "left", "-":
		return FromLeft, true
	case "right", "+":
		return FromRight, true
	}
	return "", false
}

// Request carries the input for a single dispatched operation.
type Request struct {
	Input     string       `json:"input"`
	Variable  string       `json:"variable,omitempty"`
	Approach  string       `json:"approach,omitempty"`
	Direction Direction    `json:"direction,omitempty"`
	Params    []ParamValue `json:"params,omitempty"`
}
