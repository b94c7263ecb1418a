package calc

import (
	"regexp"
	"sort"
)

// VariablePriority decides which variable is solved for when the caller
// does not name one.
var VariablePriority = []string{"x", "y", "z", "t", "u", "v", "w"}

// FunctionDenylist holds names that are never variables: function and
// operator names and the constants pi and e.
var FunctionDenylist = map[string]bool{
	"sin": true, "cos": true, "tan": true, "log": true, "ln": true,
	"exp": true, "sqrt": true, "abs": true, "floor": true, "ceil": true,
	"asin": true, "acos": true, "atan": true, "sinh": true, "cosh": true,
	"tanh": true, "sign": true, "det": true, "inv": true, "transpose": true,
	"trace": true, "pi": true, "e": true,
	"diff": true, "derivative": true, "int": true, "integrate": true,
	"integral": true, "lim": true, "limit": true,
}

// VariableAnalysis classifies the free variables of an expression.
type VariableAnalysis struct {
	AllVariables         []string `json:"allVariables"`
	PrimaryVariable      string   `json:"primaryVariable"`
	Parameters           []string `json:"parameters"`
	HasMultipleVariables bool     `json:"hasMultipleVariables"`
	IsConstant           bool     `json:"isConstant"`
}

var identRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_]*`)

// exponentRe matches the exponent part of a number such as 2e10.
var exponentRe = regexp.MustCompile(`^[eE][0-9]+$`)

// Analyze extracts the variables of expression in first-seen order and picks
// the primary one. preferred wins when it occurs in the expression; otherwise
// the first name of VariablePriority that occurs, else the lexicographically
// smallest.
func Analyze(expression, preferred string) VariableAnalysis {
	vars := extractVariables(expression)
	if len(vars) == 0 {
		return VariableAnalysis{AllVariables: []string{}, Parameters: []string{}, IsConstant: true}
	}
	primary := choosePrimary(vars, preferred)
	params := make([]string, 0, len(vars)-1)
	for _, v := range vars {
		if v != primary {
			params = append(params, v)
		}
	}
	return VariableAnalysis{
		AllVariables:         vars,
		PrimaryVariable:      primary,
		Parameters:           params,
		HasMultipleVariables: len(vars) > 1,
	}
}

func extractVariables(expression string) []string {
	seen := map[string]bool{}
	var vars []string
	for _, loc := range identRe.FindAllStringIndex(expression, -1) {
		name := expression[loc[0]:loc[1]]
		if loc[0] > 0 && exponentRe.MatchString(name) {
			if c := expression[loc[0]-1]; (c >= '0' && c <= '9') || c == '.' {
				continue
			}
		}
		if FunctionDenylist[name] || seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}

func choosePrimary(vars []string, preferred string) string {
	present := make(map[string]bool, len(vars))
	for _, v := range vars {
		present[v] = true
	}
	if preferred != "" && present[preferred] {
		return preferred
	}
	for _, p := range VariablePriority {
		if present[p] {
			return p
		}
	}
	sorted := append([]string(nil), vars...)
	sort.Strings(sorted)
	return sorted[0]
}
