package calc

import (
	"regexp"
	"strings"
)

// Unwrapped is operator notation resolved into an operation and its
// arguments.
type Unwrapped struct {
	Operation Operation `json:"operation"`
	Expr      string    `json:"expr"`
	Variable  string    `json:"variable,omitempty"`
	Approach  string    `json:"approach,omitempty"`
}

var (
	dVarRe    = regexp.MustCompile(`(?i)^d/d([a-z][a-z0-9_]*)\s*\(`)
	callRe    = regexp.MustCompile(`(?i)^(diff|derivative|int|integrate|integral|lim|limit)\s*\(`)
	primeFnRe = regexp.MustCompile(`^[A-Za-z]'+\s*\(`)
	intDxRe   = regexp.MustCompile(`^∫\s*(.*?)\s*d([A-Za-z][A-Za-z0-9_]*)\s*$`)
	arrowRe   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(?:->|→)\s*(.+)$`)
)

// Unwrap strips derivative, integral and limit notation such as
// "d/dx(x^2)", "integrate(x, x)", "∫ x dx", "f'(x^2)" or
// "limit(sin(x)/x, x->0)". Input without such notation is returned as is,
// with the operation suggested by Classify.
func Unwrap(input string) Unwrapped {
	s := strings.TrimSpace(input)
	if m := dVarRe.FindStringSubmatchIndex(s); m != nil {
		if inner, ok := enclosed(s, m[1]-1); ok {
			return Unwrapped{Operation: OpDifferentiate, Expr: inner, Variable: s[m[2]:m[3]]}
		}
	}
	if m := primeFnRe.FindStringIndex(s); m != nil {
		if inner, ok := enclosed(s, m[1]-1); ok {
			return Unwrapped{Operation: OpDifferentiate, Expr: inner}
		}
	}
	if m := intDxRe.FindStringSubmatch(s); m != nil && m[1] != "" {
		return Unwrapped{Operation: OpIntegrate, Expr: m[1], Variable: m[2]}
	}
	if m := callRe.FindStringSubmatchIndex(s); m != nil {
		inner, ok := enclosed(s, m[1]-1)
		if ok {
			return unwrapCall(strings.ToLower(s[m[2]:m[3]]), inner)
		}
	}
	return Unwrapped{Operation: Classify(s).SuggestedOperation, Expr: s}
}

func unwrapCall(name, inner string) Unwrapped {
	args := splitTopLevel(inner)
	u := Unwrapped{Expr: args[0]}
	switch name {
	case "diff", "derivative":
		u.Operation = OpDifferentiate
		if len(args) > 1 {
			u.Variable = args[1]
		}
	case "int", "integrate", "integral":
		u.Operation = OpIntegrate
		if len(args) > 1 {
			u.Variable = args[1]
		}
	default:
		u.Operation = OpLimit
		switch {
		case len(args) == 2:
			if m := arrowRe.FindStringSubmatch(args[1]); m != nil {
				u.Variable, u.Approach = m[1], strings.TrimSpace(m[2])
			} else {
				u.Approach = args[1]
			}
		case len(args) > 2:
			u.Variable, u.Approach = args[1], args[2]
		}
	}
	return u
}

// enclosed returns the text between the '(' at open and its matching ')',
// provided that ')' ends s.
func enclosed(s string, open int) (string, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				if i != len(s)-1 {
					return "", false
				}
				return strings.TrimSpace(s[open+1 : i]), true
			}
		}
	}
	return "", false
}

// splitTopLevel splits s on commas that are not nested in parentheses or
// brackets. Parts are trimmed.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// splitRoots turns "[r1, r2]" into its elements; other values are returned
// as a single element.
func splitRoots(value string) []string {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") && !strings.HasPrefix(v, "[[") {
		return splitTopLevel(v[1 : len(v)-1])
	}
	return []string{v}
}
