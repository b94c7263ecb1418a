package calc

import (
	"regexp"
	"strings"
)

// Intent is the kind of input a user typed.
type Intent string

const (
	IntentEquation   Intent = "equation"
	IntentExpression Intent = "expression"
	IntentDerivative Intent = "derivative"
	IntentIntegral   Intent = "integral"
	IntentLimit      Intent = "limit"
	IntentMatrix     Intent = "matrix"
)

// ParsedIntent is the classifier's guess for an input.
type ParsedIntent struct {
	Intent             Intent    `json:"intent"`
	Confidence         float64   `json:"confidence"`
	SuggestedOperation Operation `json:"suggestedOperation"`
	AutoSwitch         bool      `json:"autoSwitch"`
	Reason             string    `json:"reason"`
}

// AutoSwitchThreshold is the minimum confidence for switching modes.
const AutoSwitchThreshold = 0.85

// ClassificationRule pairs a predicate on trimmed input with the intent it
// yields.
type ClassificationRule struct {
	Name   string
	Match  func(input string) bool
	Result ParsedIntent
}

// DeclarationKeywords start inputs whose '=' is an assignment, not an
// equation.
var DeclarationKeywords = []string{"let", "const", "var", "def"}

var (
	derivativePrefixRe = regexp.MustCompile(`(?i)^(d/d[a-z][a-z0-9_]*\s*\(|diff\s*\(|derivative\s*\()`)
	primeRe            = regexp.MustCompile(`[A-Za-z]'+\s*\(`)
	integralPrefixRe   = regexp.MustCompile(`(?i)^(int|integrate|integral)\s*\(`)
	limitPrefixRe      = regexp.MustCompile(`(?i)^(lim|limit)\s*\(`)
	matrixRe           = regexp.MustCompile(`^\[\s*\[.*\]\s*\]`)
	arithmeticRe       = regexp.MustCompile(`^[0-9\s+\-*/^().,%]+$`)
	letterRe           = regexp.MustCompile(`[A-Za-z]`)
)

// ClassificationRules is evaluated in order; the first match wins.
var ClassificationRules = []ClassificationRule{
	{
		Name:   "empty",
		Match:  func(s string) bool { return s == "" },
		Result: ParsedIntent{Intent: IntentExpression, SuggestedOperation: OpEvaluate, Reason: "empty input"},
	},
	{
		Name:   "equation",
		Match:  func(s string) bool { return strings.Contains(s, "=") && !isDeclaration(s) },
		Result: ParsedIntent{Intent: IntentEquation, Confidence: 0.95, SuggestedOperation: OpSolve, AutoSwitch: true, Reason: "contains an equals sign"},
	},
	{
		Name: "derivative operator",
		Match: func(s string) bool {
			return derivativePrefixRe.MatchString(s) || strings.Contains(s, "∂")
		},
		Result: ParsedIntent{Intent: IntentDerivative, Confidence: 0.9, SuggestedOperation: OpDifferentiate, AutoSwitch: true, Reason: "starts with a derivative operator"},
	},
	{
		Name:   "prime notation",
		Match:  primeRe.MatchString,
		Result: ParsedIntent{Intent: IntentDerivative, Confidence: 0.85, SuggestedOperation: OpDifferentiate, AutoSwitch: true, Reason: "uses prime notation"},
	},
	{
		Name: "integral operator",
		Match: func(s string) bool {
			return integralPrefixRe.MatchString(s) || strings.Contains(s, "∫")
		},
		Result: ParsedIntent{Intent: IntentIntegral, Confidence: 0.9, SuggestedOperation: OpIntegrate, AutoSwitch: true, Reason: "starts with an integral operator"},
	},
	{
		Name: "limit operator",
		Match: func(s string) bool {
			return limitPrefixRe.MatchString(s) || strings.Contains(s, "->") || strings.Contains(s, "→")
		},
		Result: ParsedIntent{Intent: IntentLimit, Confidence: 0.85, SuggestedOperation: OpLimit, AutoSwitch: true, Reason: "starts with a limit operator or contains an arrow"},
	},
	{
		Name:   "matrix literal",
		Match:  matrixRe.MatchString,
		Result: ParsedIntent{Intent: IntentMatrix, Confidence: 0.85, SuggestedOperation: OpEvaluate, Reason: "nested bracket literal"},
	},
	{
		Name:   "arithmetic",
		Match:  arithmeticRe.MatchString,
		Result: ParsedIntent{Intent: IntentExpression, Confidence: 0.9, SuggestedOperation: OpEvaluate, Reason: "only numbers and operators"},
	},
	{
		Name:   "symbolic expression",
		Match:  letterRe.MatchString,
		Result: ParsedIntent{Intent: IntentExpression, Confidence: 0.8, SuggestedOperation: OpSimplify, Reason: "contains letters"},
	},
	{
		Name:   "default",
		Match:  func(string) bool { return true },
		Result: ParsedIntent{Intent: IntentExpression, Confidence: 0.7, SuggestedOperation: OpEvaluate, Reason: "no specific pattern"},
	},
}

func isDeclaration(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range DeclarationKeywords {
		if strings.HasPrefix(lower, kw+" ") {
			return true
		}
	}
	return false
}

// Classify guesses what the user wants done with input.
func Classify(input string) ParsedIntent {
	s := strings.TrimSpace(input)
	for _, r := range ClassificationRules {
		if r.Match(s) {
			return r.Result
		}
	}
	return ParsedIntent{Intent: IntentExpression, SuggestedOperation: OpEvaluate}
}

// Mode is the operation a UI is currently set to. ModeAll runs every
// operation.
type Mode string

const ModeAll Mode = "all"

// IsCompatibleMode reports whether a UI in mode current can show a result
// for suggested without switching.
func IsCompatibleMode(current, suggested Mode) bool {
	if current == ModeAll || current == suggested {
		return true
	}
	pair := map[Mode]bool{current: true, suggested: true}
	return pair[Mode(OpEvaluate)] && pair[Mode(OpSimplify)]
}

// ShouldAutoSwitch reports whether a UI in mode current should switch to the
// operation parsed suggests.
func ShouldAutoSwitch(parsed ParsedIntent, current Mode) bool {
	if !parsed.AutoSwitch {
		return false
	}
	if IsCompatibleMode(current, Mode(parsed.SuggestedOperation)) {
		return false
	}
	return parsed.Confidence >= AutoSwitchThreshold
}
