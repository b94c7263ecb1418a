package calc

import (
	"regexp"
	"sort"
	"strings"
)

// NotApplicableRule gives a readable reason for a failed batch entry. When
// is optional and receives the raw input.
type NotApplicableRule struct {
	Operation Operation
	Kind      Kind
	When      func(input string) bool
	Reason    string
}

// NotApplicableReasons is searched in order; the first matching rule wins.
// An empty Operation matches any operation. Entries with no matching rule
// use their error text.
var NotApplicableReasons = []NotApplicableRule{
	{Operation: OpDifferentiate, Kind: KindNoVariable, Reason: "no variable present, cannot differentiate"},
	{Operation: OpIntegrate, Kind: KindNoVariable, Reason: "no variable present, cannot integrate"},
	{Operation: OpSolve, Kind: KindNoVariable, Reason: "no variable present, cannot solve"},
	{Operation: OpSolve, Kind: KindIllFormedEquation, When: func(s string) bool { return !strings.Contains(s, "=") }, Reason: "no equals sign, cannot solve"},
	{Operation: OpSolve, Kind: KindIllFormedEquation, Reason: "more than one equals sign, cannot solve"},
	{Operation: OpSolve, Kind: KindNoSolution, Reason: "equation has no solution"},
	{Operation: OpLimit, Kind: KindNoVariable, Reason: "no variable present, cannot take a limit"},
	{Operation: OpFactor, Kind: KindNoVariable, Reason: "no variable present, nothing to factor"},
	{Operation: OpEvaluate, Kind: KindEngineFailure, When: hasVariable, Reason: "contains variables, cannot evaluate to a number"},
	{Operation: OpIntegrate, Kind: KindEngineFailure, Reason: "no closed-form antiderivative found"},
	{Kind: KindParse, When: func(s string) bool { return strings.Contains(s, "=") }, Reason: "input is an equation; only solve applies"},
}

func hasVariable(s string) bool { return !Analyze(s, "").IsConstant }

// NotApplicable explains why an operation produced no result.
type NotApplicable struct {
	Operation Operation `json:"operation"`
	Reason    string    `json:"reason"`
}

// BatchStats summarises a batch.
type BatchStats struct {
	Total        int     `json:"total"`
	SuccessCount int     `json:"successCount"`
	FailureCount int     `json:"failureCount"`
	TotalTimeMs  float64 `json:"totalTimeMs"`
}

// PrioritizedResults splits a batch into a headline result, supporting
// results and failures.
type PrioritizedResults struct {
	Primary       *BatchEntry     `json:"primary,omitempty"`
	Secondary     []BatchEntry    `json:"secondary"`
	NotApplicable []NotApplicable `json:"notApplicable"`
	Stats         BatchStats      `json:"stats"`
}

var (
	derivativeMarkerRe = regexp.MustCompile(`(?i)[a-z]'|d/d[a-z]`)
	integralMarkerRe   = regexp.MustCompile(`(?i)^\s*(int|integrate|integral)\s*\(|∫`)
)

// HeadlineOperation picks the operation whose result should lead for input.
func HeadlineOperation(input string) Operation {
	switch {
	case derivativeMarkerRe.MatchString(input):
		return OpDifferentiate
	case integralMarkerRe.MatchString(input):
		return OpIntegrate
	case strings.Contains(input, "="):
		return OpSolve
	case hasVariable(input):
		return OpSimplify
	}
	return OpEvaluate
}

// Prioritize ranks the entries of batch for display. It never fails.
func Prioritize(batch *BatchResult, input string) PrioritizedResults {
	out := PrioritizedResults{Secondary: []BatchEntry{}, NotApplicable: []NotApplicable{}}
	if batch == nil || len(batch.Entries) == 0 {
		return out
	}
	entries := batch.Entries
	primary := choosePrimaryEntry(entries, HeadlineOperation(input))
	out.Primary = &entries[primary]

	for i, e := range entries {
		out.Stats.Total++
		out.Stats.TotalTimeMs += e.ExecutionTimeMs
		if e.Success {
			out.Stats.SuccessCount++
		} else {
			out.Stats.FailureCount++
		}
		if i == primary {
			continue
		}
		if e.Success {
			out.Secondary = append(out.Secondary, e)
		} else {
			out.NotApplicable = append(out.NotApplicable, NotApplicable{Operation: e.Operation, Reason: reasonFor(e, input)})
		}
	}
	sort.SliceStable(out.Secondary, func(i, j int) bool {
		return out.Secondary[i].ExecutionTimeMs < out.Secondary[j].ExecutionTimeMs
	})
	return out
}

// choosePrimaryEntry prefers a successful entry for want, then any entry for
// want, then the first success, then the first entry.
func choosePrimaryEntry(entries []BatchEntry, want Operation) int {
	anyWant, firstOK := -1, -1
	for i, e := range entries {
		if e.Operation == want {
			if e.Success {
				return i
			}
			if anyWant < 0 {
				anyWant = i
			}
		}
		if e.Success && firstOK < 0 {
			firstOK = i
		}
	}
	switch {
	case anyWant >= 0:
		return anyWant
	case firstOK >= 0:
		return firstOK
	}
	return 0
}

func reasonFor(e BatchEntry, input string) string {
	for _, r := range NotApplicableReasons {
		if (r.Operation != "" && r.Operation != e.Operation) || r.Kind != e.ErrorKind {
			continue
		}
		if r.When != nil && !r.When(input) {
			continue
		}
		return r.Reason
	}
	if e.Error != "" {
		return e.Error
	}
	return "not applicable"
}
