package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LimitEpsilons are the offsets sampled on each side of a finite approach
// point. The value at the last (smallest) one represents that side.
var LimitEpsilons = []float64{1e-4, 1e-6, 1e-8, 1e-10}

const (
	// LimitTolerance is the relative tolerance for two-sided convergence.
	LimitTolerance = 1e-6
	// InfinityMagnitude stands in for an infinite approach.
	InfinityMagnitude = 1e12
)

// parseApproach returns the approach point and whether it is infinite.
func parseApproach(num NumericEngine, approach string) (float64, bool, error) {
	switch strings.ToLower(strings.TrimSpace(approach)) {
	case "infinity", "inf", "+infinity", "+inf", "∞", "+∞":
		return InfinityMagnitude, true, nil
	case "-infinity", "-inf", "-∞":
		return -InfinityMagnitude, true, nil
	case "":
		return 0, false, fmt.Errorf("approach value is empty")
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(approach), 64); err == nil {
		return f, false, nil
	}
	// Constant expressions such as "pi/2".
	text, err := num.Evaluate(approach)
	if err != nil {
		return 0, false, fmt.Errorf("approach value %q: %w", approach, err)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, fmt.Errorf("approach value %q is not a number", approach)
	}
	return f, false, nil
}

// IsFiniteApproach reports whether approach names a finite point.
func IsFiniteApproach(approach string) bool {
	switch strings.ToLower(strings.TrimSpace(approach)) {
	case "infinity", "inf", "+infinity", "+inf", "∞", "+∞", "-infinity", "-inf", "-∞":
		return false
	}
	return true
}

// ApproximateLimit estimates the limit of expression as variable approaches
// approach from dir by sampling the numeric engine. An infinite approach is
// evaluated once at ±InfinityMagnitude.
func ApproximateLimit(num NumericEngine, expression, variable, approach string, dir Direction) (*OperationResult, error) {
	point, infinite, err := parseApproach(num, approach)
	if err != nil {
		return nil, newError(KindParse, OpLimit, "%v", err)
	}
	eval := func(x float64) (float64, error) {
		v, err := num.EvaluateAt(expression, variable, x)
		if err != nil {
			return 0, &Error{Kind: KindEngineFailure, Op: OpLimit, Causes: []EngineFailure{{Engine: num.Name(), Err: err}}}
		}
		return v, nil
	}
	header := fmt.Sprintf("lim %s->%s %s", variable, approach, expression)
	res := &OperationResult{Success: true, Engine: num.Name()}

	if infinite {
		v, err := eval(point)
		if err != nil {
			return nil, err
		}
		value := formatLimitValue(v)
		res.Value = []string{value}
		res.Steps = []string{header, fmt.Sprintf("Evaluate at %s = %g", variable, point), "Limit ≈ " + value}
		return res, nil
	}

	side := func(sign float64) (float64, error) {
		var last float64
		for _, eps := range LimitEpsilons {
			v, err := eval(point + sign*eps)
			if err != nil {
				return 0, err
			}
			last = v
		}
		return last, nil
	}
	smallest := LimitEpsilons[len(LimitEpsilons)-1]

	switch dir {
	case FromLeft, FromRight:
		sign, name := -1.0, "left"
		if dir == FromRight {
			sign, name = 1, "right"
		}
		v, err := side(sign)
		if err != nil {
			return nil, err
		}
		value := formatLimitValue(v)
		res.Value = []string{value}
		res.Steps = []string{header, fmt.Sprintf("Sample from the %s down to ε = %g", name, smallest), "Limit ≈ " + value}
		return res, nil
	}

	left, err := side(-1)
	if err != nil {
		return nil, err
	}
	right, err := side(1)
	if err != nil {
		return nil, err
	}
	ls, rs := formatLimitValue(left), formatLimitValue(right)
	res.Steps = []string{header, fmt.Sprintf("Sample both sides down to ε = %g", smallest), fmt.Sprintf("Left ≈ %s, right ≈ %s", ls, rs)}
	if !converged(left, right) {
		res.Value = []string{fmt.Sprintf("left: %s, right: %s", ls, rs)}
		res.Warnings = append(res.Warnings, "one-sided limits differ; the two-sided limit may not exist")
		res.Steps = append(res.Steps, "One-sided values differ")
		return res, nil
	}
	value := formatLimitValue((left + right) / 2)
	res.Value = []string{value}
	res.Steps = append(res.Steps, "Limit ≈ "+value)
	return res, nil
}

func converged(left, right float64) bool {
	scale := math.Max(math.Max(math.Abs(left), math.Abs(right)), 1)
	return math.Abs(left-right) <= LimitTolerance*scale
}

// formatLimitValue rounds to the nearest integer within LimitTolerance and
// otherwise prints 10 significant digits.
func formatLimitValue(v float64) string {
	if r := math.Round(v); math.Abs(v-r) <= LimitTolerance {
		if r == 0 {
			return "0"
		}
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return trimZeros(strconv.FormatFloat(v, 'g', 10, 64))
}

// trimZeros drops trailing fractional zeros, keeping any exponent.
func trimZeros(s string) string {
	mant, exp := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, exp = s[:i], s[i:]
	}
	if strings.Contains(mant, ".") {
		mant = strings.TrimRight(strings.TrimRight(mant, "0"), ".")
	}
	return mant + exp
}
