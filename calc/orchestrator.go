package calc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Backend names one of the two engines.
type Backend string

const (
	BackendSymbolic Backend = "symbolic"
	BackendNumeric  Backend = "numeric"
)

// FallbackTable lists, per operation, the engines tried in order. Solve and
// limit have extra routing on top of their single entry.
var FallbackTable = map[Operation][]Backend{
	OpEvaluate:      {BackendNumeric, BackendSymbolic},
	OpDifferentiate: {BackendSymbolic, BackendNumeric},
	OpSimplify:      {BackendSymbolic, BackendNumeric},
	OpFactor:        {BackendSymbolic, BackendNumeric},
	OpExpand:        {BackendSymbolic, BackendNumeric},
	OpIntegrate:     {BackendSymbolic},
	OpLimit:         {BackendSymbolic},
	OpSolve:         {BackendSymbolic},
}

// variableOps need at least one variable in the input.
var variableOps = map[Operation]bool{
	OpDifferentiate: true,
	OpIntegrate:     true,
	OpLimit:         true,
	OpFactor:        true,
	OpSolve:         true,
}

// Orchestrator runs operations against both engines with fallback.
type Orchestrator struct {
	sym        SymbolicEngine
	num        NumericEngine
	parametric *ParametricSolver
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger; the default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer sets the tracer; the default comes from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// New returns an orchestrator over the given engines.
func New(sym SymbolicEngine, num NumericEngine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sym:    sym,
		num:    num,
		logger: slog.Default(),
		tracer: otel.Tracer("github.com/njchilds90/gocalc/calc"),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.parametric = NewParametricSolver(sym, o.logger)
	return o
}

// Parametric returns the solver used for multi-variable equations.
func (o *Orchestrator) Parametric() *ParametricSolver { return o.parametric }

// Run dispatches op with the arguments in req.
func (o *Orchestrator) Run(ctx context.Context, op Operation, req Request) (*OperationResult, error) {
	switch op {
	case OpEvaluate:
		return o.Evaluate(ctx, req.Input)
	case OpDifferentiate:
		return o.Differentiate(ctx, req.Input, req.Variable)
	case OpIntegrate:
		return o.Integrate(ctx, req.Input, req.Variable)
	case OpSimplify:
		return o.Simplify(ctx, req.Input)
	case OpFactor:
		return o.Factor(ctx, req.Input)
	case OpExpand:
		return o.Expand(ctx, req.Input)
	case OpSolve:
		return o.Solve(ctx, req.Input, req.Variable, req.Params)
	case OpLimit:
		return o.Limit(ctx, req.Input, req.Variable, req.Approach, req.Direction)
	}
	return nil, newError(KindUnsupported, op, "unknown operation")
}

// AutoResult is the outcome of Auto.
type AutoResult struct {
	Intent    ParsedIntent     `json:"intent"`
	Unwrapped Unwrapped        `json:"unwrapped"`
	Result    *OperationResult `json:"result"`
}

// Auto classifies input, strips any operator notation and runs the
// resulting operation.
func (o *Orchestrator) Auto(ctx context.Context, input string) (*AutoResult, error) {
	out := &AutoResult{Intent: Classify(input), Unwrapped: Unwrap(input)}
	u := out.Unwrapped
	req := Request{Input: u.Expr, Variable: u.Variable, Approach: u.Approach}
	res, err := o.Run(ctx, u.Operation, req)
	if err != nil {
		return out, err
	}
	out.Result = res
	return out, nil
}

// Evaluate computes a number, trying the numeric engine first.
func (o *Orchestrator) Evaluate(ctx context.Context, input string) (*OperationResult, error) {
	return o.dispatch(ctx, OpEvaluate, input, "")
}

// Differentiate returns the derivative with respect to variable, or to the
// primary variable when variable is empty or absent.
func (o *Orchestrator) Differentiate(ctx context.Context, input, variable string) (*OperationResult, error) {
	return o.dispatch(ctx, OpDifferentiate, input, variable)
}

// Integrate returns an antiderivative. There is no numeric fallback.
func (o *Orchestrator) Integrate(ctx context.Context, input, variable string) (*OperationResult, error) {
	return o.dispatch(ctx, OpIntegrate, input, variable)
}

func (o *Orchestrator) Simplify(ctx context.Context, input string) (*OperationResult, error) {
	return o.dispatch(ctx, OpSimplify, input, "")
}

// Factor factors input. The numeric fallback only simplifies and says so
// in a warning.
func (o *Orchestrator) Factor(ctx context.Context, input string) (*OperationResult, error) {
	return o.dispatch(ctx, OpFactor, input, "")
}

func (o *Orchestrator) Expand(ctx context.Context, input string) (*OperationResult, error) {
	return o.dispatch(ctx, OpExpand, input, "")
}

// Solve solves an equation. Equations with several variables go through the
// parametric solver; params are substituted in order.
func (o *Orchestrator) Solve(ctx context.Context, input, variable string, params []ParamValue) (_ *OperationResult, err error) {
	ctx, span := o.start(ctx, OpSolve, variable)
	defer func() { o.finish(span, err) }()

	a := Analyze(input, variable)
	if a.IsConstant {
		return nil, newError(KindNoVariable, OpSolve, "no variable present")
	}
	lhs, rhs, err := splitEquation(strings.Join(strings.Fields(input), ""))
	if err != nil {
		return nil, err
	}
	if a.HasMultipleVariables {
		return o.solveParametric(ctx, input, a, params, span)
	}

	x := a.PrimaryVariable
	out, err := o.sym.SolveEquation("("+lhs+")-("+rhs+")", x)
	var warnings []string
	if err != nil && out != "" && IsTruncated(err) {
		warnings = append(warnings, err.Error())
		err = nil
	}
	if err != nil {
		o.logger.DebugContext(ctx, "engine attempt failed", "operation", OpSolve, "engine", o.sym.Name(), "error", err)
		return nil, solveError(o.sym.Name(), err)
	}
	roots := splitRoots(out)
	steps := []string{"Equation: " + input, "Solve for " + x}
	for _, r := range roots {
		steps = append(steps, x+" = "+r)
	}
	span.SetAttributes(attribute.String("calc.engine", o.sym.Name()))
	return &OperationResult{Success: true, Value: roots, Steps: steps, Engine: o.sym.Name(), Warnings: warnings}, nil
}

func (o *Orchestrator) solveParametric(ctx context.Context, input string, a VariableAnalysis, params []ParamValue, span trace.Span) (*OperationResult, error) {
	sol, err := o.parametric.SolveParametric(ctx, input, a.PrimaryVariable, params)
	if err != nil {
		return nil, err
	}
	x := a.PrimaryVariable
	names := normalizeNames(a.Parameters)
	meta := &ParametricMetadata{
		IsParametric:     true,
		GeneralSolution:  sol.GeneralSolution,
		SpecificSolution: sol.SpecificSolution,
		Parameters:       names,
		Substitutions:    sol.Substitutions,
	}
	steps := []string{
		"Equation: " + input,
		fmt.Sprintf("Solve for %s in terms of %s", x, strings.Join(names, ", ")),
		fmt.Sprintf("General solution: %s = %s", x, sol.GeneralSolution),
	}
	value := sol.GeneralSolution
	if sol.SpecificSolution != "" {
		var subs []string
		for _, pv := range params {
			if v, ok := sol.Substitutions[pv.Name]; ok {
				subs = append(subs, pv.Name+" = "+v)
			}
		}
		steps = append(steps,
			"Substitute "+strings.Join(subs, ", "),
			fmt.Sprintf("Specific solution: %s = %s", x, sol.SpecificSolution))
		value = sol.SpecificSolution
	}
	span.SetAttributes(
		attribute.String("calc.engine", o.sym.Name()),
		attribute.Bool("calc.parametric", true),
	)
	return &OperationResult{
		Success:  true,
		Value:    []string{value},
		Steps:    steps,
		Engine:   o.sym.Name(),
		Metadata: meta,
	}, nil
}

// Limit takes the limit of input as variable approaches approach. Two-sided
// finite limits are computed symbolically; one-sided and infinite ones are
// approximated numerically. A two-sided limit the symbolic engine refuses,
// such as a jump or an indeterminate power, is approximated as well and
// carries the engine's reason as a warning.
func (o *Orchestrator) Limit(ctx context.Context, input, variable, approach string, dir Direction) (*OperationResult, error) {
	if dir == "" {
		dir = TwoSided
	}
	if approach == "" {
		approach = "0"
	}
	if dir != TwoSided || !IsFiniteApproach(approach) {
		return o.approximateLimit(ctx, input, variable, approach, dir)
	}

	req := Request{Input: input, Variable: variable, Approach: approach}
	res, err := o.run(ctx, OpLimit, req)
	var ce *Error
	if err == nil || !errors.As(err, &ce) || ce.Kind != KindEngineFailure {
		return res, err
	}
	approx, aerr := o.approximateLimit(ctx, input, variable, approach, dir)
	if aerr != nil {
		return nil, err
	}
	var warnings []string
	for _, f := range ce.Causes {
		warnings = append(warnings, fmt.Sprintf("%s engine failed: %v", f.Engine, f.Err))
	}
	approx.Warnings = append(warnings, approx.Warnings...)
	o.logger.WarnContext(ctx, "fallback engine used", "operation", OpLimit, "from", BackendSymbolic, "to", approx.Engine, "reason", err)
	return approx, nil
}

func (o *Orchestrator) approximateLimit(ctx context.Context, input, variable, approach string, dir Direction) (_ *OperationResult, err error) {
	ctx, span := o.start(ctx, OpLimit, variable)
	defer func() { o.finish(span, err) }()
	a := Analyze(input, variable)
	if a.IsConstant {
		return nil, newError(KindNoVariable, OpLimit, "no variable present")
	}
	span.SetAttributes(attribute.String("calc.direction", string(dir)))
	res, err := ApproximateLimit(o.num, input, a.PrimaryVariable, approach, dir)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("calc.engine", res.Engine))
	o.logger.DebugContext(ctx, "limit approximated", "input", input, "approach", approach, "direction", dir, "value", res.Text())
	return res, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, op Operation, input, variable string) (*OperationResult, error) {
	return o.run(ctx, op, Request{Input: input, Variable: variable})
}

// run tries each engine of FallbackTable[op] in order. Earlier failures
// become warnings on a later success; if every engine fails the error joins
// all of their reasons.
func (o *Orchestrator) run(ctx context.Context, op Operation, req Request) (_ *OperationResult, err error) {
	ctx, span := o.start(ctx, op, req.Variable)
	defer func() { o.finish(span, err) }()

	if strings.TrimSpace(req.Input) == "" {
		return nil, newError(KindParse, op, "empty input")
	}
	if variableOps[op] {
		a := Analyze(req.Input, req.Variable)
		if a.IsConstant {
			return nil, newError(KindNoVariable, op, "no variable present")
		}
		req.Variable = a.PrimaryVariable
	}

	var failures []EngineFailure
	for i, b := range FallbackTable[op] {
		value, err := o.attempt(op, b, req)
		if err != nil {
			o.logger.DebugContext(ctx, "engine attempt failed", "operation", op, "engine", b, "error", err)
			failures = append(failures, EngineFailure{Engine: string(b), Err: err})
			continue
		}
		res := &OperationResult{
			Success: true,
			Value:   []string{value},
			Steps:   operationSteps(op, req, value),
			Engine:  string(b),
		}
		for _, f := range failures {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s engine failed: %v", f.Engine, f.Err))
		}
		if i > 0 {
			o.logger.WarnContext(ctx, "fallback engine used",
				"operation", op, "from", failures[0].Engine, "to", b, "reason", failures[0].Err)
		}
		if op == OpFactor && b == BackendNumeric {
			res.Warnings = append(res.Warnings, "factoring not performed; the expression was simplified instead")
		}
		span.SetAttributes(
			attribute.String("calc.engine", string(b)),
			attribute.Bool("calc.fallback", i > 0),
		)
		return res, nil
	}
	return nil, wrapError(op, failures)
}

// attempt runs op on one engine.
func (o *Orchestrator) attempt(op Operation, b Backend, req Request) (string, error) {
	in, v := req.Input, req.Variable
	if b == BackendNumeric {
		switch op {
		case OpEvaluate:
			return o.num.Evaluate(in)
		case OpDifferentiate:
			return o.num.Derivative(in, v)
		case OpSimplify, OpFactor:
			return o.num.Simplify(in, true)
		case OpExpand:
			return o.num.Simplify(in, false)
		}
		return "", newError(KindUnsupported, op, "numeric engine cannot %s", op)
	}
	switch op {
	case OpEvaluate:
		return o.sym.Evaluate(in)
	case OpDifferentiate:
		return o.sym.Differentiate(in, v)
	case OpIntegrate:
		return o.sym.Integrate(in, v)
	case OpSimplify:
		return o.sym.Simplify(in)
	case OpFactor:
		return o.sym.Factor(in)
	case OpExpand:
		return o.sym.Expand(in)
	case OpLimit:
		return o.sym.Limit(in, v, req.Approach)
	}
	return "", newError(KindUnsupported, op, "symbolic engine cannot %s", op)
}

func operationSteps(op Operation, req Request, value string) []string {
	in, v := req.Input, req.Variable
	switch op {
	case OpDifferentiate:
		return []string{fmt.Sprintf("f(%s) = %s", v, in), "Differentiate with respect to " + v, fmt.Sprintf("f'(%s) = %s", v, value)}
	case OpIntegrate:
		return []string{fmt.Sprintf("f(%s) = %s", v, in), "Integrate with respect to " + v, fmt.Sprintf("∫ f(%s) d%s = %s + C", v, v, value)}
	case OpLimit:
		return []string{fmt.Sprintf("lim %s->%s %s", v, req.Approach, in), "Evaluate the limit", "Limit = " + value}
	case OpEvaluate:
		return []string{"Expression: " + in, "Evaluate", "Result: " + value}
	case OpSimplify:
		return []string{"Expression: " + in, "Simplify", "Result: " + value}
	case OpFactor:
		return []string{"Expression: " + in, "Factor", "Result: " + value}
	case OpExpand:
		return []string{"Expression: " + in, "Expand", "Result: " + value}
	}
	return []string{in, value}
}

// solveError classifies a solver failure.
func solveError(engine string, err error) *Error {
	e := wrapError(OpSolve, []EngineFailure{{Engine: engine, Err: err}})
	if IsNoSolution(err) {
		e.Kind = KindNoSolution
	}
	return e
}

func (o *Orchestrator) start(ctx context.Context, op Operation, variable string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("calc.operation", string(op))}
	if variable != "" {
		attrs = append(attrs, attribute.String("calc.variable", variable))
	}
	return o.tracer.Start(ctx, "calc."+string(op), trace.WithAttributes(attrs...))
}

func (o *Orchestrator) finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
