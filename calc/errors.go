package calc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/gocalc/internal/lexer"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindParse indicates malformed input reported by an engine.
	KindParse Kind = "parse"
	// KindUnsupported indicates an operation no engine can run.
	KindUnsupported Kind = "unsupported"
	// KindNoVariable indicates an operation that needs a variable got none.
	KindNoVariable Kind = "no_variable"
	// KindIllFormedEquation indicates zero or several '=' signs.
	KindIllFormedEquation Kind = "ill_formed_equation"
	// KindEngineFailure indicates every engine tried has failed.
	KindEngineFailure Kind = "engine_failure"
	// KindNoSolution indicates a solve found nothing.
	KindNoSolution Kind = "no_solution"
)

// Sentinels for errors.Is; an *Error matches the sentinel of its Kind.
var (
	ErrParse             = &Error{Kind: KindParse}
	ErrUnsupported       = &Error{Kind: KindUnsupported}
	ErrNoVariable        = &Error{Kind: KindNoVariable}
	ErrIllFormedEquation = &Error{Kind: KindIllFormedEquation}
	ErrEngineFailure     = &Error{Kind: KindEngineFailure}
	ErrNoSolution        = &Error{Kind: KindNoSolution}
)

// NoSolutionError is implemented by engine errors meaning the equation has
// no roots to report, such as an identity or complex-only roots.
type NoSolutionError interface {
	error
	NoSolution() bool
}

// IsNoSolution reports whether err wraps a NoSolutionError that holds.
func IsNoSolution(err error) bool {
	var ns NoSolutionError
	return errors.As(err, &ns) && ns.NoSolution()
}

// TruncatedError is implemented by engine errors returned alongside a usable
// but incomplete result.
type TruncatedError interface {
	error
	Truncated() bool
}

// IsTruncated reports whether err wraps a TruncatedError that holds.
func IsTruncated(err error) bool {
	var te TruncatedError
	return errors.As(err, &te) && te.Truncated()
}

// EngineFailure records why one engine failed.
type EngineFailure struct {
	Engine string
	Err    error
}

// Error is returned by orchestrator operations.
type Error struct {
	Kind    Kind
	Op      Operation
	Message string
	Causes  []EngineFailure
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Causes) > 0 {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(joinCauses(e.Causes))
	}
	return b.String()
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

// Unwrap exposes the engine errors.
func (e *Error) Unwrap() []error {
	out := make([]error, len(e.Causes))
	for i, c := range e.Causes {
		out[i] = c.Err
	}
	return out
}

func newError(kind Kind, op Operation, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// wrapError builds a terminal failure from every engine attempt. The kind is
// KindParse when each engine rejected the syntax.
func wrapError(op Operation, causes []EngineFailure) *Error {
	kind := KindEngineFailure
	if len(causes) > 0 {
		kind = KindParse
		for _, c := range causes {
			if !isSyntaxError(c.Err) {
				kind = KindEngineFailure
				break
			}
		}
	}
	return &Error{Kind: kind, Op: op, Causes: causes}
}

// joinCauses renders "symbolic: <reason>; numeric: <reason>".
func joinCauses(causes []EngineFailure) string {
	parts := make([]string, len(causes))
	for i, c := range causes {
		parts[i] = c.Engine + ": " + c.Err.Error()
	}
	return strings.Join(parts, "; ")
}

func isSyntaxError(err error) bool {
	var se *lexer.SyntaxError
	return errors.As(err, &se)
}
