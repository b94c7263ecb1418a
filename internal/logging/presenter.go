package logging

import (
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/njchilds90/gocalc/calc"
)

var hints = map[calc.Kind]string{
	calc.KindParse:             "check the syntax; use * for products and ^ for powers",
	calc.KindNoVariable:        "the input is a constant; try evaluate instead",
	calc.KindIllFormedEquation: "an equation needs exactly one '='",
	calc.KindNoSolution:        "no real value satisfies the equation",
	calc.KindUnsupported:       "run 'gocalc --help' for the supported operations",
}

// Hint returns a short suggestion for err, or "" when none applies.
func Hint(err error) string {
	var ce *calc.Error
	if errors.As(err, &ce) {
		return hints[ce.Kind]
	}
	return ""
}

// FormatError formats an error for user display.
func FormatError(context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", context, err.Error())
}

// PresentError writes err to w with pterm styling, followed by a hint when
// one is known.
func PresentError(w io.Writer, context string, err error) {
	if err == nil {
		return
	}
	pterm.Fprintln(w, pterm.Error.Sprint(FormatError(context, err)))
	if h := Hint(err); h != "" {
		pterm.Fprintln(w, pterm.NewStyle(pterm.FgGray).Sprint("  hint: "+h))
	}
}
