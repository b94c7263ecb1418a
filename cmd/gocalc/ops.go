package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalc/calc"
)

func (a *app) runOp(cmd *cobra.Command, op calc.Operation, req calc.Request) error {
	res, err := a.orch.Run(cmd.Context(), op, req)
	if err != nil {
		return err
	}
	return a.printResult(op, res)
}

func (a *app) evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "eval <expression>",
		Aliases: []string{"evaluate"},
		Short:   "Evaluate an expression to a number",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOp(cmd, calc.OpEvaluate, calc.Request{Input: joinArgs(args)})
		},
	}
}

func (a *app) diffCmd() *cobra.Command {
	var variable string
	c := &cobra.Command{
		Use:     "diff <expression>",
		Aliases: []string{"differentiate", "derivative"},
		Short:   "Differentiate an expression",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOp(cmd, calc.OpDifferentiate, calc.Request{Input: joinArgs(args), Variable: variable})
		},
	}
	c.Flags().StringVarP(&variable, "var", "v", "", "variable to differentiate by (default: primary variable)")
	return c
}

func (a *app) integrateCmd() *cobra.Command {
	var variable string
	c := &cobra.Command{
		Use:     "integrate <expression>",
		Aliases: []string{"int"},
		Short:   "Find an antiderivative",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOp(cmd, calc.OpIntegrate, calc.Request{Input: joinArgs(args), Variable: variable})
		},
	}
	c.Flags().StringVarP(&variable, "var", "v", "", "variable of integration (default: primary variable)")
	return c
}

func (a *app) simpleCmd(op calc.Operation, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <expression>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOp(cmd, op, calc.Request{Input: joinArgs(args)})
		},
	}
}

// parseParams turns name=value pairs into ordered parameter bindings.
func parseParams(pairs []string) ([]calc.ParamValue, error) {
	out := make([]calc.ParamValue, 0, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: want name=value", p)
		}
		out = append(out, calc.ParamValue{Name: name, Value: strings.TrimSpace(value)})
	}
	return out, nil
}

func (a *app) solveCmd() *cobra.Command {
	var (
		variable string
		pairs    []string
	)
	c := &cobra.Command{
		Use:   "solve <equation>",
		Short: "Solve an equation with exactly one '='",
		Long: `Solve an equation for a variable. With more than one variable the equation is
solved parametrically; --param binds parameters to values, in the order given.`,
		Example: `  gocalc solve "2x + 3 = 7"
  gocalc solve "x = (-b + sqrt(b^2-4*a*c))/(2*a)" --var x --param a=1 --param b=-5 --param c=6`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(pairs)
			if err != nil {
				return err
			}
			return a.runOp(cmd, calc.OpSolve, calc.Request{Input: joinArgs(args), Variable: variable, Params: params})
		},
	}
	c.Flags().StringVarP(&variable, "var", "v", "", "variable to solve for (default: primary variable)")
	c.Flags().StringArrayVarP(&pairs, "param", "p", nil, "parameter binding name=value (repeatable)")
	return c
}

func (a *app) limitCmd() *cobra.Command {
	var variable, approach, direction string
	c := &cobra.Command{
		Use:     "limit <expression>",
		Aliases: []string{"lim"},
		Short:   "Take a limit",
		Example: `  gocalc limit "sin(x)/x" --approach 0
  gocalc limit "1/x" --approach 0 --direction right
  gocalc limit "(2x+1)/x" --approach inf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok := calc.ParseDirection(direction)
			if !ok {
				return fmt.Errorf("invalid --direction %q: want both, left or right", direction)
			}
			req := calc.Request{Input: joinArgs(args), Variable: variable, Approach: approach, Direction: dir}
			return a.runOp(cmd, calc.OpLimit, req)
		},
	}
	c.Flags().StringVarP(&variable, "var", "v", "", "limit variable (default: primary variable)")
	c.Flags().StringVarP(&approach, "approach", "a", "0", "point approached; inf and -inf are accepted")
	c.Flags().StringVarP(&direction, "direction", "d", "both", "both, left or right")
	return c
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <input>",
		Short: "Guess what kind of input this is",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := calc.Classify(joinArgs(args))
			if a.jsonOut {
				return a.printJSON(p)
			}
			a.printFields([][2]string{
				{"Intent", string(p.Intent)},
				{"Confidence", fmt.Sprintf("%.2f", p.Confidence)},
				{"Operation", string(p.SuggestedOperation)},
				{"Auto-switch", fmt.Sprint(p.AutoSwitch)},
				{"Reason", p.Reason},
			})
			return nil
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	var preferred string
	c := &cobra.Command{
		Use:   "analyze <expression>",
		Short: "List variables and choose the primary one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := calc.Analyze(joinArgs(args), preferred)
			if a.jsonOut {
				return a.printJSON(v)
			}
			a.printFields([][2]string{
				{"Variables", strings.Join(v.AllVariables, ", ")},
				{"Primary", v.PrimaryVariable},
				{"Parameters", strings.Join(v.Parameters, ", ")},
				{"Constant", fmt.Sprint(v.IsConstant)},
			})
			return nil
		},
	}
	c.Flags().StringVarP(&preferred, "var", "v", "", "preferred primary variable")
	return c
}

func (a *app) autoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto <input>",
		Short: "Detect the operation from the input and run it",
		Example: `  gocalc auto "d/dx(x^3)"
  gocalc auto "limit(sin(x)/x, x->0)"
  gocalc auto "2x + 3 = 7"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.orch.Auto(cmd.Context(), joinArgs(args))
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(out)
			}
			a.logger.Debug("auto dispatch", "intent", out.Intent.Intent, "operation", out.Unwrapped.Operation)
			return a.printResult(out.Unwrapped.Operation, out.Result)
		},
	}
}
