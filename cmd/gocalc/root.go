package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
	"github.com/njchilds90/gocalc/numeric"
	"github.com/njchilds90/gocalc/symbolic"
)

// Version holds the CLI version, set at build time with -ldflags.
var Version = "0.0.0-dev"

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	out      io.Writer
	errOut   io.Writer
	cfg      config.Config
	logger   *slog.Logger
	orch     *calc.Orchestrator
	logLevel string
	jsonOut  bool
	noColor  bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "gocalc",
		Short:         "Symbolic and numeric calculator",
		Long:          `gocalc evaluates, differentiates, integrates, simplifies, factors, expands, solves and takes limits of math expressions, falling back between a symbolic and a numeric engine.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	pf.BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.evalCmd(),
		a.diffCmd(),
		a.integrateCmd(),
		a.simpleCmd(calc.OpSimplify, "simplify", "Simplify an expression"),
		a.simpleCmd(calc.OpFactor, "factor", "Factor a polynomial over the rationals"),
		a.simpleCmd(calc.OpExpand, "expand", "Expand products and integer powers"),
		a.solveCmd(),
		a.limitCmd(),
		a.classifyCmd(),
		a.analyzeCmd(),
		a.allCmd(),
		a.autoCmd(),
		a.configCmd(),
	)
	return root
}

// setup loads config, builds the logger and engines, and decides whether
// output is colored.
func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logger, err := logging.New(cfg, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.orch = calc.New(symbolic.NewEngine(), numeric.NewEngine(), calc.WithLogger(logger))
	if a.noColor || !isTerminal(a.out) {
		pterm.DisableColor()
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// joinArgs lets expressions be passed unquoted across several args.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
