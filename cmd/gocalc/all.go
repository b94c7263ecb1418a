package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/toolapi"
)

func (a *app) allCmd() *cobra.Command {
	var (
		names              []string
		variable, approach string
		direction          string
	)
	c := &cobra.Command{
		Use:   "all <input>",
		Short: "Run every operation and rank the results",
		Long: `Run several operations on one input and show the most relevant result first,
followed by the other results and the operations that did not apply.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := a.cfg.Batch.ParsedOperations()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ops") {
				ops = ops[:0]
				for _, n := range names {
					op, ok := calc.ParseOperation(n)
					if !ok {
						return fmt.Errorf("unknown operation %q", n)
					}
					ops = append(ops, op)
				}
			}
			if !cmd.Flags().Changed("approach") {
				approach = a.cfg.Batch.LimitApproach
			}
			if !cmd.Flags().Changed("direction") {
				direction = a.cfg.Batch.LimitDirection
			}
			dir, ok := calc.ParseDirection(direction)
			if !ok {
				return fmt.Errorf("invalid --direction %q: want both, left or right", direction)
			}

			req := calc.Request{Input: joinArgs(args), Variable: variable, Approach: approach, Direction: dir}
			batch := a.orch.CalculateAll(cmd.Context(), req, ops)
			pr := calc.Prioritize(batch, req.Input)
			if a.jsonOut {
				return a.printJSON(toolapi.CalculateAllResult{Batch: batch, Prioritized: pr})
			}
			return a.printPrioritized(pr)
		},
	}
	f := c.Flags()
	f.StringSliceVar(&names, "ops", nil, "comma-separated operations to run (default: config, then all)")
	f.StringVarP(&variable, "var", "v", "", "variable for calculus and solving")
	f.StringVarP(&approach, "approach", "a", "", "limit approach point (default from config)")
	f.StringVarP(&direction, "direction", "d", "", "limit direction (default from config)")
	return c
}

func (a *app) printPrioritized(pr calc.PrioritizedResults) error {
	if p := pr.Primary; p != nil {
		title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint(p.Label)
		body := ""
		if p.Success {
			body = valueStyle.Sprint(p.Result.Text()) + "\n" + mutedStyle.Sprint("engine: "+p.Result.Engine)
		} else {
			title = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(p.Label)
			body = p.Error
		}
		pterm.Fprintln(a.out, pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(body))
	}

	if len(pr.Secondary) > 0 {
		data := pterm.TableData{{"Operation", "Result", "Engine", "Time"}}
		for _, e := range pr.Secondary {
			data = append(data, []string{e.Label, e.Result.Text(), e.Result.Engine, formatMs(e.ExecutionTimeMs)})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		pterm.Fprintln(a.out, table)
	}

	if len(pr.NotApplicable) > 0 {
		pterm.Fprintln(a.out, labelStyle.Sprint("Not applicable"))
		items := make([]pterm.BulletListItem, 0, len(pr.NotApplicable))
		for _, n := range pr.NotApplicable {
			items = append(items, pterm.BulletListItem{Level: 0, Text: calc.OperationLabels[n.Operation] + ": " + n.Reason})
		}
		list, err := pterm.DefaultBulletList.WithItems(items).Srender()
		if err != nil {
			return err
		}
		pterm.Fprint(a.out, list)
	}

	s := pr.Stats
	pterm.Fprintln(a.out, mutedStyle.Sprintf("%d/%d succeeded in %s", s.SuccessCount, s.Total, formatMs(s.TotalTimeMs)))
	return nil
}
