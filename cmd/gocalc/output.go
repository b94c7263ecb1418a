package main

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/njchilds90/gocalc/calc"
)

var (
	labelStyle = pterm.NewStyle(pterm.FgLightCyan, pterm.Bold)
	valueStyle = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	mutedStyle = pterm.NewStyle(pterm.FgGray)
)

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printFields(fields [][2]string) {
	width := 0
	for _, f := range fields {
		if len(f[0]) > width {
			width = len(f[0])
		}
	}
	for _, f := range fields {
		pterm.Fprintln(a.out, labelStyle.Sprintf("%-*s  ", width, f[0])+f[1])
	}
}

func (a *app) printResult(op calc.Operation, res *calc.OperationResult) error {
	if a.jsonOut {
		return a.printJSON(res)
	}
	pterm.Fprintln(a.out, labelStyle.Sprint(calc.OperationLabels[op]+": ")+valueStyle.Sprint(res.Text()))
	if m := res.Metadata; m != nil && m.IsParametric {
		pterm.Fprintln(a.out, mutedStyle.Sprint("  general: ")+m.GeneralSolution)
	}
	pterm.Fprintln(a.out, mutedStyle.Sprint("  engine: "+res.Engine))
	if len(res.Steps) > 0 {
		items := make([]pterm.BulletListItem, 0, len(res.Steps))
		for _, s := range res.Steps {
			items = append(items, pterm.BulletListItem{Level: 1, Text: s})
		}
		list, err := pterm.DefaultBulletList.WithItems(items).Srender()
		if err != nil {
			return err
		}
		pterm.Fprint(a.out, list)
	}
	for _, w := range res.Warnings {
		pterm.Fprintln(a.out, pterm.Warning.Sprint(w))
	}
	return nil
}

func formatMs(ms float64) string {
	return fmt.Sprintf("%.2f ms", ms)
}
