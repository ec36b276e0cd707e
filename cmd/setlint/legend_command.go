package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"setlint/internal/qc"
)

func newLegendCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "legend",
		Short:       "Explain the one-character reason and warning codes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"reasons":  qc.ReasonLegend,
					"warnings": qc.WarningLegend,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Code", "Meaning"},
				legendRows(qc.ReasonLegend),
				[]columnAlignment{alignLeft, alignLeft},
			))
			fmt.Fprintln(out, renderTable(
				[]string{"Warning", "Meaning"},
				legendRows(qc.WarningLegend),
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the legends as JSON")
	return cmd
}

func legendRows(legend map[string]string) [][]string {
	codes := make([]string, 0, len(legend))
	for code := range legend {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []string{code, legend[code]})
	}
	return rows
}
