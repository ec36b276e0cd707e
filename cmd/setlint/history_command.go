package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"setlint/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit    int
		inputSHA string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in the configuration")
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			var entries []history.Entry
			if inputSHA != "" {
				entries, err = store.ForInput(cmd.Context(), inputSHA, limit)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No recorded runs.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.GeneratedAt.Local().Format(time.DateTime),
					shortID(e.RunID),
					filepath.Base(e.InputPath),
					strconv.Itoa(e.Summary.TotalTracks),
					strconv.Itoa(e.Summary.IssueTracks),
					strconv.Itoa(e.Summary.WarningTracks),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Run", "Input", "Tracks", "Issues", "Warnings"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&inputSHA, "input-sha", "", "Only list runs for this input content hash")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the runs as JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
