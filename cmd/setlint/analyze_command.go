package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"setlint/internal/analysis"
	"setlint/internal/busscan"
	"setlint/internal/history"
	"setlint/internal/loader"
	"setlint/internal/logging"
	"setlint/internal/report"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		baseName  string
		minify    bool
		noHistory bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <session.als>",
		Short: "Analyze a Live set and emit full + compact QC reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			inputPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}

			tracks, meta, err := loader.Load(inputPath, loader.Limits{
				MaxParamsPerDevice: cfg.Analysis.MaxParamsPerDevice,
			}, logger)
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}

			res, err := analysis.Run(tracks, analysis.Options{
				GroupHopLimit: cfg.Analysis.GroupHopLimit,
				SilentVolume:  cfg.Analysis.SilentVolume,
				BusPolicy:     busscan.Policy{Patterns: cfg.BusHeuristic.Patterns},
				Logger:        logger,
			})
			if err != nil {
				return err
			}

			dir := outputDir
			if dir == "" {
				dir = cfg.Paths.OutputDir
			}
			base := baseName
			if base == "" {
				base = inputStem(inputPath)
			}

			full := report.BuildFull(res, &meta)
			compact := report.BuildCompact(res)
			paths, err := report.Write(full, compact, report.WriteOptions{
				Dir:    dir,
				Base:   base,
				Minify: minify || cfg.Output.Minify,
				Now:    res.GeneratedAt,
			})
			if err != nil {
				return fmt.Errorf("write reports: %w", err)
			}

			if cfg.History.Enabled && !noHistory {
				if err := recordHistory(cmd, cfg.History.Path, res, inputPath, meta.SHA256); err != nil {
					// History is bookkeeping; a locked or unwritable db must
					// not fail the analysis itself.
					logger.Warn("history record failed", logging.Error(err))
				}
			}

			if jsonOut {
				return writeJSON(cmd, analyzeOutput{
					RunID:       res.RunID,
					Summary:     res.Summary,
					FullReport:  paths.Full,
					CompactJSON: paths.Compact,
				})
			}

			out := cmd.OutOrStdout()
			renderRunSummary(out, res)
			fmt.Fprintf(out, "Full report:    %s\n", paths.Full)
			fmt.Fprintf(out, "Compact report: %s\n", paths.Compact)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for report files (default from config)")
	cmd.Flags().StringVar(&baseName, "base", "", "Report filename stem (default: input name)")
	cmd.Flags().BoolVar(&minify, "minify", false, "Emit single-line JSON reports")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run in the history database")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON instead of tables")
	return cmd
}

type analyzeOutput struct {
	RunID       string `json:"run_id"`
	Summary     any    `json:"summary"`
	FullReport  string `json:"full_report"`
	CompactJSON string `json:"compact_report"`
}

func recordHistory(cmd *cobra.Command, dbPath string, res *analysis.Result, inputPath, inputSHA string) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(cmd.Context(), history.Entry{
		RunID:       res.RunID,
		InputPath:   inputPath,
		InputSHA256: inputSHA,
		GeneratedAt: res.GeneratedAt,
		Summary:     res.Summary,
	})
}

func inputStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
