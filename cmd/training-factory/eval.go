// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/training-factory/internal/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the evaluation matrix and write a CSV summary",
	Long: `Eval runs every selected case under every selected mode as an isolated
pipeline, writes each bundle to <out>/<case>/<mode>/bundle.json, and writes
one summary row per run to <out>/summary.csv.

Without --cases the built-in matrix is used: cases C1-C4 and modes M1
(offline), M2 (web, fallback search), and M3 (web, SerpAPI search).`,
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	casesFile, _ := cmd.Flags().GetString("cases")
	caseIDs, _ := cmd.Flags().GetString("case-ids")
	modeIDs, _ := cmd.Flags().GetString("modes")
	outDir, _ := cmd.Flags().GetString("out")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	m := eval.DefaultMatrix()
	if casesFile != "" {
		var err error
		if m, err = eval.ReadMatrix(casesFile); err != nil {
			return err
		}
	}
	m, err := m.Select(caseIDs, modeIDs)
	if err != nil {
		return err
	}

	r := eval.NewRunner(*cfg, outDir, logger)
	r.Concurrency = concurrency

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rep, err := r.Run(ctx, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote summary to %s\n", rep.SummaryPath)
	return nil
}

func init() {
	evalCmd.Flags().String("cases", "", "YAML file with phase, cases, and modes")
	evalCmd.Flags().String("case-ids", "", "comma-separated case ids to run (default: all)")
	evalCmd.Flags().String("modes", "", "comma-separated mode ids to run (default: all)")
	evalCmd.Flags().String("out", "out/eval/phase_b", "output directory")
	evalCmd.Flags().Int("concurrency", 4, "maximum concurrent runs")

	rootCmd.AddCommand(evalCmd)
}
