// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/training-factory/internal/gate"
	"github.com/pdiddy/training-factory/internal/research"
	"github.com/pdiddy/training-factory/internal/schema"
	"github.com/pdiddy/training-factory/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Retrieve and rank sources for a topic and apply the research gate",
	Long: `Research runs one retrieval attempt for the topic: it plans queries,
ranks and selects sources with the per-domain cap, optionally enriches them
with fetched snippets, and reports the research gate verdict. No content is
generated and no retry is made.`,
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := schema.Validate("request", req); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := research.NewConfiguredRetriever(*cfg, logger).Retrieve(ctx, req)
	if err != nil {
		return err
	}
	qa := gate.EvaluateResearch(res, req)

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Research   types.ResearchResult   `json:"research"`
			ResearchQA types.ResearchQAResult `json:"research_qa"`
		}{res, qa})
	}

	research.FormatTable(res, out)
	fmt.Fprintf(out, "\nresearch gate: %s (keyword coverage %.3f)\n", qa.Status, qa.Metrics.KeywordCoverageRatio)
	for _, c := range qa.Checks {
		fmt.Fprintf(out, "  [%-3s] %s\n", c.Answer, c.Prompt)
	}
	return nil
}

func init() {
	addRequestFlags(researchCmd)
	researchCmd.Flags().Bool("json", false, "output the research result and gate as JSON")

	rootCmd.AddCommand(researchCmd)
}
