// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/training-factory/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived runs (list, show, domains)",
	Long: `Runs reads the SQLite archive written by "generate --save". Use list to
see recent runs, show to print one archived bundle, and domains to see which
source domains archived runs relied on most.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topic, _ := cmd.Flags().GetString("topic")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			runs, err := s.List(ctx, store.ListOptions{Topic: topic, Limit: limit})
			if err != nil {
				return err
			}
			if jsonOutput {
				return encodeJSON(cmd.OutOrStdout(), runs)
			}
			formatRuns(cmd.OutOrStdout(), runs)
			return nil
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an archived run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			run, err := s.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return encodeJSON(cmd.OutOrStdout(), run)
		})
	},
}

var runsDomainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Count archived sources per domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			counts, err := s.DomainUsage(ctx, limit)
			if err != nil {
				return err
			}
			return encodeJSON(cmd.OutOrStdout(), counts)
		})
	},
}

func withStore(cmd *cobra.Command, fn func(context.Context, *store.Store) error) error {
	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, s)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []store.Summary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs archived.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-20s  %-40s  %-8s  %-8s  %s\n",
		"ID", "Created", "Topic", "Research", "QA", "Revisions")
	fmt.Fprintln(w, strings.Repeat("-", 130))
	for _, r := range runs {
		topic := r.Topic
		if len(topic) > 40 {
			topic = topic[:37] + "..."
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-40s  %-8s  %-8s  %d/%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), topic,
			r.ResearchStatus, r.QAStatus, r.ResearchRevisions, r.ContentRevisions)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsListCmd.Flags().String("topic", "", "only runs whose topic contains this text")
	runsListCmd.Flags().Bool("json", false, "output as JSON")
	runsDomainsCmd.Flags().Int("limit", 20, "maximum domains to report")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDomainsCmd)
	rootCmd.AddCommand(runsCmd)
}
