// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the training-factory CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/internal/config"
	"github.com/pdiddy/training-factory/internal/secrets"
	"github.com/pdiddy/training-factory/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Loaded once per invocation by the root command.
var (
	cfg    *types.Config
	logger = zap.NewNop()
)

// rootCmd is the base command for the training-factory CLI.
var rootCmd = &cobra.Command{
	Use:   "training-factory",
	Short: "Generate grounded training bundles from a topic",
	Long: `training-factory researches a topic, gates the sources on authority and
coverage, and generates a training bundle: brief, curriculum, slides, lab, and
README/RUNBOOK templates, each checked by a content quality gate.

Runs work offline with built-in search results and deterministic content, or
live with SerpAPI search and Claude generation when keys are configured.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, nil)
		if err != nil {
			return err
		}
		secrets.Apply(loaded, s)

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			loaded.Log.Level = level
		}
		l, err := config.NewLogger(loaded.Log)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(l)
		cfg, logger = loaded, l

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("secrets loaded", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./training-factory.yaml or ~/.config/training-factory/training-factory.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of API key files")
	rootCmd.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
