// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/training-factory/internal/pipeline"
	"github.com/pdiddy/training-factory/internal/store"
	"github.com/pdiddy/training-factory/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full pipeline and write a training bundle",
	Long: `Generate retrieves and ranks sources for the topic, applies the research
gate, produces the brief, curriculum, slides, lab, and templates, applies the
content gate, and writes the assembled bundle. Each gate may send the run back
once; a bundle that still fails is written with its failing checks recorded.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "yaml" {
		return eris.Errorf("unknown format %q (want json or yaml)", format)
	}

	runCfg := *cfg
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		runCfg.Generation.Offline = true
	}
	if cmd.Flags().Changed("lab-shape") {
		runCfg.Generation.LabShape, _ = cmd.Flags().GetString("lab-shape")
	}
	if cmd.Flags().Changed("templates-shape") {
		runCfg.Generation.TemplatesShape, _ = cmd.Flags().GetString("templates-shape")
	}

	engine, err := pipeline.NewFromConfig(runCfg, logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := engine.Run(ctx, req)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if err := writeBundle(cmd.OutOrStdout(), output, format, res.Bundle); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		s, err := store.Open(runCfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		run, err := s.Save(ctx, res.Bundle, res.ResearchRevisions, res.ContentRevisions)
		if err != nil {
			return err
		}
		logger.Info("run archived", zap.String("id", run.ID), zap.String("path", runCfg.Store.Path))
		fmt.Fprintf(cmd.ErrOrStderr(), "saved run %s\n", run.ID)
	}
	return nil
}

// requestFromFlags builds the pipeline request from the shared topic flags.
func requestFromFlags(cmd *cobra.Command) (types.Request, error) {
	topic, _ := cmd.Flags().GetString("topic")
	audience, _ := cmd.Flags().GetString("audience")
	web, _ := cmd.Flags().GetBool("web")
	provider, _ := cmd.Flags().GetString("search-provider")
	if topic == "" {
		return types.Request{}, eris.New("--topic is required")
	}
	return types.Request{
		Topic:    topic,
		Audience: audience,
		ResearchOptions: types.ResearchOptions{
			WebEnabled:     web,
			SearchProvider: types.SearchProviderName(provider),
		},
	}, nil
}

// writeBundle encodes b as JSON or YAML to path, or to w when path is empty.
func writeBundle(w io.Writer, path, format string, b types.Bundle) error {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = yaml.Marshal(&b)
	} else {
		data, err = json.MarshalIndent(b, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return eris.Wrapf(err, "encoding bundle as %s", format)
	}

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "creating %s", dir)
		}
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "writing %s", path)
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().String("topic", "", "training topic (required)")
	cmd.Flags().String("audience", "general", "target audience")
	cmd.Flags().Bool("web", false, "fetch source pages to extract snippets")
	cmd.Flags().String("search-provider", "", "search provider: fallback or serpapi (default from config)")
}

func init() {
	addRequestFlags(generateCmd)
	generateCmd.Flags().Bool("offline", false, "use deterministic content instead of the model")
	generateCmd.Flags().String("lab-shape", "structured", "lab layout: structured or legacy")
	generateCmd.Flags().String("templates-shape", "structured", "templates layout: structured or legacy")
	generateCmd.Flags().String("output", "", "write the bundle to this file instead of stdout")
	generateCmd.Flags().String("format", "json", "output format: json or yaml")
	generateCmd.Flags().Bool("save", false, "archive the bundle in the run store")

	rootCmd.AddCommand(generateCmd)
}
