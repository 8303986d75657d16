// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/internal/generate"
	"github.com/pdiddy/training-factory/internal/research"
	"github.com/pdiddy/training-factory/pkg/types"
)

// NewFromConfig wires an engine with the configured retriever and content
// generator. It fails only on an unknown lab or templates shape.
func NewFromConfig(cfg types.Config, logger *zap.Logger) (*Engine, error) {
	g, err := generate.New(cfg.Generation, logger)
	if err != nil {
		return nil, err
	}
	return New(research.NewConfiguredRetriever(cfg, logger), g, logger), nil
}
