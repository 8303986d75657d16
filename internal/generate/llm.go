// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/training-factory/pkg/types"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 4096
)

// LLM is the live text-generation capability. A nil LLM means offline:
// every stage returns its deterministic fallback payload.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClaudeLLM completes prompts with the Anthropic Messages API.
type ClaudeLLM struct {
	client    sdk.Client
	Model     string
	MaxTokens int64
	Logger    *zap.Logger
}

// NewClaudeLLM builds a client for cfg. Extra request options are applied
// after the API key, so tests can point the client at a local server.
func NewClaudeLLM(cfg types.AIConfig, logger *zap.Logger, opts ...option.RequestOption) *ClaudeLLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	all := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &ClaudeLLM{
		client:    sdk.NewClient(all...),
		Model:     model,
		MaxTokens: maxTokens,
		Logger:    logger,
	}
}

// Complete sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (c *ClaudeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.Model),
		MaxTokens: c.MaxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", eris.Wrap(err, "generate: claude message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	c.Logger.Debug("generate: claude usage",
		zap.String("model", c.Model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	if b.Len() == 0 {
		return "", eris.New("generate: claude reply has no text content")
	}
	return b.String(), nil
}

// NewLLM picks the backend for cfg: nil when offline mode is on or no API
// key is configured (the latter logs a warning), otherwise a ClaudeLLM.
func NewLLM(cfg types.GenerationConfig, logger *zap.Logger) LLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Offline {
		return nil
	}
	if cfg.APIKey == "" {
		logger.Warn("generate: anthropic api key not set, using offline payloads")
		return nil
	}
	return NewClaudeLLM(cfg.AIConfig, logger)
}
