// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads training-factory settings from a YAML file and the
// environment, and builds the process logger.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/training-factory/pkg/types"
)

// Name is the config file base name and the env prefix source.
const Name = "training-factory"

// EnvPrefix prefixes every environment override, e.g.
// TRAINING_FACTORY_SEARCH_PROVIDER.
const EnvPrefix = "TRAINING_FACTORY"

// DefaultUserAgent identifies fetches and searches.
const DefaultUserAgent = "training-factory/1.0 (+https://github.com/pdiddy/training-factory)"

// Load reads configuration. When cfgFile is empty it looks for
// training-factory.yaml in the working directory and then in
// ~/.config/training-factory/; a missing file is not an error. An explicit
// cfgFile must exist.
func Load(cfgFile string) (*types.Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	r := types.DefaultResearchConfig()
	v.SetDefault("research.max_results_per_query", r.MaxResultsPerQuery)
	v.SetDefault("research.max_sources", r.MaxSources)
	v.SetDefault("research.domain_cap", r.DomainCap)
	v.SetDefault("research.max_enriched", r.MaxEnriched)
	v.SetDefault("research.max_snippets", r.MaxSnippets)
	v.SetDefault("research.snippet_chars", r.SnippetChars)
	v.SetDefault("research.context_pack_chars", r.ContextPackChars)

	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.fetch_rate", 2.0)

	v.SetDefault("search.provider", string(types.ProviderFallback))
	v.SetDefault("search.serpapi_api_key", "")
	v.SetDefault("search.endpoint", "")
	v.SetDefault("search.rate", 1.0)

	v.SetDefault("generation.offline", false)
	v.SetDefault("generation.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.max_tokens", 4096)
	v.SetDefault("generation.lab_shape", string(types.ShapeStructured))
	v.SetDefault("generation.templates_shape", string(types.ShapeStructured))

	v.SetDefault("store.path", "out/runs.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// NewLogger builds a zap logger from cfg. Format "json" selects the
// production encoder; anything else the development console encoder.
func NewLogger(cfg types.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	levelText := cfg.Level
	if levelText == "" {
		levelText = "info"
	}
	level, err := zapcore.ParseLevel(levelText)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}
