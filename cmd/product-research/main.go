// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the product-research CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/product-research/internal/cache"
	"github.com/pdiddy/product-research/internal/logging"
	"github.com/pdiddy/product-research/internal/pipeline"
	"github.com/pdiddy/product-research/internal/secrets"
	"github.com/pdiddy/product-research/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the resolved secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return secrets.Resolve(loadedSecrets, key)
}

// rootCmd is the base command for the product-research CLI.
var rootCmd = &cobra.Command{
	Use:   "product-research",
	Short: "Deep product research for a shopping assistant",
	Long: `product-research turns a free-text shopping request into a ranked,
cited product report. It extracts the shopper's intent, plans catalog or web
searches, extracts products and reviews, scores review sentiment, ranks the
candidates, and writes a markdown report.

Credentials are read from .secrets/ (serpapi-api-key, gemini-api-key,
openai-api-key) or the matching environment variables. Without a generative
text key every stage uses its deterministic fallback.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger())
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log := logger()
			log.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./product-research.yaml or ~/.config/product-research/product-research.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding one file per API key")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("product-research")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "product-research"))
		}
	}

	viper.SetEnvPrefix("PRODUCT_RESEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers the keys that may be overridden from the
// environment. AutomaticEnv only consults keys viper already knows.
func setDefaults(d types.Config) {
	viper.SetDefault("search.provider", string(d.Search.Provider))
	viper.SetDefault("search.result_count", d.Search.ResultCount)
	viper.SetDefault("search.inter_call_delay", d.Search.InterCallDelay)
	viper.SetDefault("search.concurrency", d.Search.Concurrency)
	viper.SetDefault("genai.provider", string(d.GenAI.Provider))
	viper.SetDefault("genai.model", d.GenAI.Model)
	viper.SetDefault("genai.base_url", d.GenAI.BaseURL)
	viper.SetDefault("research.fetch_details", d.Research.FetchDetails)
	viper.SetDefault("research.timeout", d.Research.Timeout)
	viper.SetDefault("ranking.policy", string(d.Ranking.Policy))
	viper.SetDefault("cache.backend", string(d.Cache.Backend))
	viper.SetDefault("cache.addr", d.Cache.Addr)
	viper.SetDefault("cache.ttl", d.Cache.TTL)
	viper.SetDefault("archive.path", d.Archive.Path)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// loadConfig decodes viper settings over the defaults and fills missing
// credentials from the loaded secrets.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Search.APIKey = secretDefault(secrets.SerpAPIKey, cfg.Search.APIKey)
	switch cfg.GenAI.Provider {
	case types.GenAIOpenAI:
		cfg.GenAI.APIKey = secretDefault(secrets.OpenAIKey, cfg.GenAI.APIKey)
	case types.GenAIGemini, "":
		cfg.GenAI.APIKey = secretDefault(secrets.GeminiKey, cfg.GenAI.APIKey)
	}
	return cfg, nil
}

// logger builds the process logger from the current settings.
func logger() zerolog.Logger {
	return logging.New(types.LogConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}, os.Stderr)
}

// newService builds the assistant core from cfg. The returned func
// releases the response cache.
func newService(ctx context.Context, cfg types.Config) (*pipeline.Service, func(), error) {
	log := logging.New(cfg.Log, os.Stderr)
	opts := []pipeline.Option{pipeline.WithLogger(log)}

	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	release := func() {}
	if store != nil {
		opts = append(opts, pipeline.WithCache(store))
		release = func() { store.Close() }
	}

	svc, err := pipeline.NewService(pipeline.Config{Config: cfg}, opts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return svc, release, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
