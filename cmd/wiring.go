package cmd

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/matchsense/matchsense/internal/document"
	"github.com/matchsense/matchsense/internal/engine"
	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/gazetteer"
	"github.com/matchsense/matchsense/internal/logger"
	"github.com/matchsense/matchsense/internal/metrics"
	"github.com/matchsense/matchsense/internal/scoring"
	"github.com/matchsense/matchsense/internal/secrets"
	"github.com/matchsense/matchsense/internal/similarity"
	"github.com/matchsense/matchsense/internal/similarity/gemini"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// components is everything a command needs to score documents.
type components struct {
	analyzer  *engine.Analyzer
	extractor *document.Extractor
	metrics   *metrics.Metrics
}

func newComponents(ctx context.Context, config *Config, weights scoring.Weights, log *zap.Logger) (*components, error) {
	vocab, err := buildVocabulary(config.Vocabulary)
	if err != nil {
		return nil, err
	}

	sim, err := newSimilarity(ctx, config.Similarity, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	analyzer, err := engine.New(sim, log, engine.Config{
		Vocabulary:        vocab,
		Weights:           &weights,
		SimilarityTimeout: config.Similarity.Timeout,
		Metrics:           m,
		MaxLogLength:      config.Similarity.Gemini.MaxLogLength,
	})
	if err != nil {
		return nil, err
	}

	maxSize := int64(config.Documents.MaxFileSizeMB) << 20
	return &components{
		analyzer:  analyzer,
		extractor: document.NewExtractor(maxSize, log),
		metrics:   m,
	}, nil
}

// buildVocabulary returns the default gazetteers with any configured
// replacement applied. A custom list replaces the built-in one entirely.
func buildVocabulary(cfg VocabularyConfig) (gazetteer.Set, error) {
	set := gazetteer.DefaultSet()

	technical, err := customVocabulary("technical", cfg.Technical, cfg.TechnicalFile)
	if err != nil {
		return set, err
	}
	if technical != nil {
		set.Technical = technical
	}

	soft, err := customVocabulary("soft-skills", cfg.SoftSkills, cfg.SoftSkillsFile)
	if err != nil {
		return set, err
	}
	if soft != nil {
		set.Soft = soft
	}

	return set, nil
}

func customVocabulary(name string, entries []string, file string) (*gazetteer.Vocabulary, error) {
	switch {
	case len(entries) > 0:
		return gazetteer.NewVocabulary(name, entries)
	case strings.TrimSpace(file) != "":
		return gazetteer.LoadVocabularyFile(name, strings.TrimSpace(file))
	default:
		return nil, nil
	}
}

func newSimilarity(ctx context.Context, cfg SimilarityConfig, log *zap.Logger) (similarity.Service, error) {
	switch cfg.Provider {
	case "", "lexical":
		return similarity.NewLexical(), nil
	case "none":
		return similarity.Unavailable(), nil
	case gemini.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
			Env:  geminiKeyEnv,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set similarity.gemini.api-key-file or %s)", err, geminiKeyEnv)
		}

		embedLogger := log.With(zap.Int("similarity_retry_attempts", cfg.Gemini.MaxRetries))
		embedder, err := gemini.NewEmbedder(ctx, apiKey, gemini.Config{
			Model:             cfg.Gemini.Model,
			MaxRetries:        cfg.Gemini.MaxRetries,
			RequestsPerSecond: cfg.Gemini.RequestsPerSecond,
			MaxLogLength:      cfg.Gemini.MaxLogLength,
			CacheSize:         cfg.Gemini.CacheSize,
		}, embedLogger)
		if err != nil {
			return nil, err
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unsupported similarity provider: %s", cfg.Provider)
	}
}

// resolveWeights layers the defaults, the configured weights and k=v
// overrides, in that order. The result is normalized when normalize is set
// and must otherwise already be valid.
func resolveWeights(configured map[string]any, overrides []string, normalize bool) (scoring.Weights, error) {
	raw := make(map[string]any, len(scoring.Factors()))
	for k, v := range scoring.DefaultWeights().Map() {
		raw[k] = v
	}
	maps.Copy(raw, configured)

	for _, override := range overrides {
		key, value, ok := strings.Cut(override, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return scoring.Weights{}, fmt.Errorf("%w: expected factor=value, got %q", scoring.ErrInvalidWeights, override)
		}
		raw[key] = strings.TrimSpace(value)
	}

	weights, err := scoring.WeightsFromMap(raw)
	if err != nil {
		return scoring.Weights{}, err
	}

	if normalize {
		return weights.Normalize(), nil
	}
	if err := weights.Check(); err != nil {
		return scoring.Weights{}, err
	}
	return weights, nil
}

// weightsFromFlags resolves the weights of a command with --weight and
// --normalize flags.
func weightsFromFlags(cmd *cobra.Command, config *Config) (scoring.Weights, error) {
	overrides, _ := cmd.Flags().GetStringArray("weight")
	normalize, _ := cmd.Flags().GetBool("normalize")
	return resolveWeights(config.Weights, overrides, normalize || config.NormalizeWeights)
}

// parseJobLevel resolves a level flag, falling back to the configured one.
func parseJobLevel(flag, configured string) (extract.Level, error) {
	name := strings.TrimSpace(flag)
	if name == "" {
		name = configured
	}
	level, ok := extract.ParseLevel(name)
	if !ok {
		return level, fmt.Errorf("unknown job level %q", name)
	}
	return level, nil
}

func newLogger() (*zap.Logger, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return log, nil
}
