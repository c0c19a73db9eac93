package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "matchsense"
	envPrefix = "MATCHSENSE"
)

type Config struct {
	Weights          map[string]any   `mapstructure:"weights"`
	NormalizeWeights bool             `mapstructure:"normalize-weights"`
	JobLevel         string           `mapstructure:"job-level" validate:"required"`
	Vocabulary       VocabularyConfig `mapstructure:"vocabulary"`
	Similarity       SimilarityConfig `mapstructure:"similarity"`
	Batch            BatchConfig      `mapstructure:"batch"`
	Documents        DocumentsConfig  `mapstructure:"documents"`
	MetricsFile      string           `mapstructure:"metrics-file"`
}

// VocabularyConfig replaces the built-in gazetteers. Inline lists win over
// files.
type VocabularyConfig struct {
	Technical      []string `mapstructure:"technical"`
	TechnicalFile  string   `mapstructure:"technical-file"`
	SoftSkills     []string `mapstructure:"soft-skills"`
	SoftSkillsFile string   `mapstructure:"soft-skills-file"`
}

type SimilarityConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=lexical gemini none"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Gemini   GeminiConfig  `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile        string  `mapstructure:"api-key-file"`
	Model             string  `mapstructure:"model"`
	MaxRetries        int     `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second" validate:"gte=0"`
	MaxLogLength      int     `mapstructure:"max-log-length" validate:"gte=0"`
	CacheSize         int     `mapstructure:"cache-size" validate:"gte=0"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"gte=0,lte=64"`
}

type DocumentsConfig struct {
	MaxFileSizeMB int `mapstructure:"max-file-size-mb" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "matchsense scores how well resumes match a job description",
		Long: "matchsense scores resumes against a job description by semantic similarity, " +
			"technical and soft skills, experience and education, and ranks candidates by the result.",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is matchsense.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("weights", map[string]any{})
	v.SetDefault("normalize-weights", false)
	v.SetDefault("job-level", "mid")
	v.SetDefault("vocabulary.technical", []string{})
	v.SetDefault("vocabulary.technical-file", "")
	v.SetDefault("vocabulary.soft-skills", []string{})
	v.SetDefault("vocabulary.soft-skills-file", "")
	v.SetDefault("similarity.provider", "lexical")
	v.SetDefault("similarity.timeout", 10*time.Second)
	v.SetDefault("similarity.gemini.api-key-file", "")
	v.SetDefault("similarity.gemini.model", "text-embedding-004")
	v.SetDefault("similarity.gemini.max-retries", 3)
	v.SetDefault("similarity.gemini.requests-per-second", 5.0)
	v.SetDefault("similarity.gemini.max-log-length", 200)
	v.SetDefault("similarity.gemini.cache-size", 512)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("documents.max-file-size-mb", 10)
	v.SetDefault("metrics-file", "")
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default config file is optional; an explicit one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

// decodeConfig unmarshals and validates the configuration held by v.
func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.Similarity.Provider = strings.ToLower(strings.TrimSpace(config.Similarity.Provider))

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}
