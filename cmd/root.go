package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/fitcheck/internal/ai"
)

const (
	app = "fitcheck"
)

type Config struct {
	LLM    *LLMConfig    `mapstructure:"llm"`
	Recent *RecentConfig `mapstructure:"recent"`
	Fit    *FitConfig    `mapstructure:"fit"`
	Server *ServerConfig `mapstructure:"server"`
}

type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	FallbackProviders []string      `mapstructure:"fallback-providers"`
	Model             string        `mapstructure:"model"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxLogLength      int           `mapstructure:"max-log-length"`
	OpenAI            *OpenAIConfig `mapstructure:"openai"`
	Ollama            *OllamaConfig `mapstructure:"ollama"`
	Cursor            *CursorConfig `mapstructure:"cursor"`
	Gemini            *GeminiConfig `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey     string   `mapstructure:"api-key"`
	APIKeyFile string   `mapstructure:"api-key-file"`
	BaseURL    string   `mapstructure:"base-url"`
	Model      string   `mapstructure:"model"`
	Models     []string `mapstructure:"models"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base-url"`
	Model   string `mapstructure:"model"`
}

type CursorConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	BaseURL      string        `mapstructure:"base-url"`
	Model        string        `mapstructure:"model"`
	PollInterval time.Duration `mapstructure:"poll-interval"`
	MaxPolls     int           `mapstructure:"max-polls"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type RecentConfig struct {
	// Backend is "file" (default) or "redis".
	Backend string       `mapstructure:"backend"`
	File    string       `mapstructure:"file"`
	Max     int          `mapstructure:"max"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type FitConfig struct {
	ExtraTechTerms       []string `mapstructure:"extra-tech-terms"`
	ExtraHardConstraints []string `mapstructure:"extra-hard-constraints"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var envBindings = map[string]string{
	"llm.provider":            "LLM_PROVIDER",
	"llm.fallback-providers":  "LLM_FALLBACK_PROVIDERS",
	"llm.model":               "LLM_MODEL",
	"llm.temperature":         "LLM_TEMPERATURE",
	"llm.openai.api-key":      "OPENAI_API_KEY",
	"llm.openai.api-key-file": "OPENAI_API_KEY_FILE",
	"llm.openai.base-url":     "OPENAI_BASE_URL",
	"llm.openai.models":       "OPENAI_MODELS",
	"llm.ollama.base-url":     "OLLAMA_BASE_URL",
	"llm.ollama.model":        "OLLAMA_MODEL",
	"llm.cursor.api-key":      "CURSOR_API_KEY",
	"llm.cursor.api-key-file": "CURSOR_API_KEY_FILE",
	"llm.cursor.base-url":     "CURSOR_BASE_URL",
	"llm.gemini.api-key":      "GEMINI_API_KEY",
	"llm.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	"llm.gemini.model":        "GEMINI_MODEL",
	"recent.redis.addr":       "FITCHECK_REDIS_ADDR",
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fitcheck maps a job description against a candidate profile and scores the fit",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("llm.provider", string(ai.ProviderMock))
	viper.SetDefault("llm.temperature", ai.DefaultTemperature)
	viper.SetDefault("llm.max-log-length", 200)
	viper.SetDefault("recent.backend", "file")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fitcheck.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// The default config file is optional; a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	config.setDefaults()

	return config, nil
}

func (c *Config) setDefaults() {
	if c.LLM == nil {
		c.LLM = &LLMConfig{}
	}
	if c.LLM.OpenAI == nil {
		c.LLM.OpenAI = &OpenAIConfig{}
	}
	if c.LLM.Ollama == nil {
		c.LLM.Ollama = &OllamaConfig{}
	}
	if c.LLM.Cursor == nil {
		c.LLM.Cursor = &CursorConfig{}
	}
	if c.LLM.Gemini == nil {
		c.LLM.Gemini = &GeminiConfig{}
	}
	if c.Recent == nil {
		c.Recent = &RecentConfig{}
	}
	if c.Recent.Redis == nil {
		c.Recent.Redis = &RedisConfig{}
	}
	if c.Fit == nil {
		c.Fit = &FitConfig{}
	}
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
}
