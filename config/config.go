package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the newsletter pipeline
type Config struct {
	General      GeneralConfig      `mapstructure:"general"`
	Server       ServerConfig       `mapstructure:"server"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Feeds        map[string]Feed    `mapstructure:"feeds"`
	Agents       AgentsConfig       `mapstructure:"agents"`
	Research     ResearchConfig     `mapstructure:"research"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Guard        GuardConfig        `mapstructure:"guard"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Prompts      PromptsConfig      `mapstructure:"prompts"`
	Schedule     ScheduleConfig     `mapstructure:"schedule"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains the LLM provider configuration
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // groq, openai
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Feed is a single RSS source
type Feed struct {
	URL string `mapstructure:"url"`
}

// AgentsConfig bounds the think/act loops
type AgentsConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

// ResearchConfig holds the relevance policy for article search
type ResearchConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	FetchFullContent    bool    `mapstructure:"fetch_full_content"`
}

// OrchestratorConfig paces the research sub-invocations. CallDelay is slept
// after every research call to respect upstream rate limits; RetryDelay is
// slept before the single retry of a failed call.
type OrchestratorConfig struct {
	CallDelay  time.Duration `mapstructure:"call_delay"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// GuardConfig configures the writer's output gate
type GuardConfig struct {
	ToxicityThreshold float64  `mapstructure:"toxicity_threshold"`
	BannedWords       []string `mapstructure:"banned_words"`
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PeriodicLogs bool `mapstructure:"periodic_logs"`
}

// StorageConfig locates the file artifact store
type StorageConfig struct {
	OutputsDir string `mapstructure:"outputs_dir"`
}

// PromptsConfig locates the prompt definitions file
type PromptsConfig struct {
	Path string `mapstructure:"path"`
}

// ScheduleConfig optionally drives periodic pipeline runs in serve mode
type ScheduleConfig struct {
	CronSpec string `mapstructure:"cron_spec"`
}

func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key not set (GROQ_API_KEY)")
	}
	if len(c.Feeds) == 0 {
		return fmt.Errorf("no RSS feeds configured")
	}
	if c.Agents.MaxIterations <= 0 {
		return fmt.Errorf("agents.max_iterations must be > 0")
	}
	if c.Research.SimilarityThreshold <= 0 || c.Research.SimilarityThreshold > 1 {
		return fmt.Errorf("research.similarity_threshold must be in (0, 1]")
	}
	return nil
}

// FeedURLs returns the configured feed URLs in stable name order.
func (c *Config) FeedURLs() []string {
	names := make([]string, 0, len(c.Feeds))
	for name := range c.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, c.Feeds[name].URL)
	}
	return urls
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("agents.max_iterations", 100)
	v.SetDefault("research.similarity_threshold", 0.7)
	v.SetDefault("research.fetch_full_content", false)
	v.SetDefault("orchestrator.call_delay", 2*time.Second)
	v.SetDefault("orchestrator.retry_delay", 2*time.Second)
	v.SetDefault("guard.toxicity_threshold", 0.7)
	v.SetDefault("guard.banned_words", []string{"internal", "confidential"})
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.periodic_logs", false)
	v.SetDefault("storage.outputs_dir", "outputs")
	v.SetDefault("prompts.path", "config/prompts.yaml")
}

// LoadConfig reads configuration from the given file (or ./config.yaml when
// empty), environment variables prefixed with HERALD_, and built-in defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("HERALD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// API key falls back to the conventional environment variable
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return &cfg, nil
}
