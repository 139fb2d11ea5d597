package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	HistorySourceClient = "client"
	HistorySourceServer = "server"

	HistoryStoreMemory = "memory"
	HistoryStoreRedis  = "redis"
	HistoryStoreSQLite = "sqlite"
)

// DefaultSystemPrompt is the persona of the chat widget.
const DefaultSystemPrompt = `তুমি একজন বন্ধুসুলভ, বুদ্ধিমান এবং অনুভূতিশীল AI chatbot।
তুমি আগের কথাগুলো মনে রাখবে এবং সেই অনুযায়ী উত্তর দেবে।

নিয়ম:
- ইউজার যে ভাষায় লিখবে, সেই ভাষায় উত্তর দেবে
- Bangla → Bangla
- English → English
- Banglish → Banglish
- মজা করলে → হালকা ফানি
- সিরিয়াস হলে → সিরিয়াস
- ইমোশনাল হলে → সাপোর্টিভ
- robotic ভাষা ব্যবহার করবে না`

type Config struct {
	AppPort  int    `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	GroqAPIURL   string `mapstructure:"GROQ_API_URL"`
	GroqAPIKey   string `mapstructure:"GROQ_API_KEY"`
	Model        string `mapstructure:"MODEL"`
	SystemPrompt string `mapstructure:"SYSTEM_PROMPT"`

	// Optional generation parameters. Nil means the field is omitted upstream.
	MaxTokens   *int     `mapstructure:"MAX_TOKENS"`
	Temperature *float64 `mapstructure:"TEMPERATURE"`
	TopP        *float64 `mapstructure:"TOP_P"`

	HistorySource string        `mapstructure:"HISTORY_SOURCE"`
	HistoryLimit  int           `mapstructure:"HISTORY_LIMIT"`
	HistoryStore  string        `mapstructure:"HISTORY_STORE"`
	HistoryKey    string        `mapstructure:"HISTORY_KEY"`
	HistoryTTL    time.Duration `mapstructure:"HISTORY_TTL"`

	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions")
	viper.SetDefault("GROQ_API_KEY", "")
	viper.SetDefault("MODEL", "llama-3.1-8b-instant")
	viper.SetDefault("SYSTEM_PROMPT", DefaultSystemPrompt)
	viper.SetDefault("HISTORY_SOURCE", HistorySourceClient)
	viper.SetDefault("HISTORY_LIMIT", 10)
	viper.SetDefault("HISTORY_STORE", HistoryStoreMemory)
	viper.SetDefault("HISTORY_KEY", "global")
	viper.SetDefault("HISTORY_TTL", "24h")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("DATABASE_PATH", ":memory:")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Keys without a default are invisible to Unmarshal unless bound explicitly.
	for _, key := range []string{"MAX_TOKENS", "TEMPERATURE", "TOP_P"} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.HistorySource = strings.ToLower(strings.TrimSpace(cfg.HistorySource))
	cfg.HistoryStore = strings.ToLower(strings.TrimSpace(cfg.HistoryStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.HistorySource {
	case HistorySourceClient, HistorySourceServer:
	default:
		return fmt.Errorf("invalid HISTORY_SOURCE %q: must be %q or %q", c.HistorySource, HistorySourceClient, HistorySourceServer)
	}
	switch c.HistoryStore {
	case HistoryStoreMemory, HistoryStoreRedis, HistoryStoreSQLite:
	default:
		return fmt.Errorf("invalid HISTORY_STORE %q: must be one of memory, redis, sqlite", c.HistoryStore)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("invalid HISTORY_LIMIT %d: must not be negative", c.HistoryLimit)
	}
	if c.Model == "" {
		return fmt.Errorf("MODEL must not be empty")
	}
	return nil
}
