// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite|postgres
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres DSN
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`      // SERP cache entry lifetime
	LockTTL  time.Duration `yaml:"lock_ttl"` // job lock lease
}

type AIConfig struct {
	Provider        string            `yaml:"provider"` // openai|gemini|offline
	DefaultModel    string            `yaml:"default_model"`
	OpenAIKey       string            `yaml:"openai_key"`
	OpenAIBaseURL   string            `yaml:"openai_base_url"`
	GeminiKey       string            `yaml:"gemini_key"`
	GeminiURL       string            `yaml:"gemini_url"`
	ModelProviders  map[string]string `yaml:"model_providers"` // model -> provider overrides
	MaxOutputTokens int               `yaml:"max_output_tokens"`
	ConcurrentLimit int               `yaml:"concurrent_limit"` // max concurrent AI calls
	Timeout         time.Duration     `yaml:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Index     string   `yaml:"index"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	SubmitPerMinute int           `yaml:"submit_per_minute"` // per client, needs redis; 0 disables
}

type GenerationConfig struct {
	TargetWordCount int    `yaml:"target_word_count"`
	Language        string `yaml:"language"`
}

type Config struct {
	Log           LogConfig           `yaml:"log"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	AI            AIConfig            `yaml:"ai"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	HTTP          HTTPConfig          `yaml:"http"`
	Generation    GenerationConfig    `yaml:"generation"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads .env, the optional YAML file at path, then environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setStr(&cfg.Log.Level, "LOG_LEVEL")
	setStr(&cfg.Database.Driver, "SEO_AGENT_DB_DRIVER")
	setStr(&cfg.Database.Path, "SEO_AGENT_DB_PATH")
	setStr(&cfg.Database.URL, "DATABASE_URL")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	setStr(&cfg.AI.Provider, "SEO_AGENT_AI_PROVIDER")
	setStr(&cfg.AI.DefaultModel, "SEO_AGENT_MODEL")
	setStr(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	setStr(&cfg.AI.OpenAIBaseURL, "OPENAI_BASE_URL")
	setStr(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	setStr(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setStr(&cfg.HTTP.Addr, "HTTP_ADDR")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitAndTrim(v)
	}
	if v := os.Getenv("ELASTICSEARCH_URLS"); v != "" {
		cfg.Elasticsearch.Addresses = splitAndTrim(v)
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "seo_jobs.db"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL, 24*time.Hour)
	cfg.Redis.LockTTL = normalizeTTL(cfg.Redis.LockTTL, 10*time.Minute)

	if cfg.AI.Provider == "" {
		switch {
		case cfg.AI.OpenAIKey != "":
			cfg.AI.Provider = "openai"
		case cfg.AI.GeminiKey != "":
			cfg.AI.Provider = "gemini"
		default:
			cfg.AI.Provider = "offline"
		}
	}
	if cfg.AI.DefaultModel == "" {
		switch cfg.AI.Provider {
		case "gemini":
			cfg.AI.DefaultModel = "gemini-2.0-flash"
		case "offline":
			cfg.AI.DefaultModel = "offline-v1"
		default:
			cfg.AI.DefaultModel = "gpt-4o-mini"
		}
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4000
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}
	cfg.AI.Timeout = normalizeTTL(cfg.AI.Timeout, 2*time.Minute)

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "seo-job-events"
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "seo-articles"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	cfg.HTTP.ShutdownTimeout = normalizeTTL(cfg.HTTP.ShutdownTimeout, 10*time.Second)
	cfg.HTTP.RequestTimeout = normalizeTTL(cfg.HTTP.RequestTimeout, 5*time.Minute)
	if cfg.Generation.TargetWordCount <= 0 {
		cfg.Generation.TargetWordCount = 1500
	}
	if cfg.Generation.Language == "" {
		cfg.Generation.Language = "en"
	}
}

// Validate performs minimal consistency checks.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	switch c.AI.Provider {
	case "offline":
	case "openai":
		if c.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key is required for the openai provider")
		}
	case "gemini":
		if c.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required when telegram.token is set")
	}
	return nil
}

func setStr(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
