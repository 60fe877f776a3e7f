package config

import (
	"errors"
	"fmt"
	"os"
	"time"

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

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type ASRConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	Language     string        `yaml:"language"` // optional hint, e.g. "zh", "en"
	PollInterval time.Duration `yaml:"poll_interval"`
	PollMaxTries int           `yaml:"poll_max_tries"`
}

type LLMConfig struct {
	Provider        string        `yaml:"provider"` // openai | gemini
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiBaseURL   string        `yaml:"gemini_base_url"`
	Model           string        `yaml:"model"`
	PromptDir       string        `yaml:"prompt_dir"`
	MaxPromptTokens int           `yaml:"max_prompt_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent LLM calls
}

type StorageConfig struct {
	BaseURL      string        `yaml:"base_url"` // e.g. https://<project>.supabase.co
	ServiceKey   string        `yaml:"service_key"`
	Bucket       string        `yaml:"bucket"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

type WorkerConfig struct {
	ExecutionMode string        `yaml:"execution_mode"` // queue | inline
	BatchLimit    int           `yaml:"batch_limit"`
	QueueTick     time.Duration `yaml:"queue_tick"`
	PoolSize      int           `yaml:"pool_size"`
}

type SecurityConfig struct {
	CronSecret        string        `yaml:"cron_secret"`
	ReviewTokenSecret string        `yaml:"review_token_secret"`
	ReviewTokenTTL    time.Duration `yaml:"review_token_ttl"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	ASR      ASRConfig      `yaml:"asr"`
	LLM      LLMConfig      `yaml:"llm"`
	Storage  StorageConfig  `yaml:"storage"`
	Worker   WorkerConfig   `yaml:"worker"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.Redis.CacheTTL <= 0 {
		cfg.Redis.CacheTTL = time.Hour
	}
	if cfg.Redis.LockTTL <= 0 {
		// Must outlive a full ASR poll window plus both LLM calls.
		cfg.Redis.LockTTL = 15 * time.Minute
	}
	if cfg.ASR.BaseURL == "" {
		cfg.ASR.BaseURL = "https://dashscope.aliyuncs.com/api/v1"
	}
	if cfg.ASR.Model == "" {
		cfg.ASR.Model = "qwen3-asr-flash-filetrans"
	}
	if cfg.ASR.PollInterval <= 0 {
		cfg.ASR.PollInterval = 5 * time.Second
	}
	if cfg.ASR.PollMaxTries <= 0 {
		cfg.ASR.PollMaxTries = 120
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.OpenAIBaseURL == "" {
		cfg.LLM.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-5.2"
	}
	if cfg.LLM.PromptDir == "" {
		cfg.LLM.PromptDir = "prompts"
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 120 * time.Second
	}
	if cfg.LLM.ConcurrentLimit <= 0 {
		cfg.LLM.ConcurrentLimit = 4
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "audio"
	}
	if cfg.Storage.SignedURLTTL <= 0 {
		cfg.Storage.SignedURLTTL = time.Hour
	}
	if cfg.Worker.ExecutionMode == "" {
		cfg.Worker.ExecutionMode = "queue"
	}
	if cfg.Worker.BatchLimit <= 0 {
		cfg.Worker.BatchLimit = 3
	}
	if cfg.Worker.QueueTick <= 0 {
		cfg.Worker.QueueTick = time.Minute
	}
	if cfg.Worker.PoolSize <= 0 {
		cfg.Worker.PoolSize = 2
	}
	if cfg.Security.ReviewTokenTTL <= 0 {
		cfg.Security.ReviewTokenTTL = 24 * time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.ASR.APIKey == "" {
		return nil, errors.New("asr.api_key is required")
	}
	if cfg.LLM.OpenAIKey == "" && cfg.LLM.GeminiKey == "" {
		return nil, errors.New("llm.openai_key or llm.gemini_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
