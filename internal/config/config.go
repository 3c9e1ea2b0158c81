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

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	Secret       string        `yaml:"secret"`
	CookieDomain string        `yaml:"cookie_domain"`
	SecureCookie bool          `yaml:"secure_cookie"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// OwnerConfig identifies the single privileged principal. An empty
// email disables owner provisioning entirely.
type OwnerConfig struct {
	Email string `yaml:"email"`
}

type AIConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	GeminiKey    string `yaml:"gemini_key"`
	GeminiURL    string `yaml:"gemini_url"`
	DefaultModel string `yaml:"default_model"`
	SystemPrompt string `yaml:"system_prompt"`
}

type RateLimitConfig struct {
	RedeemAttempts int           `yaml:"redeem_attempts"`
	RedeemWindow   time.Duration `yaml:"redeem_window"`
}

type JournalConfig struct {
	NoteLinkWindow time.Duration `yaml:"note_link_window"`
}

type SchedulerConfig struct {
	TrialCheckInterval time.Duration `yaml:"trial_check_interval"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Owner     OwnerConfig     `yaml:"owner"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Journal   JournalConfig   `yaml:"journal"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

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
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.RateLimit.RedeemAttempts <= 0 {
		cfg.RateLimit.RedeemAttempts = 5
	}
	if cfg.RateLimit.RedeemWindow <= 0 {
		cfg.RateLimit.RedeemWindow = time.Minute
	}
	if cfg.Journal.NoteLinkWindow <= 0 {
		cfg.Journal.NoteLinkWindow = 12 * time.Hour
	}
	if cfg.Scheduler.TrialCheckInterval <= 0 {
		cfg.Scheduler.TrialCheckInterval = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth.secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
