package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"refactorgen/internal/types"
)

// DefaultFile is read when no explicit config path is given and it exists
// in the working directory.
const DefaultFile = "refactorgen.toml"

type Config struct {
	LLM      LLMConfig       `toml:"llm"`
	Pipeline PipelineConfig  `toml:"pipeline"`
	Layout   types.Namespace `toml:"layout"`
	Store    StoreConfig     `toml:"store"`
	Publish  PublishConfig   `toml:"publish"`
}

type LLMConfig struct {
	Provider string  `toml:"provider"`
	Model    string  `toml:"model"`
	RPS      float64 `toml:"rps"`
	Burst    int     `toml:"burst"`
	// Keys are only taken from the environment.
	GeminiAPIKey string      `toml:"-"`
	GroqAPIKey   string      `toml:"-"`
	GroqBaseURL  string      `toml:"groq_base_url"`
	Retry        RetryConfig `toml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int      `toml:"max_attempts"`
	InitialDelay Duration `toml:"initial_delay"`
	Multiplier   float64  `toml:"multiplier"`
	MaxDelay     Duration `toml:"max_delay"`
	MaxElapsed   Duration `toml:"max_elapsed"`
}

type PipelineConfig struct {
	Threshold float64 `toml:"threshold"`
	Jobs      int     `toml:"jobs"`
	// Language names the source language in prompts.
	Language string `toml:"language"`
}

type StoreConfig struct {
	PostgresDSN string `toml:"postgres_dsn"`
	CacheSize   int    `toml:"cache_size"`
}

type PublishConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"-"`
	SecretKey string `toml:"-"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Enabled reports whether enough is configured to upload artifacts.
func (p PublishConfig) Enabled() bool {
	return strings.TrimSpace(p.Endpoint) != "" && strings.TrimSpace(p.Bucket) != ""
}

// Duration decodes TOML strings such as "500ms" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.Duration.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Burst:    1,
			Retry: RetryConfig{
				MaxAttempts:  4,
				InitialDelay: Duration{500 * time.Millisecond},
				Multiplier:   2,
				MaxDelay:     Duration{8 * time.Second},
				MaxElapsed:   Duration{2 * time.Minute},
			},
		},
		Pipeline: PipelineConfig{
			Threshold: 0.7,
			Jobs:      4,
			Language:  "Perl",
		},
		Layout: types.DefaultNamespace(),
		Store:  StoreConfig{CacheSize: 64},
		Publish: PublishConfig{
			Region: "us-east-1",
			Prefix: "refactorgen",
			UseSSL: true,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// environment (a .env file is honoured), in that order of precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if strings.TrimSpace(path) == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.Getenv)
	cfg.Layout = cfg.Layout.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges; it does not require credentials so offline
// commands (loading a saved analysis with the fake provider) still work.
func (c *Config) Validate() error {
	var errs []error
	if c.Pipeline.Threshold < 0 || c.Pipeline.Threshold > 1 {
		errs = append(errs, fmt.Errorf("pipeline.threshold must be within [0,1], got %v", c.Pipeline.Threshold))
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("llm.retry.max_attempts must be >= 1, got %d", c.LLM.Retry.MaxAttempts))
	}
	if c.LLM.Retry.Multiplier != 0 && c.LLM.Retry.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("llm.retry.multiplier must be >= 1, got %v", c.LLM.Retry.Multiplier))
	}
	switch strings.ToLower(strings.TrimSpace(c.LLM.Provider)) {
	case "gemini", "groq", "fake":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of gemini, groq, fake", c.LLM.Provider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
