package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names an optional YAML file layered under the environment.
const ConfigPathEnvVar = "CLASSIFY_CONFIG"

// DefaultConfigPaths are searched when CLASSIFY_CONFIG is unset.
var DefaultConfigPaths = []string{"config.yaml", "cmd/config.yaml"}

// Config holds application configuration.
type Config struct {
	Port             string   `koanf:"port"`
	Env              string   `koanf:"env"`
	DatabaseURL      string   `koanf:"database_url"`
	CORSAllowOrigins []string `koanf:"cors_allow_origins"`
	LogLevel         string   `koanf:"log_level"`
	LogFormat        string   `koanf:"log_format"`

	OpenAIAPIKey         string  `koanf:"openai_api_key"`
	OpenAIModel          string  `koanf:"openai_model"`
	OpenAIBaseURL        string  `koanf:"openai_base_url"`
	OpenAITimeoutSeconds int     `koanf:"openai_timeout_seconds"`
	LLMTemperature       float64 `koanf:"llm_temperature"`
	LLMMaxTokens         int     `koanf:"llm_max_tokens"`

	// LLMBreakerFailures is the consecutive failure count that opens the breaker; 0 disables it.
	LLMBreakerFailures int           `koanf:"llm_breaker_failures"`
	LLMBreakerCooldown time.Duration `koanf:"llm_breaker_cooldown"`

	// ClassifyRatePerSec limits POST /classify/ per client; 0 disables the limit.
	ClassifyRatePerSec float64 `koanf:"classify_rate_per_sec"`
	ClassifyRateBurst  int     `koanf:"classify_rate_burst"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Port:                 "8000",
		Env:                  "dev",
		CORSAllowOrigins:     []string{"http://localhost:3000"},
		LogLevel:             "info",
		LogFormat:            "json",
		OpenAIModel:          "gpt-4o-mini",
		OpenAIBaseURL:        "https://api.openai.com/v1",
		OpenAITimeoutSeconds: 60,
		LLMTemperature:       0.7,
		LLMMaxTokens:         2000,
		LLMBreakerFailures:   5,
		LLMBreakerCooldown:   30 * time.Second,
		ClassifyRateBurst:    5,
	}
}

// OpenAIConfigured reports whether a completion credential is present.
func (c Config) OpenAIConfigured() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// Load reads configuration: defaults, then an optional YAML file, then environment variables.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	if raw, ok := k.Get("cors_allow_origins").(string); ok {
		if err := k.Set("cors_allow_origins", splitAndTrim(raw)); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Env = normalizeEnv(cfg.Env)
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Env == "production" && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLMTemperature)
	}
	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens)
	}
	if c.ClassifyRatePerSec < 0 {
		return fmt.Errorf("CLASSIFY_RATE_PER_SEC must not be negative")
	}
	return nil
}

// knownKeys lists the environment variables mapped onto Config; others are ignored.
var knownKeys = map[string]struct{}{
	"port": {}, "env": {}, "database_url": {}, "cors_allow_origins": {},
	"log_level": {}, "log_format": {},
	"openai_api_key": {}, "openai_model": {}, "openai_base_url": {}, "openai_timeout_seconds": {},
	"llm_temperature": {}, "llm_max_tokens": {}, "llm_breaker_failures": {}, "llm_breaker_cooldown": {},
	"classify_rate_per_sec": {}, "classify_rate_burst": {},
}

// envValue maps a known variable onto its config key. Empty values keep the lower layers.
func envValue(key, value string) (string, any) {
	k := strings.ToLower(key)
	if _, ok := knownKeys[k]; !ok || strings.TrimSpace(value) == "" {
		return "", nil
	}
	return k, value
}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
