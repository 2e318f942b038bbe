// Package config loads server configuration from the environment.
//
// Values come from process environment variables. A .env file in the working
// directory is read first if present; variables already set in the
// environment take precedence over it. Every problem found is reported at once
// by Validate so a misconfigured deployment can be fixed in one pass.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/sakif/code-translator/internal/generator"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Executor modes.
const (
	ExecutorDocker   = "docker"
	ExecutorLocal    = "local"
	ExecutorDisabled = "disabled"
)

// Config is the full server configuration.
type Config struct {
	Env       string
	Port      int
	LogLevel  string
	LogFormat string
	DBPath    string

	LLM      LLMConfig
	Executor ExecutorConfig
	Auth     AuthConfig

	CORSAllowedOrigins []string
}

// IsDevelopment relaxes HTTPS-only behaviour (HSTS, secure cookies by default).
func (c *Config) IsDevelopment() bool { return c.Env != EnvProduction }

// LLMConfig selects the text-generation backend.
type LLMConfig struct {
	Provider  generator.Provider
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// ExecutorConfig selects and tunes the script runner.
type ExecutorConfig struct {
	Mode             string
	AllowUnsandboxed bool
	Interpreter      string
	WorkDir          string
	Timeout          time.Duration
	Image            string
	MemoryMB         int64
	CPUs             float64
	PoolSize         int
}

// AuthConfig holds session and OAuth settings. An empty JWTSecret disables
// authentication.
type AuthConfig struct {
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Enabled reports whether sessions can be issued and verified.
func (a AuthConfig) Enabled() bool { return a.JWTSecret != "" }

// GitHubEnabled reports whether the GitHub login flow is configured.
func (a AuthConfig) GitHubEnabled() bool {
	return a.Enabled() && a.GitHubClientID != "" && a.GitHubClientSecret != ""
}

// Load reads .env (if any) and the environment, then validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. It is separate from Load so tests can
// supply their own lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	var result *multierror.Error
	e := env{getenv: getenv, errs: &result}

	cfg := &Config{
		Env:       strings.ToLower(e.str("APP_ENV", EnvDevelopment)),
		Port:      e.int("PORT", 8080),
		LogLevel:  strings.ToLower(e.str("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(e.str("LOG_FORMAT", "text")),
		DBPath:    e.str("DB_PATH", "data/translator.db"),
		LLM: LLMConfig{
			Model:     e.str("LLM_MODEL", ""),
			BaseURL:   e.str("LLM_BASE_URL", ""),
			MaxTokens: e.int("LLM_MAX_TOKENS", 2048),
			Timeout:   e.duration("LLM_TIMEOUT", 60*time.Second),
		},
		Executor: ExecutorConfig{
			Mode:             strings.ToLower(e.str("EXECUTOR_MODE", ExecutorDocker)),
			AllowUnsandboxed: e.bool("EXECUTOR_ALLOW_UNSANDBOXED", false),
			Interpreter:      e.str("EXECUTOR_INTERPRETER", "python3"),
			WorkDir:          e.str("EXECUTOR_WORKDIR", os.TempDir()),
			Timeout:          e.duration("EXECUTOR_TIMEOUT", 10*time.Second),
			Image:            e.str("EXECUTOR_IMAGE", "python:3.12-alpine"),
			MemoryMB:         int64(e.int("EXECUTOR_MEMORY_MB", 128)),
			CPUs:             e.float("EXECUTOR_CPUS", 0.5),
			PoolSize:         e.int("EXECUTOR_POOL_SIZE", 3),
		},
		Auth: AuthConfig{
			JWTSecret:          getenv("JWT_SECRET"),
			GitHubClientID:     getenv("GITHUB_CLIENT_ID"),
			GitHubClientSecret: getenv("GITHUB_CLIENT_SECRET"),
			GitHubCallbackURL:  getenv("GITHUB_CALLBACK_URL"),
		},
		CORSAllowedOrigins: e.list("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	provider, err := generator.ParseProvider(getenv("LLM_PROVIDER"))
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("LLM_PROVIDER: %w", err))
	} else {
		cfg.LLM.Provider = provider
		cfg.LLM.APIKey = getenv(apiKeyVar(provider))
	}

	if cfg.Auth.GitHubCallbackURL == "" {
		cfg.Auth.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apiKeyVar names the environment variable holding the key for p.
func apiKeyVar(p generator.Provider) string {
	switch p {
	case generator.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case generator.ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// Validate checks value ranges and combinations. A missing API key is not an
// error: the server starts and the AI endpoints report it per request.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		result = multierror.Append(result, fmt.Errorf("APP_ENV: unknown environment %q", c.Env))
	}

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("PORT: %d is out of range", c.Port))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("LOG_LEVEL: unknown level %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("LOG_FORMAT: unknown format %q", c.LogFormat))
	}

	if c.LLM.MaxTokens <= 0 {
		result = multierror.Append(result, errors.New("LLM_MAX_TOKENS: must be positive"))
	}
	if c.LLM.Timeout <= 0 {
		result = multierror.Append(result, errors.New("LLM_TIMEOUT: must be positive"))
	}

	switch c.Executor.Mode {
	case ExecutorDocker:
		if c.Executor.PoolSize < 1 {
			result = multierror.Append(result, errors.New("EXECUTOR_POOL_SIZE: must be at least 1"))
		}
		if c.Executor.MemoryMB < 16 {
			result = multierror.Append(result, errors.New("EXECUTOR_MEMORY_MB: must be at least 16"))
		}
		if c.Executor.CPUs <= 0 {
			result = multierror.Append(result, errors.New("EXECUTOR_CPUS: must be positive"))
		}
	case ExecutorLocal:
		if !c.Executor.AllowUnsandboxed {
			result = multierror.Append(result, errors.New(
				"EXECUTOR_MODE: local runs scripts with host privileges; set EXECUTOR_ALLOW_UNSANDBOXED=true to opt in"))
		}
	case ExecutorDisabled:
	default:
		result = multierror.Append(result, fmt.Errorf("EXECUTOR_MODE: unknown mode %q", c.Executor.Mode))
	}
	if c.Executor.Mode != ExecutorDisabled && c.Executor.Timeout <= 0 {
		result = multierror.Append(result, errors.New("EXECUTOR_TIMEOUT: must be positive"))
	}

	if c.Auth.GitHubClientID != "" && c.Auth.GitHubClientSecret == "" {
		result = multierror.Append(result, errors.New("GITHUB_CLIENT_SECRET: required when GITHUB_CLIENT_ID is set"))
	}

	return result.ErrorOrNil()
}

// env reads typed values and collects parse errors instead of failing fast.
type env struct {
	getenv func(string) string
	errs   **multierror.Error
}

func (e env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e env) int(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = multierror.Append(*e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (e env) float(key string, def float64) float64 {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*e.errs = multierror.Append(*e.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (e env) bool(key string, def bool) bool {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*e.errs = multierror.Append(*e.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

// duration accepts Go duration strings ("30s") or a bare number of seconds.
func (e env) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*e.errs = multierror.Append(*e.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (e env) list(key string, def []string) []string {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
