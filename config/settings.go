// Package config provides application settings.
//
// Settings are resolved in layers:
// - built-in defaults (Default)
// - an optional YAML file (Load)
// - environment variables (ApplyEnv), which always win
//
// Validate fails fast on anything that would stop a session from starting.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/memory"
	"github.com/richinex/galactic/tools"
)

// ErrMissingAPIKey is returned when the selected provider needs a
// credential and none is configured.
var ErrMissingAPIKey = errors.New("missing API key")

// Settings holds all application configuration.
type Settings struct {
	LLM         LLMConfig    `yaml:"llm"`
	Agent       AgentConfig  `yaml:"agent"`
	Memory      MemoryConfig `yaml:"memory"`
	Tools       ToolsConfig  `yaml:"tools"`
	Log         LogConfig    `yaml:"log"`
	Server      ServerConfig `yaml:"server"`
	Personality string       `yaml:"personality"`
	// Database is the SQLite transcript path; empty disables persistence.
	Database string `yaml:"database"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	MaxTokens   uint32  `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// AgentConfig holds agent execution configuration.
type AgentConfig struct {
	MaxIterations int    `yaml:"max_iterations"`
	Instructions  string `yaml:"instructions"`
}

// MemoryConfig selects the conversation memory policy.
type MemoryConfig struct {
	Type          string `yaml:"type"`
	WindowSize    int    `yaml:"window_size"`
	MaxTokenLimit int    `yaml:"max_token_limit"`
}

// ToolsConfig tunes the built-in tools.
type ToolsConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    uint32        `yaml:"max_retries"`
	Disabled      []string      `yaml:"disabled"`
	UserAgent     string        `yaml:"user_agent"`
	SearchResults int           `yaml:"search_results"`
	CodeLanguage  string        `yaml:"code_language"`
	AllowedPaths  []string      `yaml:"allowed_paths"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		LLM: LLMConfig{
			Provider:    llm.ProviderGemini.String(),
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Agent: AgentConfig{MaxIterations: 7},
		Memory: MemoryConfig{
			Type:          string(memory.PolicyBuffer),
			WindowSize:    memory.DefaultWindowSize,
			MaxTokenLimit: memory.DefaultTokenBudget,
		},
		Tools: ToolsConfig{
			Timeout:       tools.DefaultToolTimeout,
			MaxRetries:    2,
			UserAgent:     tools.DefaultUserAgent,
			SearchResults: 5,
			CodeLanguage:  "python",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server:      ServerConfig{Addr: ":8080"},
		Personality: "Professional",
	}
}

// New returns defaults overridden by the environment.
func New() (Settings, error) {
	s := Default()
	if err := s.ApplyEnv(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ApplyEnv overrides fields from environment variables.
func (s *Settings) ApplyEnv() error {
	var err error
	setString(&s.LLM.Provider, "GALACTIC_PROVIDER")

	pt, perr := llm.ParseProviderType(s.LLM.Provider)
	if perr == nil {
		setString(&s.LLM.Model, strings.ToUpper(pt.String())+"_MODEL")
		setString(&s.LLM.BaseURL, strings.ToUpper(pt.String())+"_BASE_URL")
	}
	if s.LLM.MaxTokens, err = getEnvUint32("LLM_MAX_TOKENS", s.LLM.MaxTokens); err != nil {
		return err
	}
	if s.LLM.Temperature, err = getEnvFloat64("LLM_TEMPERATURE", s.LLM.Temperature); err != nil {
		return err
	}
	if s.Agent.MaxIterations, err = getEnvInt("AGENT_MAX_ITERATIONS", s.Agent.MaxIterations); err != nil {
		return err
	}
	setString(&s.Memory.Type, "MEMORY_TYPE")
	if s.Memory.WindowSize, err = getEnvInt("MEMORY_WINDOW_SIZE", s.Memory.WindowSize); err != nil {
		return err
	}
	if s.Memory.MaxTokenLimit, err = getEnvInt("MAX_TOKEN_LIMIT", s.Memory.MaxTokenLimit); err != nil {
		return err
	}
	if s.Tools.Timeout, err = getEnvDuration("TOOL_TIMEOUT", s.Tools.Timeout); err != nil {
		return err
	}
	if v := os.Getenv("GALACTIC_DISABLED_TOOLS"); v != "" {
		s.Tools.Disabled = splitList(v)
	}
	setString(&s.Personality, "GALACTIC_PERSONALITY")
	setString(&s.Log.Level, "LOG_LEVEL")
	setString(&s.Log.Format, "LOG_FORMAT")
	setString(&s.Log.File, "LOG_FILE")
	setString(&s.Database, "GALACTIC_DB")
	setString(&s.Server.Addr, "GALACTIC_ADDR")
	return nil
}

// Validate checks the settings without touching the network.
func (s Settings) Validate() error {
	if _, err := s.ProviderType(); err != nil {
		return err
	}
	if s.Agent.MaxIterations < 1 {
		return fmt.Errorf("agent max iterations must be at least 1, got %d", s.Agent.MaxIterations)
	}
	policy, err := memory.ParsePolicy(s.Memory.Type)
	if err != nil {
		return err
	}
	if policy == memory.PolicyWindow && s.Memory.WindowSize < 1 {
		return fmt.Errorf("memory window size must be at least 1, got %d", s.Memory.WindowSize)
	}
	if policy == memory.PolicySummary && s.Memory.MaxTokenLimit < 1 {
		return fmt.Errorf("memory token limit must be at least 1, got %d", s.Memory.MaxTokenLimit)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", s.LLM.Temperature)
	}
	if s.Tools.Timeout <= 0 {
		return fmt.Errorf("tool timeout must be positive, got %s", s.Tools.Timeout)
	}
	if _, err := ParseLogLevel(s.Log.Level); err != nil {
		return err
	}
	return nil
}

// ProviderType resolves the configured provider name.
func (s Settings) ProviderType() (llm.ProviderType, error) {
	return llm.ParseProviderType(s.LLM.Provider)
}

// MemorySettings converts the memory settings for memory.New.
func (s Settings) MemorySettings() (memory.Config, error) {
	policy, err := memory.ParsePolicy(s.Memory.Type)
	if err != nil {
		return memory.Config{}, err
	}
	return memory.Config{
		Policy:      policy,
		WindowSize:  s.Memory.WindowSize,
		TokenBudget: s.Memory.MaxTokenLimit,
	}, nil
}

// APIKey returns the credential for the configured provider. Providers
// that need none return an empty key.
func (s Settings) APIKey() (string, error) {
	if s.LLM.APIKey != "" {
		return s.LLM.APIKey, nil
	}
	pt, err := s.ProviderType()
	if err != nil {
		return "", err
	}
	if !pt.RequiresKey() {
		return "", nil
	}
	return APIKeyFor(pt.String())
}

// APIKeyFor returns the API key for a provider from environment variables.
// Gemini also accepts GOOGLE_API_KEY.
func APIKeyFor(provider string) (string, error) {
	pt, err := llm.ParseProviderType(provider)
	if err != nil {
		return "", err
	}
	envVar := pt.EnvVar()
	if envVar == "" {
		return "", nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	if pt == llm.ProviderGemini {
		if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %s environment variable not set", ErrMissingAPIKey, envVar)
}

// ModelFor returns the <PROVIDER>_MODEL override for a provider, or the
// provider's default model.
func ModelFor(provider string) (string, error) {
	pt, err := llm.ParseProviderType(provider)
	if err != nil {
		return "", err
	}
	if val := os.Getenv(strings.ToUpper(pt.String()) + "_MODEL"); val != "" {
		return val, nil
	}
	return pt.DefaultModel(), nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	return []string{
		llm.ProviderGemini.String(),
		llm.ProviderOpenAI.String(),
		llm.ProviderAnthropic.String(),
		llm.ProviderDeepSeek.String(),
		llm.ProviderOllama.String(),
		llm.ProviderLangChain.String(),
	}
}

// Environment variable helpers with proper error handling

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

// getEnvDuration accepts Go durations ("10s") or bare seconds ("10").
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}

// ToolDefaults converts the tool settings for tools.WithDefaults.
func (s Settings) ToolDefaults(logger *slog.Logger) tools.DefaultsConfig {
	return tools.DefaultsConfig{
		Timeout:       s.Tools.Timeout,
		MaxRetries:    s.Tools.MaxRetries,
		Disabled:      s.Tools.Disabled,
		UserAgent:     s.Tools.UserAgent,
		SearchResults: s.Tools.SearchResults,
		CodeLanguage:  s.Tools.CodeLanguage,
		AllowedPaths:  s.Tools.AllowedPaths,
		Logger:        logger,
	}
}
