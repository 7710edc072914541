package tools

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Built-in tool names.
const (
	NameWebSearch = "web_search"
	NameWikipedia = "wikipedia"
	NameTime      = "current_time"
	NameCalc      = "calculator"
	NameWeather   = "weather"
	NameCurrency  = "currency_convert"
	NameCSV       = "csv_analyze"
	NameCode      = "run_code"
	NameRegex     = "regex_match"
)

// DefaultsConfig selects and tunes the built-in tools.
type DefaultsConfig struct {
	Timeout       time.Duration
	MaxRetries    uint32
	Disabled      []string
	UserAgent     string
	SearchResults int
	CodeLanguage  string
	AllowedPaths  []string
	Logger        *slog.Logger
}

// WithDefaults creates a registry holding every built-in tool that is not
// disabled. A tool that cannot be constructed is skipped with a warning,
// so a broken search backend never prevents the agent from starting.
func WithDefaults(cfg DefaultsConfig) (*Registry, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	results := cfg.SearchResults
	if results <= 0 {
		results = 5
	}

	registry := NewRegistry().
		WithExecutor(NewExecutor(ToolConfig{Timeout: timeout, MaxRetries: cfg.MaxRetries})).
		WithLogger(logger)

	disabled := make(map[string]bool, len(cfg.Disabled))
	for _, name := range cfg.Disabled {
		disabled[strings.TrimSpace(name)] = true
	}

	builders := []struct {
		name  string
		build func() (Tool, error)
	}{
		{NameWebSearch, func() (Tool, error) { return NewWebSearchTool(results, cfg.UserAgent) }},
		{NameWikipedia, func() (Tool, error) { return NewWikipediaTool(cfg.UserAgent), nil }},
		{NameTime, func() (Tool, error) { return NewTimeTool(), nil }},
		{NameCalc, func() (Tool, error) { return NewCalculatorTool(), nil }},
		{NameWeather, func() (Tool, error) { return NewWeatherTool(timeout), nil }},
		{NameCurrency, func() (Tool, error) { return NewCurrencyTool(timeout), nil }},
		{NameCSV, func() (Tool, error) { return NewCSVTool(DefaultMaxCSVBytes).WithAllowedPaths(cfg.AllowedPaths), nil }},
		{NameCode, func() (Tool, error) { return NewCodeTool(timeout, cfg.CodeLanguage), nil }},
		{NameRegex, func() (Tool, error) { return NewRegexTool(), nil }},
	}

	for _, b := range builders {
		if disabled[b.name] {
			logger.Debug("tool disabled", "tool", b.name)
			continue
		}
		t, err := b.build()
		if err != nil {
			logger.Warn("tool unavailable", "tool", b.name, "error", err)
			continue
		}
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("failed to register default tools: %w", err)
		}
	}

	return registry, nil
}

// BuiltinNames lists every built-in tool name in registration order.
func BuiltinNames() []string {
	return []string{NameWebSearch, NameWikipedia, NameTime, NameCalc, NameWeather, NameCurrency, NameCSV, NameCode, NameRegex}
}
