// Application wiring shared by every front end.
//
// Information Hiding:
// - Provider construction and credential lookup hidden
// - Tool registry and storage setup hidden
// - Resource cleanup hidden behind Close

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/richinex/galactic/config"
	"github.com/richinex/galactic/llm"
	"github.com/richinex/galactic/session"
	"github.com/richinex/galactic/storage"
	"github.com/richinex/galactic/tools"
)

// Options are command-line overrides applied on top of config files and
// the environment. Zero values leave the configured value alone.
type Options struct {
	ConfigPath  string
	Provider    string
	Model       string
	MaxIter     int
	Memory      string
	Personality string
	DBPath      string
	Verbose     bool
	// Offline swaps the model for a local stand-in; no credential needed.
	Offline bool
	// LogOutput receives logs when no log file is configured.
	LogOutput io.Writer
}

// App holds everything a front end needs to create sessions.
type App struct {
	Settings config.Settings
	Logger   *slog.Logger
	Client   *llm.Client
	Tools    *tools.Registry
	Store    storage.ConversationStorage
	Factory  *session.Factory

	closers []io.Closer
}

// Setup resolves configuration and builds the shared components. A
// missing credential fails here, before any session exists.
func Setup(ctx context.Context, opts Options) (*App, error) {
	settings, cfgPath, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyOptions(&settings, opts)
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	personality, err := session.ParsePersonality(settings.Personality)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logOut := opts.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	logger, logCloser, err := settings.Log.OpenLogger(logOut)
	if err != nil {
		return nil, err
	}
	app := &App{Settings: settings, Logger: logger, closers: []io.Closer{logCloser}}
	if cfgPath != "" {
		logger.Debug("config loaded", "path", cfgPath)
	}

	model, err := app.buildModel(opts.Offline)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Tools, err = tools.WithDefaults(settings.ToolDefaults(logger))
	if err != nil {
		app.Close()
		return nil, err
	}

	if settings.Database != "" {
		db, err := storage.OpenSqlite(settings.Database)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		app.Store = db
		app.closers = append(app.closers, db)
	}

	memCfg, err := settings.MemorySettings()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Factory = &session.Factory{
		Model:         model,
		Tools:         app.Tools,
		Memory:        memCfg,
		Instructions:  settings.Agent.Instructions,
		MaxIterations: settings.Agent.MaxIterations,
		Personality:   personality,
		Store:         app.Store,
		Logger:        logger,
	}

	logger.Info("agent ready",
		"provider", settings.LLM.Provider,
		"model", settings.LLM.Model,
		"offline", opts.Offline,
		"memory", memCfg.Policy,
		"tools", app.Tools.Len(),
		"max_iterations", settings.Agent.MaxIterations)
	return app, nil
}

func applyOptions(s *config.Settings, opts Options) {
	if opts.Provider != "" {
		if opts.Provider != s.LLM.Provider {
			// a model name never carries over between providers
			s.LLM.Model, _ = config.ModelFor(opts.Provider)
		}
		s.LLM.Provider = opts.Provider
	}
	if opts.Model != "" {
		s.LLM.Model = opts.Model
	}
	if opts.MaxIter != 0 {
		s.Agent.MaxIterations = opts.MaxIter
	}
	if opts.Memory != "" {
		s.Memory.Type = opts.Memory
	}
	if opts.Personality != "" {
		s.Personality = opts.Personality
	}
	if opts.DBPath != "" {
		s.Database = opts.DBPath
	}
	if opts.Verbose && s.Log.Level == "info" {
		s.Log.Level = "debug"
	}
}

func (a *App) buildModel(offline bool) (llm.Completer, error) {
	if offline {
		a.Logger.Warn("offline mode: answers come from a local stand-in model")
		return OfflineModel(), nil
	}

	pt, err := a.Settings.ProviderType()
	if err != nil {
		return nil, err
	}
	apiKey, err := a.Settings.APIKey()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w (set it in the environment or a .env file, or use --offline)", err)
		}
		return nil, err
	}

	provider, err := llm.NewProviderBuilder(pt).
		Model(a.Settings.LLM.Model).
		BaseURL(a.Settings.LLM.BaseURL).
		MaxTokens(a.Settings.LLM.MaxTokens).
		Temperature(float32(a.Settings.LLM.Temperature)).
		Stop(llm.StopObservation).
		APIKey(apiKey)
	if err != nil {
		return nil, err
	}
	a.Client = llm.NewClient(provider)
	a.Settings.LLM.Model = provider.Model()
	return a.Client, nil
}

// Close releases the database and log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
