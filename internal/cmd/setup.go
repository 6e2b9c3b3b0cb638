package cmd

import (
	"fmt"

	"github.com/specsmith/specsmith/internal/config"
	"github.com/specsmith/specsmith/internal/event"
	"github.com/specsmith/specsmith/internal/logging"
	"github.com/specsmith/specsmith/internal/orchestrator"
	"github.com/specsmith/specsmith/internal/persona"
	"github.com/specsmith/specsmith/internal/session"
	"github.com/specsmith/specsmith/internal/stage"
)

// deps bundles the wired collaborators behind a command.
type deps struct {
	cfg     *config.Config
	logger  *logging.Logger
	bus     *event.Bus
	panel   *persona.Panel
	orch    *orchestrator.Orchestrator
	store   *session.Store
	watcher *persona.Watcher
}

// buildDeps constructs the full pipeline from configuration.
func buildDeps(cfg *config.Config) (*deps, error) {
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	panel, err := buildPanel(cfg)
	if err != nil {
		return nil, err
	}

	var watcher *persona.Watcher
	if cfg.Personas.Watch {
		watcher, err = persona.Watch(cfg.Personas.File, panel, func(err error) {
			logger.Warn("persona reload failed", "error", err)
		})
		if err != nil {
			return nil, err
		}
	}

	bus := event.NewBus()
	client := buildClient(cfg)
	orch, err := orchestrator.New(orchestrator.Config{
		Client: client,
		Panel:  panel,
		Bus:    bus,
	}, orchestrator.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(cfg.Session.ResolveDir(),
		session.WithMaxAge(cfg.Session.MaxAge()))
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:     cfg,
		logger:  logger,
		bus:     bus,
		panel:   panel,
		orch:    orch,
		store:   store,
		watcher: watcher,
	}, nil
}

// Close releases the logger and any persona watcher.
func (d *deps) Close() {
	if d.watcher != nil {
		_ = d.watcher.Close()
	}
	if d.logger != nil {
		_ = d.logger.Close()
	}
}

func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.Level)
}

// buildPanel loads the persona panel from the configured file (or the
// built-in default) and applies the name filter.
func buildPanel(cfg *config.Config) (*persona.Panel, error) {
	var panel *persona.Panel
	if cfg.Personas.File != "" {
		loaded, err := persona.LoadFile(cfg.Personas.File)
		if err != nil {
			return nil, err
		}
		panel = loaded
	} else {
		panel = persona.DefaultPanel()
	}

	if cfg.Personas.Filter != "" {
		filtered, err := panel.Filter(cfg.Personas.Filter)
		if err != nil {
			return nil, err
		}
		if len(filtered) == 0 {
			return nil, fmt.Errorf("personas filter %q matches no enabled agents", cfg.Personas.Filter)
		}
		panel = persona.NewPanel(filtered)
	}
	return panel, nil
}

// buildClient wires the HTTP stage client, wrapped in transport-level retry
// when configured.
func buildClient(cfg *config.Config) stage.Client {
	httpClient := stage.NewHTTPClient(cfg.Endpoint.BaseURL,
		stage.WithTimeout(cfg.Endpoint.Timeout()),
		stage.WithAPIKey(cfg.Endpoint.APIKey()),
	)
	if cfg.Endpoint.MaxRetries <= 0 {
		return httpClient
	}
	return stage.NewRetryClient(httpClient,
		stage.WithMaxRetries(cfg.Endpoint.MaxRetries),
		stage.WithBaseDelay(cfg.Endpoint.RetryBaseDelay()),
	)
}
