package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Digital-Shane/cinemabot/internal/bot"
	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"github.com/Digital-Shane/cinemabot/internal/catalog/builtin"
	"github.com/Digital-Shane/cinemabot/internal/config"
	"github.com/Digital-Shane/cinemabot/internal/log"
)

// loadConfig reads the config file and applies command line overrides on
// top of the file and environment.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.LogFormat = flags.logFormat
	}
	if flags.catalog != "" {
		cfg.Catalog = flags.catalog
	}
	if flags.fixturePath != "" {
		cfg.FixturePath = flags.fixturePath
		if flags.catalog == "" {
			cfg.Catalog = builtin.Fixture
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger and makes it the slog default.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := log.New(cfg.LogLevel, cfg.LogFormat, w)
	slog.SetDefault(logger)
	return logger
}

// openCatalog builds the configured catalog through the global registry.
func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Catalog, error) {
	if err := builtin.LoadBuiltinCatalogs(catalog.GlobalRegistry); err != nil {
		return nil, err
	}
	return catalog.GlobalRegistry.Open(ctx, cfg.Catalog, catalog.Options{
		Logger:   logger,
		Settings: cfg.CatalogSettings(),
	})
}

// newHandler wires a bot handler from the config.
func newHandler(cfg *config.Config, c catalog.Catalog, logger *slog.Logger) (*bot.Handler, error) {
	return bot.New(bot.Options{
		Catalog:       c,
		Logger:        logger,
		PosterProfile: cfg.PosterProfile,
		ListLimit:     cfg.ListLimit,
		WatchLayout:   cfg.WatchLayout.Layout(),
		ResultsLayout: cfg.ResultsLayout.Layout(),
		CallbackTTL:   cfg.CallbackTTL(),
		MaxWait:       cfg.MaxWait(),
	})
}

// setup runs the steps shared by every command that talks to the catalog.
func setup(ctx context.Context, flags *globalFlags, logOut io.Writer) (*config.Config, *slog.Logger, *bot.Handler, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg, logOut)

	c, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	h, err := newHandler(cfg, c, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, h, nil
}
