// Package app provides the application context and dependency management
// for the mltnsync CLI. It centralizes configuration, logging, and client
// construction so commands stay thin.
package app

import (
	"github.com/rs/zerolog"

	"github.com/lucab3/ml-tn-sync/internal/platforms/mercadolibre"
	"github.com/lucab3/ml-tn-sync/internal/platforms/tiendanube"
	"github.com/lucab3/ml-tn-sync/pkg/reconcile"
)

// App represents the mltnsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// SourceClient builds the Mercado Libre client from the configuration.
// Credentials are validated here; a missing credential surfaces as a
// ConfigError before any network traffic.
func (a *App) SourceClient() (*mercadolibre.Client, error) {
	return mercadolibre.New(mercadolibre.Config{
		ClientID:     a.config.MLClientID,
		ClientSecret: a.config.MLClientSecret,
		RefreshToken: a.config.MLRefreshToken,
		UserID:       a.config.MLUserID,
		BaseURL:      a.config.MLBaseURL,
		PerPage:      a.config.PerPage,
		Delay:        a.config.RequestDelay,
	})
}

// TargetClient builds the Tienda Nube client from the configuration.
func (a *App) TargetClient() (*tiendanube.Client, error) {
	return tiendanube.New(tiendanube.Config{
		AccessToken: a.config.TNAccessToken,
		StoreID:     a.config.TNStoreID,
		BaseURL:     a.config.TNBaseURL,
		PerPage:     a.config.PerPage,
		Delay:       a.config.RequestDelay,
	})
}

// Runner builds a reconciliation runner wired to both platform clients.
func (a *App) Runner(dryRun bool) (*reconcile.Runner, error) {
	source, err := a.SourceClient()
	if err != nil {
		return nil, err
	}
	target, err := a.TargetClient()
	if err != nil {
		return nil, err
	}

	return &reconcile.Runner{
		Source: source,
		Target: target,
		Options: reconcile.Options{
			Tolerance:      a.config.Tolerance,
			AbsoluteFloor:  a.config.AbsoluteFloor,
			CommissionRate: a.config.CommissionRate,
			RoundDigits:    a.config.RoundDigits,
		},
		DryRun:  dryRun,
		Workers: a.config.Workers,
		Logger:  a.logger,
	}, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
