// Package app provides the application context and dependency management
// for the placement CLI: configuration, logging and the lazily created
// placement client shared by every command.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/placement"
	"github.com/agentstation/placement/internal/cmd/output"
	"github.com/agentstation/placement/pkg/backend"
	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/errors"
)

// App represents the placement application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client placement.Client
	api    backend.API
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment that can
// be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
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

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, or the format suited to stdout
// when none was given.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// ServerAddress returns the bind address of the mock backend.
func (a *App) ServerAddress() (string, int) {
	host, port := a.config.ServerHost, a.config.ServerPort
	if host == "" {
		host = constants.DefaultServerHost
	}
	if port == 0 {
		port = constants.DefaultServerPort
	}
	return host, port
}

// Client returns the placement client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (placement.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := placement.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = c
	return c, nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []placement.Option {
	opts := []placement.Option{
		placement.WithLogger(a.logger),
	}
	if a.api != nil {
		return append(opts, placement.WithAPI(a.api))
	}

	opts = append(opts, placement.WithBaseURL(a.config.APIURL))
	if a.config.HTTPTimeout > 0 {
		opts = append(opts, placement.WithTimeout(a.config.HTTPTimeout))
	}
	if a.config.APIKey != "" {
		opts = append(opts, placement.WithAPIKey(a.config.APIKey))
	}
	return opts
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

// WithClient sets a custom client instance (useful for testing).
func WithClient(c placement.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithAPI makes the lazily created client talk to api instead of the
// configured URL.
func WithAPI(api backend.API) Option {
	return func(a *App) error {
		a.api = api
		return nil
	}
}
