// Package pagehost assembles the lifecycle orchestrator, navigation
// services and their supporting infrastructure into one application host.
//
// A platform source (sdlhost, power, or a test) delivers start and stop
// events to App.Handle. Everything else is configured from a TOML file and
// PAGEHOST_* environment variables.
package pagehost

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/clock"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/config"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/container"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/internal"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/locale"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/metrics"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/settings"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/splash"
)

// Options configures the host.
type Options struct {
	Application lifecycle.Application // Required
	Config      *config.Config        // Nil loads the file named by PAGEHOST_CONFIG
	Registerer  prometheus.Registerer // Nil uses a private registry
	Presenter   splash.Presenter      // Shows the splash image; nil disables the splash
	Store       settings.Store        // Overrides the configured store
	Clock       clock.Clock
	Guards      []router.Guard
	LogOutput   io.Writer // Overrides the configured log sink
}

// App is a configured host. It is safe for concurrent use.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        settings.Store
	storeCloser  io.Closer
	tracker      *lifecycle.ExecutionTracker
	orchestrator *lifecycle.Orchestrator
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	localizer    *locale.Localizer

	closeOnce sync.Once
	closed    chan struct{}
}

// New builds the host. Nothing runs until the first start event is handled.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Application == nil {
		return nil, &InfrastructureError{Op: "options", Err: errors.New("application is required")}
	}

	if os.Getenv(constants.DebugEnvVar) != "" {
		internal.SetInternalLogLevel(slog.LevelDebug)
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(os.Getenv(constants.ConfigPathEnvVar))
		if err != nil {
			return nil, &InfrastructureError{Op: "config", Err: err}
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, &InfrastructureError{Op: "config", Err: err}
	}

	if cfg.Log.Path != "" && opts.LogOutput == nil {
		internal.SetLogPath(cfg.Log.Path)
	}
	level := &slog.LevelVar{}
	level.Set(cfg.LogLevel())
	logger := internal.NewLogger(opts.LogOutput, level)

	app := &App{
		cfg:    cfg,
		logger: logger,
		closed: make(chan struct{}),
	}

	store, err := app.openStore(ctx, opts.Store)
	if err != nil {
		return nil, &InfrastructureError{Op: "store", Err: err}
	}
	app.store = store
	app.tracker = lifecycle.NewExecutionTracker(store)

	reg := opts.Registerer
	if reg == nil {
		private := prometheus.NewRegistry()
		reg, app.gatherer = private, private
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		app.gatherer = g
	}
	m, err := metrics.New(reg)
	if err != nil {
		app.closeStore()
		return nil, &InfrastructureError{Op: "metrics", Err: err}
	}
	app.metrics = m

	loc, err := locale.New(cfg.Locale)
	if err != nil {
		app.closeStore()
		return nil, &InfrastructureError{Op: "locale", Err: err}
	}
	app.localizer = loc

	var splashFactory lifecycle.SplashFactory
	if cfg.Splash.Path != "" && opts.Presenter != nil {
		splashFactory = splash.Factory(cfg.Splash.Path, cfg.Splash.Width, cfg.Splash.Height, opts.Presenter)
	}

	orch, err := lifecycle.New(lifecycle.Options{
		Application: opts.Application,
		Container:   container.New(),
		Store:       store,
		Tracker:     app.tracker,
		Clock:       opts.Clock,
		Logger:      logger,
		Splash:      splashFactory,
		Recorder:    m,
		Navigation: lifecycle.NavigationOptions{
			SameView:  cfg.SameViewPolicy(),
			CacheSize: cfg.Navigation.CacheSize,
			Guards:    opts.Guards,
			Observer:  m,
		},
		StartTimeout: cfg.Lifecycle.StartTimeout,
		StopTimeout:  cfg.Lifecycle.StopTimeout,
	})
	if err != nil {
		app.closeStore()
		return nil, &InfrastructureError{Op: "lifecycle", Err: err}
	}
	app.orchestrator = orch

	logger.Debug("Host assembled",
		"store", cfg.Store.Driver,
		"same_view", cfg.Navigation.SameView,
		"locale", loc.Tag().String())

	return app, nil
}

func (a *App) openStore(ctx context.Context, override settings.Store) (settings.Store, error) {
	if override != nil {
		return override, nil
	}
	switch a.cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := settings.OpenSQLite(ctx, a.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.storeCloser = db
		return db, nil
	default:
		return settings.NewMemory(), nil
	}
}

func (a *App) closeStore() {
	if a.storeCloser != nil {
		if err := a.storeCloser.Close(); err != nil {
			a.logger.Warn("Failed to close settings store", "error", err)
		}
	}
}

// Handle delivers one platform event to the orchestrator.
func (a *App) Handle(ctx context.Context, ev lifecycle.Event) error {
	select {
	case <-a.closed:
		return ErrClosed
	default:
	}
	return a.orchestrator.Handle(ctx, ev)
}

// NewNavigationService creates the navigation service for a frame. It fails
// with lifecycle.ErrNotReady before the first start has been handled.
func (a *App) NewNavigationService(ctx context.Context, frame string) (*router.Service, error) {
	select {
	case <-a.closed:
		return nil, ErrClosed
	default:
	}
	return a.orchestrator.NewNavigationService(ctx, frame)
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) Logger() *slog.Logger { return a.orchestrator.Logger() }
func (a *App) Store() settings.Store { return a.store }
func (a *App) Tracker() *lifecycle.ExecutionTracker { return a.tracker }
func (a *App) Orchestrator() *lifecycle.Orchestrator { return a.orchestrator }
func (a *App) Localizer() *locale.Localizer { return a.localizer }
func (a *App) Services() *router.Services { return a.orchestrator.Services() }
func (a *App) Gatherer() prometheus.Gatherer { return a.gatherer }
func (a *App) Suspension() *lifecycle.Suspension { return a.orchestrator.Suspension() }
func (a *App) Pages() *router.Registry { return a.orchestrator.Pages() }

// Close closes every navigation service and the settings store. It does
// not deliver a stop event; platforms do that before closing.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.closed)
		a.orchestrator.Services().CloseAll()
		if a.storeCloser != nil {
			err = a.storeCloser.Close()
		}
		internal.CloseLogger()
	})
	return err
}
