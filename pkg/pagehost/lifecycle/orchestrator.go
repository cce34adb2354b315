package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/clock"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/container"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/settings"
)

// Registrar is handed to Application.RegisterTypes during the one-time
// initialization.
type Registrar struct {
	Container container.Registry
	Pages     *router.Registry
}

// Application is the program being hosted. It may also implement any of
// Initializer, Starter, AsyncStarter, Stopper and AsyncStopper.
type Application interface {
	RegisterTypes(r Registrar) error
}

// Initializer runs once, after the container is finalized.
type Initializer interface {
	OnInitialized(ctx context.Context, p container.Provider) error
}

// Starter runs on every start, with the event after reclassification.
type Starter interface {
	OnStart(ev *StartEvent) error
}

// AsyncStarter runs after Starter. The context carries the start timeout.
type AsyncStarter interface {
	OnStartAsync(ctx context.Context, ev *StartEvent) error
}

// Stopper runs on every stop.
type Stopper interface {
	OnStop(ev *StopEvent) error
}

// AsyncStopper runs after Stopper. The context carries the stop timeout.
type AsyncStopper interface {
	OnStopAsync(ctx context.Context, ev *StopEvent) error
}

// SplashFactory shows the extended splash screen for a launch. The
// returned closer dismisses it once the start sequence has finished.
type SplashFactory func(ctx context.Context, ev *StartEvent) (io.Closer, error)

// Recorder receives lifecycle measurements.
type Recorder interface {
	ObserveStart(kind string, elapsed time.Duration)
	ObserveStop(kind string, elapsed time.Duration)
	ObserveExtensionFailure(op string)
}

// NavigationOptions are applied to every navigation service the
// orchestrator creates.
type NavigationOptions struct {
	SameView  router.SameViewPolicy
	CacheSize int
	Guards    []router.Guard
	Observer  router.Observer
}

// Options configures an Orchestrator. Application, Container and Store are
// required.
type Options struct {
	Application  Application
	Container    container.Extension
	Pages        *router.Registry
	Services     *router.Services
	Store        settings.Store
	Tracker      *ExecutionTracker
	Clock        clock.Clock
	Logger       *slog.Logger // Used until the container provides one
	Splash       SplashFactory
	Recorder     Recorder
	Navigation   NavigationOptions
	StartTimeout time.Duration
	StopTimeout  time.Duration
}

// Orchestrator is the single entry point for every start and stop callback
// the platform delivers.
//
// Starts are single-flight: a start that arrives while another is running
// waits for it and then runs as an Activate. One-time initialization runs
// on the first start only. Stops always complete their deferral.
type Orchestrator struct {
	app          Application
	container    container.Extension
	pages        *router.Registry
	services     *router.Services
	store        settings.Store
	suspension   *Suspension
	tracker      *ExecutionTracker
	clock        clock.Clock
	splash       SplashFactory
	recorder     Recorder
	navigation   NavigationOptions
	startTimeout time.Duration
	stopTimeout  time.Duration

	gate         chan struct{}
	started      *atomic.Int32
	initialized  *atomic.Int32
	ready        *atomic.Bool
	surfaceReady *atomic.Bool
	lastStart    *atomic.Int32
	initErr      error // guarded by gate

	logMu  sync.RWMutex
	logger *slog.Logger
}

var _ Handler = (*Orchestrator)(nil)

func New(opts Options) (*Orchestrator, error) {
	if opts.Application == nil {
		return nil, errors.New("lifecycle: application is required")
	}
	if opts.Container == nil {
		return nil, errors.New("lifecycle: container is required")
	}
	if opts.Store == nil {
		return nil, errors.New("lifecycle: settings store is required")
	}
	if opts.Pages == nil {
		opts.Pages = router.NewRegistry()
	}
	if opts.Services == nil {
		opts.Services = router.NewServices()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = constants.DefaultStartTimeout
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = constants.DefaultStopTimeout
	}

	return &Orchestrator{
		app:          opts.Application,
		container:    opts.Container,
		pages:        opts.Pages,
		services:     opts.Services,
		store:        opts.Store,
		suspension:   NewSuspension(opts.Store, opts.Clock),
		tracker:      opts.Tracker,
		clock:        opts.Clock,
		splash:       opts.Splash,
		recorder:     opts.Recorder,
		navigation:   opts.Navigation,
		startTimeout: opts.StartTimeout,
		stopTimeout:  opts.StopTimeout,
		gate:         make(chan struct{}, 1),
		started:      atomic.NewInt32(0),
		initialized:  atomic.NewInt32(0),
		ready:        atomic.NewBool(false),
		surfaceReady: atomic.NewBool(false),
		lastStart:    atomic.NewInt32(int32(Launch)),
		logger:       opts.Logger,
	}, nil
}

// Logger returns the container's logger once initialized, and the
// bootstrap logger before that.
func (o *Orchestrator) Logger() *slog.Logger {
	o.logMu.RLock()
	defer o.logMu.RUnlock()
	return o.logger
}

func (o *Orchestrator) Services() *router.Services { return o.services }

func (o *Orchestrator) Pages() *router.Registry { return o.pages }

func (o *Orchestrator) Suspension() *Suspension { return o.suspension }

// Ready reports whether the container has been finalized.
func (o *Orchestrator) Ready() bool { return o.ready.Load() }

// Handle processes one platform event. It returns an error only for fatal
// conditions: a failed splash screen, failed initialization, or ctx ending
// while waiting for another start to finish.
func (o *Orchestrator) Handle(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case *StartEvent:
		return o.start(ctx, e)
	case *StopEvent:
		return o.stop(ctx, e)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func (o *Orchestrator) start(ctx context.Context, ev *StartEvent) error {
	select {
	case o.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-o.gate }()

	began := o.clock.Now()
	raw := ev.Kind
	if o.started.Inc() > 1 && ev.Kind == Launch {
		ev.Kind = Activate
	}

	if ev.Kind == Launch && o.splash != nil && !o.surfaceReady.Load() {
		surface, err := o.showSplash(ctx, ev)
		if err != nil {
			o.Logger().Error("Extended splash screen failed", "error", err)
			return &SplashError{Err: err}
		}
		defer func() {
			if err := surface.Close(); err != nil {
				o.Logger().Warn("Dismissing splash screen failed", "error", err)
			}
		}()
	}

	resuming, args, err := o.suspension.IsResuming(ctx, ev)
	if err != nil {
		o.Logger().Warn("Resume check failed, treating start as fresh", "error", err)
	} else if resuming {
		ev.Kind = ResumeFromTerminate
		ev.Args = *args
	}
	if err := o.suspension.ClearSuspendMarker(ctx); err != nil {
		o.Logger().Warn("Clearing suspend marker failed", "error", err)
	}

	if err := o.initialize(ctx); err != nil {
		return err
	}
	o.lastStart.Store(int32(ev.Kind))

	if o.tracker != nil {
		if err := o.tracker.MarkRunning(ctx); err != nil {
			o.Logger().Warn("Recording execution state failed", "error", err)
		}
	}

	o.Logger().Info("Starting", "kind", ev.Kind.String(), "raw_kind", raw.String(),
		"previous_state", ev.PreviousState().String())

	if s, ok := o.app.(Starter); ok {
		o.runHook("on_start", func() error { return s.OnStart(ev) })
	}
	if s, ok := o.app.(AsyncStarter); ok {
		o.runHookWithTimeout(ctx, "on_start_async", o.startTimeout, func(ctx context.Context) error {
			return s.OnStartAsync(ctx, ev)
		})
	}

	o.surfaceReady.Store(true)
	if o.recorder != nil {
		o.recorder.ObserveStart(ev.Kind.String(), o.clock.Now().Sub(began))
	}
	return nil
}

func (o *Orchestrator) showSplash(ctx context.Context, ev *StartEvent) (surface io.Closer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("splash factory panicked: %v", r)
		}
	}()
	surface, err = o.splash(ctx, ev)
	if err == nil && surface == nil {
		err = errors.New("splash factory returned no surface")
	}
	return surface, err
}

// initialize runs the one-time container setup on the first start and
// replays its result on every later one. Callers hold the gate.
func (o *Orchestrator) initialize(ctx context.Context) error {
	if o.initialized.Inc() != 1 {
		return o.initErr
	}
	o.initErr = o.doInitialize(ctx)
	if o.initErr != nil {
		o.Logger().Error("Initialization failed", "error", o.initErr)
	}
	return o.initErr
}

func (o *Orchestrator) doInitialize(ctx context.Context) error {
	registrar := Registrar{Container: o.container, Pages: o.pages}
	if err := o.protect(func() error { return o.app.RegisterTypes(registrar) }); err != nil {
		return &InitError{Op: "register_types", Err: err}
	}

	internal := map[string]any{
		constants.LoggerName:             o.Logger(),
		constants.SettingsName:           o.store,
		constants.NavigationServicesName: o.services,
	}
	for name, value := range internal {
		if o.container.IsRegistered(name) {
			continue
		}
		if err := o.container.RegisterInstance(name, value); err != nil {
			return &InitError{Op: "register_internal", Err: err}
		}
	}

	if err := o.container.Finalize(); err != nil {
		return &InitError{Op: "finalize", Err: err}
	}
	logger, err := container.Resolve[*slog.Logger](o.container, constants.LoggerName)
	if err != nil {
		return &InitError{Op: "resolve_logger", Err: err}
	}
	o.logMu.Lock()
	o.logger = logger
	o.logMu.Unlock()

	o.pages.Freeze()
	o.ready.Store(true)
	o.Logger().Debug("Container finalized", "pages", o.pages.Keys())

	if i, ok := o.app.(Initializer); ok {
		if err := o.protect(func() error { return i.OnInitialized(ctx, o.container) }); err != nil {
			return &InitError{Op: "on_initialized", Err: err}
		}
	}
	return nil
}

func (o *Orchestrator) stop(ctx context.Context, ev *StopEvent) error {
	defer ev.Deferral().Complete()
	began := o.clock.Now()

	if ev.Kind == Suspending {
		at, err := o.suspension.MarkSuspended(ctx)
		if err != nil {
			o.Logger().Error("Persisting suspend marker failed", "error", err)
		}
		if o.tracker != nil {
			if err := o.tracker.MarkSuspended(ctx); err != nil {
				o.Logger().Warn("Recording execution state failed", "error", err)
			}
		}
		if err := o.services.SaveAll(ctx, o.store); err != nil {
			o.Logger().Error("Saving navigation state failed", "error", err)
		}
		o.Logger().Info("Suspending", "at", at)
	} else if o.tracker != nil {
		if err := o.tracker.MarkStopped(ctx); err != nil {
			o.Logger().Warn("Recording execution state failed", "error", err)
		}
	}

	if s, ok := o.app.(Stopper); ok {
		o.runHook("on_stop", func() error { return s.OnStop(ev) })
	}
	if s, ok := o.app.(AsyncStopper); ok {
		o.runHookWithTimeout(ctx, "on_stop_async", o.stopTimeout, func(ctx context.Context) error {
			return s.OnStopAsync(ctx, ev)
		})
	}

	if o.recorder != nil {
		o.recorder.ObserveStop(ev.Kind.String(), o.clock.Now().Sub(began))
	}
	return nil
}

// protect runs fn and turns a panic into an error.
func (o *Orchestrator) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (o *Orchestrator) runHook(op string, fn func() error) error {
	if err := o.protect(fn); err != nil {
		return o.hookFailed(op, err)
	}
	return nil
}

// runHookWithTimeout stops waiting for fn when the timeout passes. A hook
// that ignores its context keeps running in the background.
func (o *Orchestrator) runHookWithTimeout(ctx context.Context, op string, timeout time.Duration, fn func(context.Context) error) error {
	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- o.protect(func() error { return fn(hookCtx) })
	}()

	select {
	case err := <-done:
		if err != nil {
			return o.hookFailed(op, err)
		}
		return nil
	case <-hookCtx.Done():
		return o.hookFailed(op, hookCtx.Err())
	}
}

func (o *Orchestrator) hookFailed(op string, err error) error {
	extErr := &ExtensionError{Op: op, Err: err}
	o.Logger().Error("Application hook failed", "op", op, "error", err)
	if o.recorder != nil {
		o.recorder.ObserveExtensionFailure(op)
	}
	return extErr
}

// NewNavigationService creates the navigation service for a new frame.
// When the last start was a resume after termination, the frame's saved
// history is restored.
func (o *Orchestrator) NewNavigationService(ctx context.Context, name string) (*router.Service, error) {
	if !o.ready.Load() {
		return nil, ErrNotReady
	}
	svc, err := router.NewService(name, router.Options{
		Registry:  o.pages,
		Container: o.container,
		Services:  o.services,
		Logger:    o.Logger(),
		Observer:  o.navigation.Observer,
		SameView:  o.navigation.SameView,
		CacheSize: o.navigation.CacheSize,
		Guards:    o.navigation.Guards,
	})
	if err != nil {
		return nil, err
	}

	if StartKind(o.lastStart.Load()) == ResumeFromTerminate {
		restored, err := svc.RestoreState(ctx, o.store)
		switch {
		case err != nil:
			o.Logger().Warn("Restoring navigation state failed", "frame", name, "error", err)
		case restored:
			o.Logger().Info("Restored navigation state", "frame", name)
		}
	}
	return svc, nil
}
