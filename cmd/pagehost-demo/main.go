// pagehost-demo runs a three page application on the pagehost framework.
//
// With --headless it drives a scripted session (launch, navigate, suspend,
// terminate, resume) and prints each result. Without it the session runs
// in an SDL window and, on devices with a power key, the power button
// suspends and exits the application.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/config"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/container"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/menu"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/metrics"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/platform/power"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/platform/sdlhost"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

func init() {
	// SDL must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envFile     string
		configPath  string
		headless    bool
		metricsAddr string
		powerDevice string
	)

	flagSet := pflag.NewFlagSet("pagehost-demo", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "load environment variables from this file if it exists")
	flagSet.StringVar(&configPath, "config", "", "TOML configuration file (default: $PAGEHOST_CONFIG)")
	flagSet.BoolVar(&headless, "headless", false, "run the scripted session without a window")
	flagSet.StringVar(&metricsAddr, "metrics", "", "serve Prometheus metrics on this address (default: $PAGEHOST_METRICS)")
	flagSet.StringVar(&powerDevice, "power-device", "", "evdev node of the power button; empty disables it")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env (%s): %w", envFile, err)
	}

	if configPath == "" {
		configPath = os.Getenv(constants.ConfigPathEnvVar)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if metricsAddr == "" {
		metricsAddr = os.Getenv(constants.MetricsAddrEnvVar)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	demo := &demoApp{}
	var host *sdlhost.Host
	opts := pagehost.Options{Application: demo, Config: cfg}
	if !headless {
		host, err = sdlhost.New(sdlhost.Options{
			Title:  "pagehost demo",
			Width:  int32(cfg.Splash.Width),
			Height: int32(cfg.Splash.Height),
			Logger: slog.Default(),
		})
		if err != nil {
			return err
		}
		defer host.Close()
		opts.Presenter = host
	}

	app, err := pagehost.New(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	demo.host = app

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           metrics.Handler(app.Gatherer()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Logger().Error("Metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	if headless {
		return scripted(ctx, app, demo)
	}

	if powerDevice != "" {
		buttonCfg := power.DefaultConfig()
		buttonCfg.DevicePath = powerDevice
		button := power.New(buttonCfg, app, app.Logger())
		go func() {
			if err := button.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				app.Logger().Warn("Power button watcher stopped", "error", err)
			}
		}()
	}

	host.UseTracker(app.Tracker())
	return host.Run(ctx, app)
}

// scripted launches, walks the pages and suspends. Running it again with the
// sqlite store resumes where the previous run stopped.
func scripted(ctx context.Context, app *pagehost.App, demo *demoApp) error {
	loc := app.Localizer()

	previous, err := app.Tracker().Previous(ctx)
	if err != nil {
		return err
	}
	if err := app.Handle(ctx, lifecycle.NewStartEvent(lifecycle.Launch, lifecycle.LaunchArgs{
		PreviousState: previous,
		Arguments:     os.Args[1:],
	})); err != nil {
		return err
	}
	fmt.Println(loc.DescribeStart(demo.lastKind()))

	nav, err := app.NewNavigationService(ctx, constants.DefaultFrameName)
	if err != nil {
		return err
	}

	m := menu.New(nav, []menu.Item{
		{Text: "Home", NavigationURI: "Home"},
		{Text: "Library", NavigationURI: "Library?sort=name"},
	}, menu.Options{Logger: app.Logger()})
	defer m.Close()

	// A resumed frame already shows the page the user left.
	if _, _, current := nav.Current(); !current {
		report(loc.Describe(nav.Navigate("Home", nil, nil)), nav)
	}
	report(loc.Describe(m.Select(1)), nav)
	report(loc.Describe(nav.Navigate("Detail?id=42", nil, nil)), nav)
	report(loc.Describe(nav.Navigate("Missing", nil, nil)), nav)
	report(loc.Describe(nav.GoBack(nil, nil)), nav)
	fmt.Println(loc.HistoryDepth(len(nav.Frame().BackStack())))

	return app.Handle(ctx, lifecycle.NewStopEvent(lifecycle.Suspending, nil, nil))
}

func report(msg string, nav *router.Service) {
	entry, params, ok := nav.Current()
	if !ok {
		fmt.Println(msg)
		return
	}
	fmt.Printf("%s: %s?%s\n", msg, entry.View, params.String())
}

type demoApp struct {
	host *pagehost.App
	last lifecycle.StartKind
}

func (d *demoApp) RegisterTypes(r lifecycle.Registrar) error {
	for _, page := range []string{"Home", "Library", "Detail"} {
		vmName := page + "ViewModel"
		if err := r.Container.Register(vmName, newPageFactory(page)); err != nil {
			return err
		}
		if err := r.Pages.Register(page, page+"Page", vmName); err != nil {
			return err
		}
	}
	return nil
}

func (d *demoApp) OnStart(ev *lifecycle.StartEvent) error {
	d.last = ev.Kind
	return nil
}

func (d *demoApp) lastKind() lifecycle.StartKind { return d.last }

func (d *demoApp) OnStopAsync(ctx context.Context, ev *lifecycle.StopEvent) error {
	if d.host == nil {
		return nil
	}
	d.host.Logger().Info("Stopping", "kind", ev.Kind.String())
	return nil
}

type pageVM struct {
	page   string
	nav    *router.Service
	logger *slog.Logger
}

func newPageFactory(page string) container.Factory {
	return func(p container.Provider, args container.Args) (any, error) {
		vm := &pageVM{page: page}
		if raw, ok := args.Get(constants.NavigationServiceParameterName); ok {
			vm.nav, _ = raw.(*router.Service)
		}
		if logger, err := container.Resolve[*slog.Logger](p, constants.LoggerName); err == nil {
			vm.logger = logger.With("page", page)
		}
		return vm, nil
	}
}

func (vm *pageVM) NavigatedTo(nc router.NavigationContext) {
	if vm.logger != nil {
		vm.logger.Debug("Navigated to", "mode", nc.Mode.String(), "params", nc.Parameters.String())
	}
}
