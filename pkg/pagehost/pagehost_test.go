package pagehost

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/clock"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/config"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

type demoApp struct {
	mu     sync.Mutex
	starts []*lifecycle.StartEvent
}

func (a *demoApp) RegisterTypes(r lifecycle.Registrar) error {
	if err := r.Pages.Register("Home", "", ""); err != nil {
		return err
	}
	return r.Pages.Register("Details", "", "")
}

func (a *demoApp) OnStart(ev *lifecycle.StartEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts = append(a.starts, ev)
	return nil
}

func (a *demoApp) lastStart() *lifecycle.StartEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts[len(a.starts)-1]
}

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = config.DriverSQLite
	cfg.Store.Path = filepath.Join(t.TempDir(), "settings.db")
	return cfg
}

func newApp(t *testing.T, app lifecycle.Application, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), Options{
		Application: app,
		Config:      cfg,
		Clock:       clock.Fake(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)),
		LogOutput:   io.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSuspendTerminateResume(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	// First run: launch and navigate Home then Details?id=42.
	first := &demoApp{}
	a := newApp(t, first, cfg)
	require.NoError(t, a.Handle(ctx, lifecycle.NewStartEvent(lifecycle.Launch, lifecycle.LaunchArgs{
		PreviousState: lifecycle.NotRunning,
	})))

	nav, err := a.NewNavigationService(ctx, "main")
	require.NoError(t, err)

	require.True(t, nav.Navigate("Home", nil, nil).Success)
	assert.False(t, nav.CanGoBack())

	require.True(t, nav.Navigate("Details?id=42", nil, nil).Success)
	assert.True(t, nav.CanGoBack())
	_, params, ok := nav.Current()
	require.True(t, ok)
	id, _ := params.Get("id")
	assert.Equal(t, "42", id)

	// Suspend, after which the platform kills the process.
	require.NoError(t, a.Handle(ctx, lifecycle.NewStopEvent(lifecycle.Suspending, nil, nil)))
	_, marked, err := a.Suspension().SuspendMarker(ctx)
	require.NoError(t, err)
	require.True(t, marked)
	require.NoError(t, a.Close())

	// Second run on the same store.
	second := &demoApp{}
	b := newApp(t, second, cfg)

	previous, err := b.Tracker().Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Terminated, previous)

	require.NoError(t, b.Handle(ctx, lifecycle.NewStartEvent(lifecycle.Launch, lifecycle.LaunchArgs{
		PreviousState: previous,
	})))

	start := second.lastStart()
	assert.Equal(t, lifecycle.ResumeFromTerminate, start.Kind)
	resume, ok := start.Args.(lifecycle.ResumeArgs)
	require.True(t, ok)
	assert.Equal(t, lifecycle.Terminated, resume.PreviousState)

	_, marked, err = b.Suspension().SuspendMarker(ctx)
	require.NoError(t, err)
	assert.False(t, marked, "marker is cleared once the start has been classified")

	restored, err := b.NewNavigationService(ctx, "main")
	require.NoError(t, err)
	entry, params, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "Details", entry.View)
	assert.Equal(t, "id=42", params.String())

	require.True(t, restored.GoBack(nil, nil).Success)
	entry, _, _ = restored.Current()
	assert.Equal(t, "Home", entry.View)
	assert.True(t, restored.CanGoForward())
	assert.False(t, restored.CanGoBack())
}

func TestMetricsAreRecorded(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, &demoApp{}, config.Default())

	require.NoError(t, a.Handle(ctx, lifecycle.NewStartEvent(lifecycle.Launch, nil)))
	nav, err := a.NewNavigationService(ctx, "main")
	require.NoError(t, err)
	nav.Navigate("Home", nil, nil)
	nav.Navigate("Nowhere", nil, nil)

	n, err := testutil.GatherAndCount(a.Gatherer(), "pagehost_navigation_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per outcome")

	n, err = testutil.GatherAndCount(a.Gatherer(), "pagehost_lifecycle_starts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLocalizerDescribesResults(t *testing.T) {
	cfg := config.Default()
	cfg.Locale = "de"
	a := newApp(t, &demoApp{}, cfg)

	assert.Equal(t, "de", a.Localizer().Tag().String())
	assert.NotEmpty(t, a.Localizer().Describe(router.Failed(router.ErrorKindNotRegistered, nil)))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "postgres"

	_, err := New(context.Background(), Options{Application: &demoApp{}, Config: cfg, LogOutput: io.Discard})
	require.Error(t, err)
	assert.True(t, IsInfrastructureError(err))

	_, err = New(context.Background(), Options{Config: config.Default()})
	assert.True(t, IsInfrastructureError(err))
}

func TestClosedAppRejectsEvents(t *testing.T) {
	a := newApp(t, &demoApp{}, config.Default())
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	assert.ErrorIs(t, a.Handle(context.Background(), lifecycle.NewStartEvent(lifecycle.Launch, nil)), ErrClosed)
	_, err := a.NewNavigationService(context.Background(), "main")
	assert.ErrorIs(t, err, ErrClosed)
}
