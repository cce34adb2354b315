// Package sdlhost drives the lifecycle orchestrator from an SDL window.
//
// SDL requires its calls to come from the thread that initialized it. Call
// New, Run and Close from the main goroutine with the OS thread locked.
package sdlhost

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/veandco/go-sdl2/sdl"
)

const pollTimeoutMillis = 100

// Options configures the SDL host.
type Options struct {
	Title   string
	Window  WindowOptions
	Width   int32 // Zero uses the current display mode
	Height  int32
	Tracker *lifecycle.ExecutionTracker // Supplies the previous state of the initial launch
	Logger  *slog.Logger
}

// Host owns the SDL window and renderer and turns SDL events into
// lifecycle events.
type Host struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	tracker  *lifecycle.ExecutionTracker
	logger   *slog.Logger
}

func New(opts Options) (*Host, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	winOpts := opts.Window
	if winOpts.IsZero() {
		winOpts = WindowOptions{Resizable: true}
	}

	width, height := opts.Width, opts.Height
	x, y := int32(0), int32(0)
	if constants.IsDevMode() {
		winOpts.Borderless = false
		x, y = 50, 50
	}
	if width == 0 || height == 0 {
		mode, err := sdl.GetCurrentDisplayMode(0)
		if err != nil {
			opts.Logger.Warn("Failed to get display mode; using 1024x768", "error", err)
			width, height = 1024, 768
		} else {
			width, height = mode.W, mode.H
		}
	}

	opts.Logger.Debug("Initializing SDL window", "width", width, "height", height)

	window, err := sdl.CreateWindow(opts.Title, x, y, width, height, winOpts.ToSDLFlags())
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	renderer.SetLogicalSize(width, height)

	return &Host{
		window:   window,
		renderer: renderer,
		tracker:  opts.Tracker,
		logger:   opts.Logger,
	}, nil
}

// UseTracker sets the tracker that supplies the previous state of the
// initial launch.
func (h *Host) UseTracker(t *lifecycle.ExecutionTracker) { h.tracker = t }

// Run delivers the initial launch and then pumps SDL events into handler
// until a close event has been handled, ctx is done or the process is
// signalled. A cancelled run still delivers ApplicationExiting so the
// application can persist its state.
func (h *Host) Run(ctx context.Context, handler lifecycle.Handler) error {
	previous := lifecycle.NotRunning
	if h.tracker != nil {
		p, err := h.tracker.Previous(ctx)
		if err != nil {
			h.logger.Warn("Failed to read previous execution state", "error", err)
		} else {
			previous = p
		}
	}

	launch := lifecycle.NewStartEvent(lifecycle.Launch, lifecycle.LaunchArgs{
		PreviousState: previous,
		Arguments:     os.Args[1:],
	})
	if err := handler.Handle(ctx, launch); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return h.exit(context.WithoutCancel(ctx), handler, ctx.Err())
		case sig := <-sigCh:
			h.logger.Info("Received signal", "signal", sig.String())
			return h.exit(ctx, handler, nil)
		default:
		}

		sdlEvent := sdl.WaitEventTimeout(pollTimeoutMillis)
		if sdlEvent == nil {
			continue
		}

		ev, ok := Translate(sdlEvent)
		if !ok {
			continue
		}

		if err := handler.Handle(ctx, ev); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			h.logger.Error("Lifecycle event failed", "error", err)
			if terminal(ev) {
				return err
			}
			if _, isStart := ev.(*lifecycle.StartEvent); isStart && (lifecycle.IsInitError(err) || lifecycle.IsSplashError(err)) {
				return err
			}
		}

		if terminal(ev) {
			return nil
		}
	}
}

func (h *Host) exit(ctx context.Context, handler lifecycle.Handler, cause error) error {
	if err := handler.Handle(ctx, lifecycle.NewStopEvent(lifecycle.ApplicationExiting, nil, nil)); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Present shows img stretched over the window until the returned closer is
// closed. It serves as a splash.Presenter.
func (h *Host) Present(img *image.RGBA) (io.Closer, error) {
	bounds := img.Bounds()
	w, ht := int32(bounds.Dx()), int32(bounds.Dy())

	surface, err := sdl.CreateRGBSurfaceWithFormat(0, w, ht, 32, uint32(sdl.PIXELFORMAT_ABGR8888))
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	defer surface.Free()

	if err := surface.Lock(); err != nil {
		return nil, fmt.Errorf("lock surface: %w", err)
	}
	pixels := surface.Pixels()
	rowBytes := int(w) * 4
	for row := 0; row < int(ht); row++ {
		src := img.Pix[row*img.Stride : row*img.Stride+rowBytes]
		copy(pixels[row*int(surface.Pitch):], src)
	}
	surface.Unlock()

	texture, err := h.renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	h.renderer.Clear()
	if err := h.renderer.Copy(texture, nil, nil); err != nil {
		texture.Destroy()
		return nil, fmt.Errorf("copy texture: %w", err)
	}
	h.renderer.Present()

	return &presented{host: h, texture: texture}, nil
}

type presented struct {
	host    *Host
	texture *sdl.Texture
}

func (p *presented) Close() error {
	if p.texture == nil {
		return nil
	}
	err := p.texture.Destroy()
	p.texture = nil
	p.host.renderer.SetDrawColor(0, 0, 0, 255)
	p.host.renderer.Clear()
	p.host.renderer.Present()
	return err
}

// Close destroys the renderer and window and shuts SDL down.
func (h *Host) Close() {
	if h.renderer != nil {
		h.renderer.Destroy()
	}
	if h.window != nil {
		h.window.Destroy()
	}
	sdl.Quit()
}
