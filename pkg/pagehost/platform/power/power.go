// Package power turns a hardware power button into lifecycle events on
// devices that have no window manager to deliver suspend and close.
//
// A short press suspends the application, runs the platform suspend
// command and resumes it once the command returns. A long press exits.
package power

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/holoplot/go-evdev"
)

// Action is what a completed press asks for.
type Action int

const (
	None Action = iota
	Suspend
	Shutdown
)

func (a Action) String() string {
	switch a {
	case Suspend:
		return "suspend"
	case Shutdown:
		return "shutdown"
	default:
		return "none"
	}
}

type Config struct {
	DevicePath      string        // evdev node, e.g. /dev/input/event1
	ButtonCode      uint16        // Key code of the power button
	ShortPressMax   time.Duration // Presses shorter than this suspend; longer ones shut down
	CoolDown        time.Duration // Presses starting this soon after an action are ignored
	SuspendCommand  []string      // Blocks until the device wakes; empty skips it
	ShutdownCommand []string      // Run after the exit stop event; empty skips it
}

// DefaultConfig returns the button setup for the current platform. TG5050
// reports the power key on event2, every other device on event1.
func DefaultConfig() Config {
	path := "/dev/input/event1"
	if strings.Contains(strings.ToUpper(os.Getenv(constants.PlatformEnvVar)), "TG5050") {
		path = "/dev/input/event2"
	}
	return Config{
		DevicePath:    path,
		ButtonCode:    constants.PowerButtonCode,
		ShortPressMax: constants.PowerShortPressMax,
		CoolDown:      constants.PowerCoolDown,
	}
}

// Classifier turns key down and key up times into actions. It is not safe
// for concurrent use.
type Classifier struct {
	shortPressMax time.Duration
	coolDown      time.Duration

	pressedAt  time.Time
	pressed    bool
	lastAction time.Time
}

func NewClassifier(shortPressMax, coolDown time.Duration) *Classifier {
	return &Classifier{shortPressMax: shortPressMax, coolDown: coolDown}
}

// Press records a key down. A press inside the cool-down after the last
// action is dropped along with its release.
func (c *Classifier) Press(at time.Time) {
	if !c.lastAction.IsZero() && at.Sub(c.lastAction) < c.coolDown {
		return
	}
	c.pressedAt = at
	c.pressed = true
}

// Release records a key up and returns the resulting action.
func (c *Classifier) Release(at time.Time) Action {
	if !c.pressed {
		return None
	}
	c.pressed = false
	c.lastAction = at

	if at.Sub(c.pressedAt) < c.shortPressMax {
		return Suspend
	}
	return Shutdown
}

// Button watches the power key and feeds the handler.
type Button struct {
	cfg        Config
	handler    lifecycle.Handler
	logger     *slog.Logger
	classifier *Classifier
	run        func(ctx context.Context, argv []string) error
}

func New(cfg Config, handler lifecycle.Handler, logger *slog.Logger) *Button {
	def := DefaultConfig()
	if cfg.DevicePath == "" {
		cfg.DevicePath = def.DevicePath
	}
	if cfg.ButtonCode == 0 {
		cfg.ButtonCode = def.ButtonCode
	}
	if cfg.ShortPressMax <= 0 {
		cfg.ShortPressMax = def.ShortPressMax
	}
	if cfg.CoolDown < 0 {
		cfg.CoolDown = 0
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Button{
		cfg:        cfg,
		handler:    handler,
		logger:     logger.With("component", "power"),
		classifier: NewClassifier(cfg.ShortPressMax, cfg.CoolDown),
		run:        runCommand,
	}
}

// Watch reads the device until ctx is done or a shutdown has been handled.
func (b *Button) Watch(ctx context.Context) error {
	dev, err := evdev.Open(b.cfg.DevicePath)
	if err != nil {
		return fmt.Errorf("open power button device %s: %w", b.cfg.DevicePath, err)
	}

	stop := context.AfterFunc(ctx, func() { dev.Close() })
	defer func() {
		if stop() {
			dev.Close()
		}
	}()

	if name, err := dev.Name(); err == nil {
		b.logger.Debug("Watching power button", "device", b.cfg.DevicePath, "name", name)
	}

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read power button: %w", err)
		}
		if ev.Type != evdev.EV_KEY || uint16(ev.Code) != b.cfg.ButtonCode {
			continue
		}

		at := time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond))
		if _, done := b.Feed(ctx, ev.Value, at); done {
			return nil
		}
	}
}

// Feed applies one key value (1 down, 0 up, 2 repeat) and runs the action
// a release produces. It reports whether the application has exited.
func (b *Button) Feed(ctx context.Context, value int32, at time.Time) (Action, bool) {
	switch value {
	case 1:
		b.classifier.Press(at)
		return None, false
	case 0:
	default:
		return None, false
	}

	action := b.classifier.Release(at)
	switch action {
	case Suspend:
		b.suspend(ctx)
	case Shutdown:
		b.shutdown(ctx)
		return action, true
	}
	return action, false
}

func (b *Button) suspend(ctx context.Context) {
	b.logger.Info("Power button short press; suspending")

	stopEv := lifecycle.NewStopEvent(lifecycle.Suspending, nil, nil)
	if err := b.handler.Handle(ctx, stopEv); err != nil {
		b.logger.Error("Suspend failed", "error", err)
	}

	if len(b.cfg.SuspendCommand) > 0 {
		if err := b.run(ctx, b.cfg.SuspendCommand); err != nil {
			b.logger.Error("Suspend command failed", "error", err)
		}
	}

	startEv := lifecycle.NewStartEvent(lifecycle.ResumeInMemory, lifecycle.LaunchArgs{
		PreviousState: lifecycle.Suspended,
	})
	if err := b.handler.Handle(ctx, startEv); err != nil {
		b.logger.Error("Resume failed", "error", err)
	}
}

func (b *Button) shutdown(ctx context.Context) {
	b.logger.Info("Power button long press; exiting")

	if err := b.handler.Handle(ctx, lifecycle.NewStopEvent(lifecycle.ApplicationExiting, nil, nil)); err != nil {
		b.logger.Error("Exit failed", "error", err)
	}

	if len(b.cfg.ShutdownCommand) > 0 {
		if err := b.run(ctx, b.cfg.ShutdownCommand); err != nil {
			b.logger.Error("Shutdown command failed", "error", err)
		}
	}
}

func runCommand(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
}
