package power

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestClassifier(t *testing.T) {
	tests := []struct {
		name string
		held time.Duration
		want Action
	}{
		{"tap", 100 * time.Millisecond, Suspend},
		{"just under the limit", 2*time.Second - time.Millisecond, Suspend},
		{"at the limit", 2 * time.Second, Shutdown},
		{"long hold", 5 * time.Second, Shutdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(2*time.Second, time.Second)
			c.Press(t0)
			assert.Equal(t, tt.want, c.Release(t0.Add(tt.held)))
		})
	}
}

func TestClassifier_ReleaseWithoutPress(t *testing.T) {
	c := NewClassifier(2*time.Second, time.Second)
	assert.Equal(t, None, c.Release(t0))
}

func TestClassifier_CoolDown(t *testing.T) {
	c := NewClassifier(2*time.Second, time.Second)

	c.Press(t0)
	require.Equal(t, Suspend, c.Release(t0.Add(100*time.Millisecond)))

	c.Press(t0.Add(500 * time.Millisecond))
	assert.Equal(t, None, c.Release(t0.Add(600*time.Millisecond)), "press inside cool-down is dropped")

	c.Press(t0.Add(1500 * time.Millisecond))
	assert.Equal(t, Suspend, c.Release(t0.Add(1600*time.Millisecond)))
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Handle(_ context.Context, ev lifecycle.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch e := ev.(type) {
	case *lifecycle.StartEvent:
		r.events = append(r.events, "start:"+e.Kind.String())
	case *lifecycle.StopEvent:
		r.events = append(r.events, "stop:"+e.Kind.String())
	}
	return nil
}

func newButton(h lifecycle.Handler, cfg Config) (*Button, *[]string) {
	b := New(cfg, h, nil)
	var commands []string
	b.run = func(_ context.Context, argv []string) error {
		commands = append(commands, argv[0])
		return nil
	}
	return b, &commands
}

func TestButton_ShortPressSuspendsAndResumes(t *testing.T) {
	rec := &recorder{}
	b, commands := newButton(rec, Config{SuspendCommand: []string{"suspend"}})
	ctx := context.Background()

	_, done := b.Feed(ctx, 1, t0)
	assert.False(t, done)
	_, done = b.Feed(ctx, 2, t0.Add(50*time.Millisecond))
	assert.False(t, done)

	action, done := b.Feed(ctx, 0, t0.Add(200*time.Millisecond))
	assert.Equal(t, Suspend, action)
	assert.False(t, done)
	assert.Equal(t, []string{"stop:suspending", "start:resume_in_memory"}, rec.events)
	assert.Equal(t, []string{"suspend"}, *commands)
}

func TestButton_LongPressExits(t *testing.T) {
	rec := &recorder{}
	b, commands := newButton(rec, Config{ShutdownCommand: []string{"poweroff"}})
	ctx := context.Background()

	b.Feed(ctx, 1, t0)
	action, done := b.Feed(ctx, 0, t0.Add(3*time.Second))

	assert.Equal(t, Shutdown, action)
	assert.True(t, done)
	assert.Equal(t, []string{"stop:application_exiting"}, rec.events)
	assert.Equal(t, []string{"poweroff"}, *commands)
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("PLATFORM", "tg5050")

	b := New(Config{}, &recorder{}, nil)

	assert.Equal(t, "/dev/input/event2", b.cfg.DevicePath)
	assert.Equal(t, uint16(116), b.cfg.ButtonCode)
	assert.Equal(t, 2*time.Second, b.cfg.ShortPressMax)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "suspend", Suspend.String())
	assert.Equal(t, "shutdown", Shutdown.String())
}
