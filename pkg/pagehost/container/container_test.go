package container

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ name string }

func TestResolveRequiresFinalize(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterInstance("greeter", &greeter{name: "a"}))

	_, err := c.Resolve("greeter")
	assert.ErrorIs(t, err, ErrNotFinalized)

	require.NoError(t, c.Finalize())
	assert.ErrorIs(t, c.Finalize(), ErrFinalized)
	assert.True(t, c.Finalized())

	g, err := Resolve[*greeter](c, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "a", g.name)
}

func TestRegisterAfterFinalizeFails(t *testing.T) {
	c := New()
	require.NoError(t, c.Finalize())
	err := c.Register("late", func(Provider, Args) (any, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestDuplicateRegistration(t *testing.T) {
	c := New()
	require.NoError(t, c.RegisterInstance("x", 1))
	assert.ErrorIs(t, c.RegisterInstance("x", 2), ErrDuplicate)
}

func TestTransientReceivesNamedArgs(t *testing.T) {
	c := New()
	calls := 0
	require.NoError(t, c.Register("vm", func(_ Provider, args Args) (any, error) {
		calls++
		nav, _ := args.Get("navigationService")
		return &greeter{name: nav.(string)}, nil
	}))
	require.NoError(t, c.Finalize())

	a, err := Resolve[*greeter](c, "vm", Arg{Name: "navigationService", Value: "frame-a"})
	require.NoError(t, err)
	b, err := Resolve[*greeter](c, "vm", Arg{Name: "navigationService", Value: "frame-b"})
	require.NoError(t, err)

	assert.Equal(t, "frame-a", a.name)
	assert.Equal(t, "frame-b", b.name)
	assert.Equal(t, 2, calls)
}

func TestSingletonBuiltOnce(t *testing.T) {
	c := New()
	var mu sync.Mutex
	calls := 0
	require.NoError(t, c.RegisterSingleton("svc", func(Provider, Args) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return &greeter{}, nil
	}))
	require.NoError(t, c.Finalize())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Resolve("svc")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestResolveErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	require.NoError(t, c.Register("broken", func(Provider, Args) (any, error) { return nil, boom }))
	require.NoError(t, c.RegisterInstance("number", 42))
	require.NoError(t, c.Finalize())

	_, err := c.Resolve("missing")
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = c.Resolve("broken")
	assert.ErrorIs(t, err, boom)

	_, err = Resolve[string](c, "number")
	assert.Error(t, err)
	assert.False(t, c.IsRegistered("missing"))
	assert.True(t, c.IsRegistered("number"))
}
