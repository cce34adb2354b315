package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

func newService(t *testing.T) *router.Service {
	t.Helper()
	pages := router.NewRegistry()
	for _, p := range []string{"Home", "Library", "Details", "Settings"} {
		require.NoError(t, pages.Register(p, "", ""))
	}
	svc, err := router.NewService("main", router.Options{Registry: pages})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

var items = []Item{
	{Text: "Home", NavigationURI: "Home"},
	{Text: "Library", NavigationURI: "Library?sort=name"},
	{Text: "Broken", NavigationURI: "Missing"},
	{Text: "Header"},
}

func TestSelectNavigates(t *testing.T) {
	svc := newService(t)
	m := New(svc, items, Options{})
	defer m.Close()

	res := m.Select(1)
	require.True(t, res.Success)
	assert.Equal(t, 1, m.Selected())

	entry, params, _ := svc.Current()
	assert.Equal(t, "Library", entry.View)
	assert.Equal(t, "sort=name", params.String())

	item, ok := m.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, "Library", item.Text)
}

func TestFailedSelectReverts(t *testing.T) {
	svc := newService(t)
	m := New(svc, items, Options{})
	defer m.Close()
	require.True(t, m.Select(0).Success)

	res := m.SelectText("Broken")
	assert.Equal(t, router.ErrorKindNotRegistered, res.Kind)
	assert.Equal(t, 0, m.Selected())

	res = m.Select(3)
	assert.Equal(t, router.ErrorKindParse, res.Kind)
	assert.Equal(t, 0, m.Selected())

	res = m.Select(9)
	assert.ErrorIs(t, res.Err, ErrNoItem)
	assert.ErrorIs(t, m.SelectText("Nope").Err, ErrNoItem)
}

func TestFailedSelectAfterClearRevertsToNoSelection(t *testing.T) {
	svc := newService(t)
	m := New(svc, items, Options{})
	defer m.Close()
	require.True(t, m.Select(0).Success)

	m.Clear()
	assert.Equal(t, NoSelection, m.Selected())

	res := m.SelectText("Broken")
	assert.False(t, res.Success)
	assert.Equal(t, NoSelection, m.Selected())
	_, ok := m.SelectedItem()
	assert.False(t, ok)
}

func TestReselectDoesNotNavigate(t *testing.T) {
	svc := newService(t)
	m := New(svc, items, Options{})
	defer m.Close()

	require.True(t, m.Select(0).Success)
	require.True(t, m.Select(1).Success)
	require.True(t, m.Select(1).Success)
	assert.Len(t, svc.Frame().BackStack(), 1)
}

func TestNavigationElsewhereSyncsSelection(t *testing.T) {
	svc := newService(t)
	m := New(svc, items, Options{})
	defer m.Close()

	require.True(t, svc.Navigate("Library", router.NewParameters().Set("sort", "name"), nil).Success)
	assert.Equal(t, 1, m.Selected())

	require.True(t, svc.Navigate("Details?id=3", nil, nil).Success)
	assert.Equal(t, 1, m.Selected(), "pages without an item keep the highlight")

	require.True(t, svc.Navigate("Home", nil, nil).Success)
	assert.Equal(t, 0, m.Selected())

	require.True(t, svc.GoBack(nil, nil).Success)
	assert.Equal(t, 0, m.Selected())
	require.True(t, svc.GoBack(nil, nil).Success)
	assert.Equal(t, 1, m.Selected())

	require.True(t, svc.Navigate("Library?sort=date", nil, nil).Success)
	assert.Equal(t, 1, m.Selected(), "different parameters do not match")
}

func TestSelectSettings(t *testing.T) {
	svc := newService(t)
	invoked := 0
	m := New(svc, items, Options{SettingsURI: "Settings", OnSettingsInvoked: func() { invoked++ }})
	defer m.Close()

	require.True(t, m.Select(0).Success)
	require.True(t, m.SelectSettings().Success)
	assert.Equal(t, SettingsSelection, m.Selected())
	assert.Equal(t, 1, invoked)
	_, ok := m.SelectedItem()
	assert.False(t, ok)

	require.True(t, svc.GoBack(nil, nil).Success)
	assert.Equal(t, 0, m.Selected())
	require.True(t, svc.GoForward(nil).Success)
	assert.Equal(t, SettingsSelection, m.Selected())
}

func TestSettingsWithoutURIOnlyRunsCallback(t *testing.T) {
	svc := newService(t)
	invoked := 0
	m := New(svc, items, Options{OnSettingsInvoked: func() { invoked++ }})
	defer m.Close()

	assert.True(t, m.SelectSettings().Success)
	assert.Equal(t, 1, invoked)
	assert.Equal(t, NoSelection, m.Selected())
	_, _, ok := svc.Current()
	assert.False(t, ok)
}

func TestCloseStopsSync(t *testing.T) {
	svc := newService(t)
	m := New(svc, items, Options{})
	m.Close()

	require.True(t, svc.Navigate("Home", nil, nil).Success)
	assert.Equal(t, NoSelection, m.Selected())

	m.Clear()
	assert.Equal(t, NoSelection, m.Selected())
}
