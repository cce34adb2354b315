// Package menu is the selection model behind a navigation menu. Selecting
// an item navigates to its URI; the highlight only moves if navigation
// succeeds, and navigation from anywhere else moves the highlight to the
// item that matches the new page.
package menu

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

// Selection indices that do not refer to an item.
const (
	NoSelection       = -1
	SettingsSelection = -2
)

var ErrNoItem = errors.New("menu: no such item")

// Item is one entry in the menu.
type Item struct {
	Text          string // Display text, also used by SelectText
	NavigationURI string // Where selecting the item navigates to
	Metadata      any    // Application-specific data attached to the item
}

// Navigator is the part of a navigation service the menu drives.
// *router.Service implements it.
type Navigator interface {
	Navigate(uri string, params *router.Parameters, info *router.TransitionInfo) router.Result
	OnNavigated(fn func(router.NavigatedEvent)) func()
}

// Options configures a Menu.
type Options struct {
	SettingsURI       string // Empty disables settings navigation
	OnSettingsInvoked func()
	Logger            *slog.Logger
}

// Menu tracks which item is highlighted.
type Menu struct {
	nav        Navigator
	items      []Item
	settings   string
	onSettings func()
	logger     *slog.Logger
	cancel     func()

	selectMu sync.Mutex // serializes Select calls across their navigation

	mu       sync.Mutex
	selected int
	previous int
}

// New creates a menu over items and starts following nav's navigations.
func New(nav Navigator, items []Item, opts Options) *Menu {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Menu{
		nav:        nav,
		items:      append([]Item(nil), items...),
		settings:   opts.SettingsURI,
		onSettings: opts.OnSettingsInvoked,
		logger:     logger,
		selected:   NoSelection,
		previous:   NoSelection,
	}
	m.cancel = nav.OnNavigated(func(e router.NavigatedEvent) { m.Sync(e.Entry) })
	return m
}

// Close stops following navigations.
func (m *Menu) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Menu) Items() []Item {
	return append([]Item(nil), m.items...)
}

// Selected returns the highlighted index, which may be NoSelection or
// SettingsSelection.
func (m *Menu) Selected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// SelectedItem returns the highlighted item, if an item is highlighted.
func (m *Menu) SelectedItem() (Item, bool) {
	sel := m.Selected()
	if sel < 0 {
		return Item{}, false
	}
	return m.items[sel], true
}

// Select navigates to item i and highlights it. On failure the previous
// highlight is restored and the failed result returned.
func (m *Menu) Select(i int) router.Result {
	if i < 0 || i >= len(m.items) {
		return router.Failed(router.ErrorKindNotRegistered, fmt.Errorf("%w: %d", ErrNoItem, i))
	}
	item := m.items[i]
	if item.NavigationURI == "" {
		m.logger.Warn("Menu item has no navigation URI", "item", item.Text)
		return router.Failed(router.ErrorKindParse, fmt.Errorf("menu item %q has no navigation URI", item.Text))
	}

	m.selectMu.Lock()
	defer m.selectMu.Unlock()

	if m.Selected() == i {
		return router.Succeeded()
	}
	m.set(i, false)

	res := m.nav.Navigate(item.NavigationURI, nil, nil)
	if res.Success {
		m.set(i, true)
		return res
	}
	m.revert()
	m.logger.Info("Menu navigation failed, selection reverted", "item", item.Text, "result", res.String())
	return res
}

// SelectText selects the item whose Text equals text.
func (m *Menu) SelectText(text string) router.Result {
	for i, item := range m.items {
		if item.Text == text {
			return m.Select(i)
		}
	}
	return router.Failed(router.ErrorKindNotRegistered, fmt.Errorf("%w: %q", ErrNoItem, text))
}

// SelectSettings navigates to the settings URI, if one is configured, and
// then runs the settings callback.
func (m *Menu) SelectSettings() router.Result {
	m.selectMu.Lock()
	defer m.selectMu.Unlock()

	res := router.Succeeded()
	if m.settings != "" && m.Selected() != SettingsSelection {
		res = m.nav.Navigate(m.settings, nil, nil)
		if res.Success {
			m.set(SettingsSelection, true)
		}
	}
	if m.onSettings != nil {
		m.onSettings()
	}
	return res
}

// Clear removes the highlight without navigating.
func (m *Menu) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = NoSelection
	m.previous = NoSelection
}

// Sync highlights the item matching entry without navigating. Entries no
// item points at leave the highlight alone.
func (m *Menu) Sync(entry router.HistoryEntry) {
	if idx, ok := m.find(entry); ok {
		m.set(idx, true)
	}
}

func (m *Menu) find(entry router.HistoryEntry) (int, bool) {
	if matches(m.settings, entry) {
		return SettingsSelection, true
	}
	for i, item := range m.items {
		if matches(item.NavigationURI, entry) {
			return i, true
		}
	}
	return 0, false
}

// matches compares the last segment of uri with entry. Parsing is
// deterministic, so the same URI always matches the same entries.
func matches(uri string, entry router.HistoryEntry) bool {
	if uri == "" {
		return false
	}
	queue, err := router.Parse(uri, nil)
	if err != nil {
		return false
	}
	last := queue.Last()
	if last.View != entry.View {
		return false
	}
	want, err := router.ParseParameters(last.QueryString)
	if err != nil {
		return false
	}
	return want.Equal(entry.Parameters())
}

func (m *Menu) set(idx int, committed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = idx
	if committed {
		m.previous = idx
	}
}

func (m *Menu) revert() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = m.previous
}
