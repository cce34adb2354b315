package router

import (
	"sync"

	"go.uber.org/atomic"
)

// FrameState is the navigation state of a frame.
type FrameState int32

const (
	FrameIdle FrameState = iota
	FrameNavigating
)

func (s FrameState) String() string {
	if s == FrameNavigating {
		return "navigating"
	}
	return "idle"
}

// NavigationMode says how an entry became current.
type NavigationMode int

const (
	ModeNew NavigationMode = iota
	ModeBack
	ModeForward
	ModeRefresh
)

func (m NavigationMode) String() string {
	switch m {
	case ModeBack:
		return "back"
	case ModeForward:
		return "forward"
	case ModeRefresh:
		return "refresh"
	default:
		return "new"
	}
}

// NavigatedEvent is delivered to OnNavigated observers after a navigation
// is committed.
type NavigatedEvent struct {
	Mode       NavigationMode
	Entry      HistoryEntry
	Previous   *HistoryEntry
	Transition *TransitionInfo
}

// TransitionInfo is passed through to the host toolkit untouched.
type TransitionInfo struct {
	Name string
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

type subscribers[T any] struct {
	mu     sync.Mutex
	nextID int
	list   []subscriber[T]
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.list = append(s.list, subscriber[T]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.list {
			if sub.id == id {
				s.list = append(s.list[:i:i], s.list[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers[T]) emit(v T) {
	s.mu.Lock()
	list := append([]subscriber[T](nil), s.list...)
	s.mu.Unlock()
	for _, sub := range list {
		sub.fn(v)
	}
}

// Frame is one navigation surface: a current entry plus back and forward
// history. Reads are safe from any goroutine; every mutation runs on the
// frame's dispatcher, so requests on one frame are serialized in FIFO
// order while different frames proceed independently.
type Frame struct {
	name       string
	dispatcher *Dispatcher
	state      *atomic.Int32

	mu      sync.RWMutex
	back    *Stack
	forward *Stack
	current *HistoryEntry

	canGoBackChanged    subscribers[bool]
	canGoForwardChanged subscribers[bool]
	navigated           subscribers[NavigatedEvent]
}

// NewFrame creates an empty frame and starts its dispatcher.
func NewFrame(name string) *Frame {
	return &Frame{
		name:       name,
		dispatcher: NewDispatcher(),
		state:      atomic.NewInt32(int32(FrameIdle)),
		back:       NewStack(),
		forward:    NewStack(),
	}
}

func (f *Frame) Name() string { return f.name }

func (f *Frame) Dispatcher() *Dispatcher { return f.dispatcher }

func (f *Frame) State() FrameState { return FrameState(f.state.Load()) }

func (f *Frame) Current() (HistoryEntry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return HistoryEntry{}, false
	}
	return *f.current, true
}

func (f *Frame) CanGoBack() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.back.IsEmpty()
}

func (f *Frame) CanGoForward() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.forward.IsEmpty()
}

// BackStack returns the back history, oldest first.
func (f *Frame) BackStack() []HistoryEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.back.Entries()
}

// ForwardStack returns the forward history, farthest first.
func (f *Frame) ForwardStack() []HistoryEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.forward.Entries()
}

// OnCanGoBackChanged registers fn to run whenever the back stack goes from
// empty to non-empty or back. The returned func unregisters it.
func (f *Frame) OnCanGoBackChanged(fn func(canGoBack bool)) func() {
	return f.canGoBackChanged.add(fn)
}

// OnCanGoForwardChanged is the forward-stack counterpart of OnCanGoBackChanged.
func (f *Frame) OnCanGoForwardChanged(fn func(canGoForward bool)) func() {
	return f.canGoForwardChanged.add(fn)
}

// OnNavigated registers fn to run after every committed navigation.
func (f *Frame) OnNavigated(fn func(NavigatedEvent)) func() {
	return f.navigated.add(fn)
}

// mutate applies fn under the write lock and then fires the edge-triggered
// notifications for whichever stacks crossed the empty boundary.
func (f *Frame) mutate(fn func()) {
	f.mu.Lock()
	couldGoBack, couldGoForward := !f.back.IsEmpty(), !f.forward.IsEmpty()
	fn()
	canGoBack, canGoForward := !f.back.IsEmpty(), !f.forward.IsEmpty()
	f.mu.Unlock()

	if canGoBack != couldGoBack {
		f.canGoBackChanged.emit(canGoBack)
	}
	if canGoForward != couldGoForward {
		f.canGoForwardChanged.emit(canGoForward)
	}
}

// commitNew makes target current, pushing the old current entry and any
// intermediate entries onto the back stack and clearing the forward stack.
// It returns the discarded forward entries.
func (f *Frame) commitNew(target HistoryEntry, intermediates []HistoryEntry) (previous *HistoryEntry, discarded []HistoryEntry) {
	f.mutate(func() {
		previous = f.current
		if f.current != nil {
			f.back.Push(*f.current)
		}
		for _, e := range intermediates {
			f.back.Push(e)
		}
		f.current = &target
		discarded = f.forward.Clear()
	})
	return previous, discarded
}

// commitBack pops the back stack into current, moving the old current
// entry onto the forward stack. target replaces the popped entry so a
// caller can override its parameters.
func (f *Frame) commitBack(target HistoryEntry) (previous *HistoryEntry) {
	f.mutate(func() {
		f.back.Pop()
		previous = f.current
		if f.current != nil {
			f.forward.Push(*f.current)
		}
		f.current = &target
	})
	return previous
}

// commitForward is the mirror image of commitBack.
func (f *Frame) commitForward(target HistoryEntry) (previous *HistoryEntry) {
	f.mutate(func() {
		f.forward.Pop()
		previous = f.current
		if f.current != nil {
			f.back.Push(*f.current)
		}
		f.current = &target
	})
	return previous
}

func (f *Frame) peekBack() (HistoryEntry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.back.Peek()
}

func (f *Frame) peekForward() (HistoryEntry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.forward.Peek()
}

// Snapshot captures the frame's history.
func (f *Frame) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	snap := Snapshot{
		Name:    f.name,
		Back:    f.back.Entries(),
		Forward: f.forward.Entries(),
	}
	if f.current != nil {
		current := *f.current
		snap.Current = &current
	}
	return snap
}

// restore replaces the frame's history. Must run on the dispatcher.
func (f *Frame) restore(snap Snapshot) {
	f.mutate(func() {
		f.back.replace(snap.Back)
		f.forward.replace(snap.Forward)
		f.current = nil
		if snap.Current != nil {
			current := *snap.Current
			f.current = &current
		}
	})
}

// Close stops the frame's dispatcher after queued work drains.
func (f *Frame) Close() {
	f.dispatcher.Close()
}
