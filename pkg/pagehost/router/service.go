package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/constants"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/container"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/settings"
)

// SameViewPolicy decides what Navigate does when the destination equals the
// current entry (same view and same parameters).
type SameViewPolicy int

const (
	SameViewIgnore SameViewPolicy = iota // Succeed without navigating
	SameViewReload                       // Re-run view-model activation, history untouched
	SameViewPush                         // Navigate as if the view were different
)

// ParseSameViewPolicy maps "ignore", "reload" and "push" to a policy.
func ParseSameViewPolicy(raw string) (SameViewPolicy, error) {
	switch raw {
	case "", "ignore":
		return SameViewIgnore, nil
	case "reload":
		return SameViewReload, nil
	case "push":
		return SameViewPush, nil
	default:
		return SameViewIgnore, fmt.Errorf("router: unknown same-view policy %q", raw)
	}
}

func (p SameViewPolicy) String() string {
	switch p {
	case SameViewReload:
		return "reload"
	case SameViewPush:
		return "push"
	default:
		return "ignore"
	}
}

// NavigationContext describes one navigation to guards and view-models.
type NavigationContext struct {
	Mode       NavigationMode
	From       *HistoryEntry
	To         HistoryEntry
	Parameters *Parameters
	Transition *TransitionInfo
	Service    *Service
}

// Guard can veto a navigation before any history changes.
type Guard func(NavigationContext) bool

// Activator is implemented by view-models that want to know when their page
// becomes current.
type Activator interface {
	NavigatedTo(NavigationContext)
}

// Deactivator is implemented by view-models that want to know when their
// page stops being current.
type Deactivator interface {
	NavigatedFrom(NavigationContext)
}

// Confirmer is implemented by view-models that may refuse to be navigated
// away from.
type Confirmer interface {
	CanNavigate(NavigationContext) bool
}

// Observer receives one call per finished navigation operation.
type Observer interface {
	ObserveNavigation(frame, op string, kind ErrorKind, elapsed time.Duration)
}

// Options configures a Service.
type Options struct {
	Registry  *Registry          // Required
	Container container.Provider // Resolves view-models; nil disables resolution
	Services  *Services          // The service is added here when set
	Logger    *slog.Logger
	Observer  Observer
	SameView  SameViewPolicy
	CacheSize int
	Guards    []Guard
}

// Service is the navigation API for one frame. Every operation returns
// exactly one Result. The blocking forms park the caller until the frame's
// dispatcher has run the request; the Async forms return immediately.
//
// A view-model hook runs on the dispatcher, so it must use the Async forms
// to navigate further: a blocking call from there would wait on itself.
type Service struct {
	frame     *Frame
	registry  *Registry
	container container.Provider
	logger    *slog.Logger
	observer  Observer
	sameView  SameViewPolicy
	guards    []Guard

	cache *pageCache // dispatcher only

	vmMu      sync.RWMutex
	currentVM any
}

// NewService creates a frame named name and its navigation service.
func NewService(name string, opts Options) (*Service, error) {
	if opts.Registry == nil {
		return nil, errors.New("router: service requires a page registry")
	}
	if name == "" {
		name = constants.DefaultFrameName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Service{
		frame:     NewFrame(name),
		registry:  opts.Registry,
		container: opts.Container,
		logger:    logger.With("frame", name),
		observer:  opts.Observer,
		sameView:  opts.SameView,
		guards:    append([]Guard(nil), opts.Guards...),
		cache:     newPageCache(opts.CacheSize),
	}
	s.cache.onEvict = func(id string, err error) {
		if err != nil {
			s.logger.Warn("Closing cached view-model failed", "entry", id, "error", err)
		}
	}

	if opts.Services != nil {
		if err := opts.Services.add(s); err != nil {
			s.frame.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Service) Name() string { return s.frame.Name() }

func (s *Service) Frame() *Frame { return s.frame }

func (s *Service) CanGoBack() bool { return s.frame.CanGoBack() }

func (s *Service) CanGoForward() bool { return s.frame.CanGoForward() }

// CanGoBackChanged registers an edge-triggered observer on the back stack.
func (s *Service) CanGoBackChanged(fn func(bool)) func() { return s.frame.OnCanGoBackChanged(fn) }

// CanGoForwardChanged registers an edge-triggered observer on the forward stack.
func (s *Service) CanGoForwardChanged(fn func(bool)) func() {
	return s.frame.OnCanGoForwardChanged(fn)
}

// OnNavigated registers an observer for committed navigations.
func (s *Service) OnNavigated(fn func(NavigatedEvent)) func() { return s.frame.OnNavigated(fn) }

// CurrentViewModel returns the view-model of the current page, if any.
func (s *Service) CurrentViewModel() any {
	s.vmMu.RLock()
	defer s.vmMu.RUnlock()
	return s.currentVM
}

// Current returns the current entry and its parameters.
func (s *Service) Current() (HistoryEntry, *Parameters, bool) {
	entry, ok := s.frame.Current()
	if !ok {
		return HistoryEntry{}, nil, false
	}
	return entry, entry.Parameters(), true
}

func (s *Service) Navigate(uri string, params *Parameters, info *TransitionInfo) Result {
	return <-s.NavigateAsync(uri, params, info)
}

func (s *Service) GoBack(params *Parameters, info *TransitionInfo) Result {
	return <-s.GoBackAsync(params, info)
}

func (s *Service) GoForward(params *Parameters) Result {
	return <-s.GoForwardAsync(params)
}

func (s *Service) Refresh() Result {
	return <-s.RefreshAsync()
}

// NavigateAsync navigates to uri. params override the destination
// segment's own query string key by key.
func (s *Service) NavigateAsync(uri string, params *Parameters, info *TransitionInfo) <-chan Result {
	return s.submit("navigate", func() Result { return s.navigate(uri, params, info) },
		"uri", uri, "parameters", params.String())
}

// GoBackAsync returns to the top of the back stack. With nil params the
// entry's own persisted parameters are replayed.
func (s *Service) GoBackAsync(params *Parameters, info *TransitionInfo) <-chan Result {
	return s.submit("go_back", func() Result { return s.goBack(params, info) })
}

// GoForwardAsync is the forward-stack counterpart of GoBackAsync.
func (s *Service) GoForwardAsync(params *Parameters) <-chan Result {
	return s.submit("go_forward", func() Result { return s.goForward(params) })
}

// RefreshAsync re-runs navigation to the current entry with its original
// parameters. History is not changed.
func (s *Service) RefreshAsync() <-chan Result {
	return s.submit("refresh", s.refresh)
}

func (s *Service) submit(op string, fn func() Result, attrs ...any) <-chan Result {
	out := make(chan Result, 1)
	posted := s.frame.dispatcher.Post(func() {
		start := time.Now()
		s.frame.state.Store(int32(FrameNavigating))
		res := s.protect(op, fn)
		s.frame.state.Store(int32(FrameIdle))

		logAttrs := append([]any{"op", op, "result", res.String()}, attrs...)
		if res.Success {
			s.logger.Info("Navigation finished", logAttrs...)
		} else {
			s.logger.Warn("Navigation failed", logAttrs...)
		}
		if s.observer != nil {
			s.observer.ObserveNavigation(s.Name(), op, res.Kind, time.Since(start))
		}
		out <- res
	})
	if !posted {
		out <- Failed(ErrorKindClosed, nil)
	}
	return out
}

// protect turns a panic from a guard or hook into a failed result so the
// dispatcher keeps running.
func (s *Service) protect(op string, fn func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Navigation panicked", "op", op, "panic", r)
			res = Failed(ErrorKindAborted, fmt.Errorf("%s panicked: %v", op, r))
		}
	}()
	return fn()
}

func (s *Service) navigate(uri string, params *Parameters, info *TransitionInfo) Result {
	queue, err := Parse(uri, s.registry)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return Failed(ErrorKindNotRegistered, err)
		}
		return Failed(ErrorKindParse, err)
	}

	intermediates := make([]HistoryEntry, 0, len(queue)-1)
	for _, e := range queue[:len(queue)-1] {
		p, _ := ParseParameters(e.QueryString)
		intermediates = append(intermediates, NewHistoryEntry(e.View, p))
	}

	last := queue.Last()
	targetParams, _ := ParseParameters(last.QueryString)
	targetParams.Merge(params)
	target := NewHistoryEntry(last.View, targetParams)

	current, hasCurrent := s.frame.Current()
	if hasCurrent && len(intermediates) == 0 &&
		current.View == target.View && current.Query == target.Query {
		switch s.sameView {
		case SameViewIgnore:
			return Succeeded()
		case SameViewReload:
			return s.reload(current, ModeRefresh, info)
		}
	}

	nc := NavigationContext{
		Mode:       ModeNew,
		To:         target,
		Parameters: targetParams,
		Transition: info,
		Service:    s,
	}
	if hasCurrent {
		nc.From = &current
	}
	if !s.confirm(nc) {
		return Failed(ErrorKindAborted, nil)
	}

	vm, err := s.resolve(target.View)
	if err != nil {
		return Failed(ErrorKindResolve, err)
	}

	previous, discarded := s.frame.commitNew(target, intermediates)
	for _, e := range discarded {
		s.cache.Remove(e.ID)
	}
	s.activate(nc, previous, vm)
	return Succeeded()
}

func (s *Service) goBack(params *Parameters, info *TransitionInfo) Result {
	target, ok := s.frame.peekBack()
	if !ok {
		return Failed(ErrorKindNoHistory, nil)
	}
	return s.replay(ModeBack, target, params, info)
}

func (s *Service) goForward(params *Parameters) Result {
	target, ok := s.frame.peekForward()
	if !ok {
		return Failed(ErrorKindNoHistory, nil)
	}
	return s.replay(ModeForward, target, params, nil)
}

// replay moves to a history entry. History replay reuses the entry's id so
// its cached view-model, if still cached, comes back with it.
func (s *Service) replay(mode NavigationMode, target HistoryEntry, params *Parameters, info *TransitionInfo) Result {
	if params != nil {
		target.Query = params.String()
	}
	targetParams := target.Parameters()

	nc := NavigationContext{
		Mode:       mode,
		To:         target,
		Parameters: targetParams,
		Transition: info,
		Service:    s,
	}
	if current, ok := s.frame.Current(); ok {
		nc.From = &current
	}
	if !s.confirm(nc) {
		return Failed(ErrorKindAborted, nil)
	}

	vm, cached := s.cache.Take(target.ID)
	if !cached {
		var err error
		if vm, err = s.resolve(target.View); err != nil {
			return Failed(ErrorKindResolve, err)
		}
	}

	var previous *HistoryEntry
	if mode == ModeBack {
		previous = s.frame.commitBack(target)
	} else {
		previous = s.frame.commitForward(target)
	}
	s.activate(nc, previous, vm)
	return Succeeded()
}

func (s *Service) refresh() Result {
	current, ok := s.frame.Current()
	if !ok {
		return Failed(ErrorKindNoHistory, nil)
	}
	return s.reload(current, ModeRefresh, nil)
}

// reload builds a fresh view-model for the current entry and activates it
// without touching history.
func (s *Service) reload(current HistoryEntry, mode NavigationMode, info *TransitionInfo) Result {
	vm, err := s.resolve(current.View)
	if err != nil {
		return Failed(ErrorKindResolve, err)
	}
	nc := NavigationContext{
		Mode:       mode,
		From:       &current,
		To:         current,
		Parameters: current.Parameters(),
		Transition: info,
		Service:    s,
	}

	old := s.swapViewModel(vm)
	if d, ok := old.(Deactivator); ok {
		d.NavigatedFrom(nc)
	}
	if old != nil && old != vm {
		s.cache.release(current.ID, old)
	}
	if a, ok := vm.(Activator); ok {
		a.NavigatedTo(nc)
	}
	s.frame.navigated.emit(NavigatedEvent{Mode: mode, Entry: current, Previous: &current, Transition: info})
	return Succeeded()
}

func (s *Service) confirm(nc NavigationContext) bool {
	for _, g := range s.guards {
		if !g(nc) {
			return false
		}
	}
	if c, ok := s.CurrentViewModel().(Confirmer); ok && !c.CanNavigate(nc) {
		return false
	}
	return true
}

// resolve builds the view-model registered for view. The service itself is
// handed to the factory as the navigationService argument.
func (s *Service) resolve(view string) (any, error) {
	reg, ok := s.registry.Lookup(view)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, view)
	}
	if reg.ViewModel == "" || s.container == nil {
		return nil, nil
	}
	vm, err := s.container.Resolve(reg.ViewModel, container.Arg{
		Name:  constants.NavigationServiceParameterName,
		Value: s,
	})
	if err != nil {
		return nil, err
	}
	return vm, nil
}

func (s *Service) activate(nc NavigationContext, previous *HistoryEntry, vm any) {
	old := s.swapViewModel(vm)
	if d, ok := old.(Deactivator); ok {
		d.NavigatedFrom(nc)
	}
	if previous != nil && old != nil && old != vm {
		s.cache.Set(previous.ID, old)
		s.logger.Debug("Cached view-model", "entry", previous.ID, "view", previous.View, "cached", s.cache.Len())
	}
	if a, ok := vm.(Activator); ok {
		a.NavigatedTo(nc)
	}
	s.frame.navigated.emit(NavigatedEvent{
		Mode:       nc.Mode,
		Entry:      nc.To,
		Previous:   previous,
		Transition: nc.Transition,
	})
}

func (s *Service) swapViewModel(vm any) any {
	s.vmMu.Lock()
	defer s.vmMu.Unlock()
	old := s.currentVM
	s.currentVM = vm
	return old
}

// SaveState persists the frame's history to store.
func (s *Service) SaveState(ctx context.Context, store settings.Store) error {
	data, err := MarshalSnapshot(s.frame.Snapshot())
	if err != nil {
		return err
	}
	if err := store.Set(ctx, StateKey(s.Name()), data); err != nil {
		return fmt.Errorf("save frame %q: %w", s.Name(), err)
	}
	return nil
}

// RestoreState loads history saved by SaveState and re-activates the
// restored current entry. It reports false when nothing was saved.
func (s *Service) RestoreState(ctx context.Context, store settings.Store) (bool, error) {
	data, ok, err := store.TryGet(ctx, StateKey(s.Name()))
	if err != nil {
		return false, fmt.Errorf("load frame %q: %w", s.Name(), err)
	}
	if !ok {
		return false, nil
	}
	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		return false, err
	}

	var res Result
	if !s.frame.dispatcher.Invoke(func() {
		s.frame.restore(snap)
		if snap.Current != nil {
			res = s.protect("restore", func() Result { return s.reload(*snap.Current, ModeRefresh, nil) })
		} else {
			res = Succeeded()
		}
	}) {
		return false, ErrClosed
	}
	if !res.Success {
		return true, fmt.Errorf("restore frame %q: %w", s.Name(), res.Err)
	}
	return true, nil
}

// StateKey is the settings key a frame's snapshot is stored under.
func StateKey(frame string) string {
	return constants.FrameStateKeyPrefix + frame
}

// Close stops the frame's dispatcher and releases cached view-models.
func (s *Service) Close() {
	s.frame.dispatcher.Invoke(func() {
		s.cache.Destroy()
		if vm := s.swapViewModel(nil); vm != nil {
			s.cache.release("", vm)
		}
	})
	s.frame.Close()
}
