package lifecycle

import (
	"context"
	"sync"
	"time"
)

// ExecutionState is what the platform reports about the previous run of
// the application.
type ExecutionState int

const (
	NotRunning ExecutionState = iota
	Running
	Suspended
	Terminated   // Suspended, then killed by the platform
	ClosedByUser // Exited normally
)

func (s ExecutionState) String() string {
	switch s {
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Terminated:
		return "terminated"
	case ClosedByUser:
		return "closed_by_user"
	default:
		return "not_running"
	}
}

// ExecutionStater is implemented by start payloads that carry the previous
// execution state.
type ExecutionStater interface {
	PreviousExecutionState() ExecutionState
}

// StartKind classifies a start event. The orchestrator may change it while
// handling the event.
type StartKind int

const (
	Launch StartKind = iota
	Activate
	Background
	ResumeInMemory
	ResumeFromTerminate
)

func (k StartKind) String() string {
	switch k {
	case Activate:
		return "activate"
	case Background:
		return "background"
	case ResumeInMemory:
		return "resume_in_memory"
	case ResumeFromTerminate:
		return "resume_from_terminate"
	default:
		return "launch"
	}
}

// StopKind classifies a stop event.
type StopKind int

const (
	Suspending StopKind = iota
	CloseRequested
	ApplicationExiting
	WindowClosed
)

func (k StopKind) String() string {
	switch k {
	case CloseRequested:
		return "close_requested"
	case ApplicationExiting:
		return "application_exiting"
	case WindowClosed:
		return "window_closed"
	default:
		return "suspending"
	}
}

// Event is a *StartEvent or a *StopEvent.
type Event interface {
	eventName() string
}

// Handler receives lifecycle events from a platform source. *Orchestrator
// is the usual implementation.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

func (f HandlerFunc) Handle(ctx context.Context, ev Event) error { return f(ctx, ev) }

// StartEvent is one activation callback from the platform.
type StartEvent struct {
	Kind StartKind
	Args any // LaunchArgs, ResumeArgs or another platform payload
}

func NewStartEvent(kind StartKind, args any) *StartEvent {
	return &StartEvent{Kind: kind, Args: args}
}

func (e *StartEvent) eventName() string { return "start:" + e.Kind.String() }

// PreviousState reads the previous execution state from the payload.
// Payloads that do not report one read as NotRunning.
func (e *StartEvent) PreviousState() ExecutionState {
	if s, ok := e.Args.(ExecutionStater); ok {
		return s.PreviousExecutionState()
	}
	return NotRunning
}

// LaunchArgs is the payload of a platform launch.
type LaunchArgs struct {
	PreviousState ExecutionState
	Arguments     []string
}

func (a LaunchArgs) PreviousExecutionState() ExecutionState { return a.PreviousState }

// ResumeArgs replaces the payload of a start that turned out to be a resume
// after the platform terminated the suspended application.
type ResumeArgs struct {
	PreviousState ExecutionState
	SuspendedAt   time.Time
	Original      any // The payload the platform delivered
}

func (a ResumeArgs) PreviousExecutionState() ExecutionState { return a.PreviousState }

// StopEvent is one suspend or close callback from the platform. The host is
// released when the event's deferral completes.
type StopEvent struct {
	Kind     StopKind
	Args     any
	deferral *Deferral
}

// NewStopEvent creates a stop event whose deferral calls onComplete once.
func NewStopEvent(kind StopKind, args any, onComplete func()) *StopEvent {
	return &StopEvent{Kind: kind, Args: args, deferral: NewDeferral(onComplete)}
}

func (e *StopEvent) eventName() string { return "stop:" + e.Kind.String() }

// Deferral returns the completion handle.
func (e *StopEvent) Deferral() *Deferral {
	if e.deferral == nil {
		e.deferral = NewDeferral(nil)
	}
	return e.deferral
}

// Deferral tells the host it may continue tearing the application down.
// Complete may be called any number of times; only the first has effect.
type Deferral struct {
	once       sync.Once
	done       chan struct{}
	onComplete func()
}

func NewDeferral(onComplete func()) *Deferral {
	return &Deferral{done: make(chan struct{}), onComplete: onComplete}
}

func (d *Deferral) Complete() {
	d.once.Do(func() {
		close(d.done)
		if d.onComplete != nil {
			d.onComplete()
		}
	})
}

// Done is closed once Complete has been called.
func (d *Deferral) Done() <-chan struct{} { return d.done }
