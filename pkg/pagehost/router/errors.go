package router

import (
	"errors"
	"fmt"
)

// Sentinel errors carried in Result.Err. Match with errors.Is.
var (
	ErrNotRegistered     = errors.New("view is not registered")
	ErrNoHistory         = errors.New("no navigation history")
	ErrNavigationAborted = errors.New("navigation aborted")
	ErrParse             = errors.New("malformed navigation path")
	ErrResolve           = errors.New("view-model resolution failed")
	ErrClosed            = errors.New("frame closed")
)

// ErrorKind classifies a failed navigation.
type ErrorKind int

const (
	ErrorKindNone       ErrorKind = iota // Navigation succeeded
	ErrorKindNotRegistered               // Unknown view identifier
	ErrorKindNoHistory                   // Back/forward/refresh with nothing to go to
	ErrorKindAborted                     // A guard or the current view-model declined
	ErrorKindParse                       // Malformed navigation path or query string
	ErrorKindResolve                     // The target view-model could not be built
	ErrorKindClosed                      // The frame's dispatcher has stopped
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindNotRegistered:
		return "not_registered"
	case ErrorKindNoHistory:
		return "no_history"
	case ErrorKindAborted:
		return "navigation_aborted"
	case ErrorKindParse:
		return "parse_error"
	case ErrorKindResolve:
		return "resolve_failed"
	case ErrorKindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sentinel returns the sentinel error for the kind, or nil for ErrorKindNone.
func (k ErrorKind) Sentinel() error {
	switch k {
	case ErrorKindNotRegistered:
		return ErrNotRegistered
	case ErrorKindNoHistory:
		return ErrNoHistory
	case ErrorKindAborted:
		return ErrNavigationAborted
	case ErrorKindParse:
		return ErrParse
	case ErrorKindResolve:
		return ErrResolve
	case ErrorKindClosed:
		return ErrClosed
	default:
		return nil
	}
}

// Result is the outcome of a navigation operation. Failures are reported
// here, never as a returned error or panic.
type Result struct {
	Success bool
	Kind    ErrorKind
	Err     error
}

// Succeeded is the result of a successful navigation.
func Succeeded() Result {
	return Result{Success: true}
}

// Failed builds a failed result. err may add detail; it is wrapped so
// errors.Is matches the kind's sentinel.
func Failed(kind ErrorKind, err error) Result {
	sentinel := kind.Sentinel()
	switch {
	case err == nil:
		err = sentinel
	case sentinel != nil && !errors.Is(err, sentinel):
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return Result{Kind: kind, Err: err}
}

func (r Result) String() string {
	if r.Success {
		return "success"
	}
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Kind, r.Err)
	}
	return r.Kind.String()
}

// ParseError reports a navigation path or query string that could not be
// parsed.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("router: parse %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("router: parse %q: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}

// IsParseError checks if an error is a navigation path parse failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
