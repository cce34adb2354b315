package lifecycle

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNotReady is returned when a navigation service is requested before
	// the container has been finalized by the first start.
	ErrNotReady = errors.New("lifecycle: container not ready")

	// ErrUnknownEvent is returned by Handle for an event it does not know.
	ErrUnknownEvent = errors.New("lifecycle: unknown event")
)

// ExtensionError reports a failed application hook. Start and stop hook
// failures are logged and counted but never stop the lifecycle sequence.
type ExtensionError struct {
	Op  string // Hook that failed (e.g., "on_start", "on_stop_async")
	Err error  // Underlying error
}

func (e *ExtensionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lifecycle: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("lifecycle: %s", e.Op)
}

func (e *ExtensionError) Unwrap() error {
	return e.Err
}

// IsExtensionError checks if an error is an extension error.
func IsExtensionError(err error) bool {
	var extErr *ExtensionError
	return errors.As(err, &extErr)
}

// SplashError reports that the extended splash screen could not be shown.
// It is fatal: Handle returns it and the application should exit.
type SplashError struct {
	Err error
}

func (e *SplashError) Error() string {
	return fmt.Sprintf("lifecycle: splash screen: %v", e.Err)
}

func (e *SplashError) Unwrap() error {
	return e.Err
}

// IsSplashError checks if an error is a splash screen failure.
func IsSplashError(err error) bool {
	var splashErr *SplashError
	return errors.As(err, &splashErr)
}

// InitError reports a failed one-time initialization. Every later start
// returns the same error.
type InitError struct {
	Op  string
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("lifecycle: initialize: %s: %v", e.Op, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// IsInitError checks if an error is an initialization failure.
func IsInitError(err error) bool {
	var initErr *InitError
	return errors.As(err, &initErr)
}
