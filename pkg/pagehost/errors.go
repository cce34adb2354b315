package pagehost

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by App methods called after Close.
var ErrClosed = errors.New("pagehost: app closed")

// InfrastructureError reports that the host itself could not be assembled
// (configuration, settings store, metrics, translations). These are fatal
// for the process; application hook failures never produce one.
type InfrastructureError struct {
	Op  string // Component that failed (e.g., "config", "store")
	Err error
}

func (e *InfrastructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pagehost: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pagehost: %s", e.Op)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// IsInfrastructureError checks if an error is an infrastructure error.
func IsInfrastructureError(err error) bool {
	var infraErr *InfrastructureError
	return errors.As(err, &infraErr)
}
