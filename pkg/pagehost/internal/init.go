// Package internal contains process-wide infrastructure for the pagehost
// framework: the log sink and the framework's own logger.
// Types and functions in this package are not part of the public API.
package internal
