package internal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	logMu   sync.Mutex
	logFile *os.File
	logPath string

	sinkOnce sync.Once
	sink     io.Writer

	internalOnce     sync.Once
	internalLogger   *slog.Logger
	internalLevelVar = &slog.LevelVar{}
)

// SetLogPath sets the full path for the log file, including filename.
// Parent directories are created on first use. Must be called before the
// first logger is built to take effect.
func SetLogPath(path string) {
	logMu.Lock()
	defer logMu.Unlock()
	logPath = path
}

func openSink() io.Writer {
	sinkOnce.Do(func() {
		logMu.Lock()
		path := logPath
		logMu.Unlock()

		if path == "" {
			sink = os.Stdout
			return
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			sink = os.Stdout
			return
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			// Can't open log file, fall back to console-only
			sink = os.Stdout
			return
		}

		logMu.Lock()
		logFile = f
		logMu.Unlock()
		sink = io.MultiWriter(os.Stdout, f)
	})
	return sink
}

// NewLogger builds a JSON logger writing to w. A nil writer selects the
// shared stdout/file sink.
func NewLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	if w == nil {
		w = openSink()
	}
	if level == nil {
		level = &slog.LevelVar{}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: false,
	}))
}

// GetInternalLogger returns the framework logger used before the
// application container is available.
func GetInternalLogger() *slog.Logger {
	internalOnce.Do(func() {
		internalLevelVar.Set(slog.LevelError)
		internalLogger = NewLogger(nil, internalLevelVar).With("component", "pagehost")
	})
	return internalLogger
}

func SetInternalLogLevel(level slog.Level) {
	GetInternalLogger()
	internalLevelVar.Set(level)
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func CloseLogger() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
