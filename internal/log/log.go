package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// Levels outside the four slog defines.
const (
	LevelTrace = slog.Level(-8)
	LevelNone  = slog.Level(12)
)

// ParseLevel maps a flag or config value onto a slog level. Unknown names
// disable logging.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// New builds a JSON logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl <= LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Trace logs below debug.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// FileWriter appends to a log file and can reopen it after rotation.
type FileWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
	sigs chan os.Signal
}

// OpenFile creates parent directories as needed and opens path for append.
func OpenFile(path string) (*FileWriter, error) {
	w := &FileWriter{path: path}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for '%s': %w", path, err)
	}
	if err := w.Reopen(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return 0, os.ErrClosed
	}
	return w.file.Write(p)
}

// Reopen closes the current handle and opens the path again.
func (w *FileWriter) Reopen() error {
	fh, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file '%s': %w", w.path, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		_ = w.file.Close()
	}
	w.file = fh
	return nil
}

// WatchRotation reopens the file on SIGHUP:
//
//	mv sandpy.log sandpy.bak && kill -HUP <pid>
func (w *FileWriter) WatchRotation() {
	w.mu.Lock()
	if w.sigs != nil {
		w.mu.Unlock()
		return
	}
	w.sigs = make(chan os.Signal, 1)
	sigs := w.sigs
	w.mu.Unlock()

	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		for range sigs {
			if err := w.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		}
	}()
}

func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sigs != nil {
		signal.Stop(w.sigs)
		close(w.sigs)
		w.sigs = nil
	}
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Setup returns a logger for the CLI. With an empty path or a file that
// cannot be opened it falls back to stderr. The returned close func is
// always safe to call.
func Setup(level, path string) (*slog.Logger, func() error) {
	if path == "" {
		return New(os.Stderr, level), func() error { return nil }
	}
	w, err := OpenFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; falling back to stderr\n", err)
		return New(os.Stderr, level), func() error { return nil }
	}
	w.WatchRotation()
	return New(w, level), w.Close
}
