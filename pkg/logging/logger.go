// Package logging provides per-component file logging for the daemon and the
// TUI client. Both run terminal-attached surfaces, so nothing here ever
// writes to stdout; all output goes to a run-scoped file under
// ~/.maestro/logs, with stderr as the fallback when that fails.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	runID     string
	runIDOnce sync.Once

	logDir     string
	logDirOnce sync.Once
	logDirErr  error
)

// RunID returns the identifier shared by every logger in this process. It
// doubles as the log file name, so all components of one run interleave in
// one file.
func RunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func ensureLogDir() error {
	logDirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			logDirErr = fmt.Errorf("resolve home directory: %w", err)
			return
		}
		logDir = filepath.Join(home, ".maestro", "logs")
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			logDirErr = fmt.Errorf("create log directory: %w", err)
		}
	})
	return logDirErr
}

// Logger writes timestamped entries tagged with a component name. All level
// methods write unconditionally; there is no level filtering.
type Logger struct {
	component string
	out       *log.Logger
	file      *os.File
	mu        sync.Mutex
	closeOnce sync.Once
	path      string
}

// New creates a logger for one component. When the log file cannot be
// opened the returned logger writes to stderr instead, and the error tells
// the caller it is running in fallback mode.
func New(component string) (*Logger, error) {
	if err := ensureLogDir(); err != nil {
		return fallback(component, err), err
	}

	path := filepath.Join(logDir, RunID()+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		err = fmt.Errorf("open log file: %w", err)
		return fallback(component, err), err
	}

	return &Logger{
		component: component,
		out:       log.New(file, "", 0),
		file:      file,
		path:      path,
	}, nil
}

func fallback(component string, err error) *Logger {
	out := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	out.Printf("file logging unavailable, using stderr: %v", err)
	return &Logger{component: component, out: out}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.out.Printf("[%s] [%s] [%s] %s", ts, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// Path returns the log file path, empty in fallback mode.
func (l *Logger) Path() string { return l.path }

// Writer returns the underlying destination, for pointing third-party
// library output away from the terminal.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

// Close closes the log file. Safe to call more than once.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
