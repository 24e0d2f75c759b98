// Package debug provides debug logging infrastructure for tmc.
// Logging is only enabled when --debug is passed at startup.
// Logs are written to ~/.tmc/debug.log (or the configured path), truncated on
// each launch. The terminal belongs to the progress renderer while an
// operation runs, so diagnostics never go to stderr.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// LogDirName is the name of the directory containing the log file.
	LogDirName = ".tmc"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  *log.Logger
	logFile *os.File

	// getLogPath is a function variable to allow overriding in tests.
	getLogPath = defaultGetLogPath
)

type initSettings struct {
	path   string
	writer io.Writer
}

// Option configures Init.
type Option func(*initSettings)

// WithPath writes the log to path instead of ~/.tmc/debug.log.
func WithPath(path string) Option {
	return func(s *initSettings) {
		s.path = strings.TrimSpace(path)
	}
}

// WithWriter sends log output to w; no file is opened.
func WithWriter(w io.Writer) Option {
	return func(s *initSettings) {
		s.writer = w
	}
}

// Init initializes the debug logging system.
// If enable is false, all logging operations become no-ops.
// If enable is true, the log file is created or truncated.
func Init(enable bool, opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()

	closeFileLocked()
	enabled = enable
	if !enable {
		logger = log.New(io.Discard, "", 0)
		return nil
	}

	settings := initSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	out := settings.writer
	if out == nil {
		f, err := openLogFile(settings.path)
		if err != nil {
			enabled = false
			logger = log.New(io.Discard, "", 0)
			return err
		}
		logFile = f
		out = f
	}

	logger = log.New(out, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logger.Printf("=== tmc debug log started at %s ===", time.Now().Format(time.RFC3339))
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		p, err := getLogPath()
		if err != nil {
			return nil, fmt.Errorf("determine log path: %w", err)
		}
		path = p
	}

	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	//nolint:gosec // G304: Log path comes from user home or user config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Close closes the debug log file if open.
// Safe to call even if logging is disabled.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
}

func closeFileLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Log writes a debug message if debug logging is enabled.
// Arguments are handled in the manner of fmt.Print.
func Log(v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	logger.Print(v...)
}

// Logf writes a formatted debug message if debug logging is enabled.
// Arguments are handled in the manner of fmt.Printf.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	logger.Printf(format, v...)
}

// Timed logs label when called and returns a func that logs the elapsed time.
//
//	defer debug.Timed("submit 42")()
func Timed(label string) func() {
	if !Enabled() {
		return func() {}
	}
	start := time.Now()
	Logf("%s: begin", label)
	return func() {
		Logf("%s: done in %s", label, time.Since(start).Round(time.Millisecond))
	}
}

// Enabled returns whether debug logging is currently enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// defaultGetLogPath returns the path to the debug log file.
func defaultGetLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}

// GetLogPath returns the default path to the debug log file.
func GetLogPath() (string, error) {
	return getLogPath()
}
