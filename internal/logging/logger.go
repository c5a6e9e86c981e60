// Package logging provides structured logging for smarthome-dash.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/cristianoliveira/smarthome-dash/internal/config"
)

// Logger is the structured logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning message.
	Warn(msg string, args ...any)
	// Error logs an error message.
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes any buffered logs and releases resources.
	Shutdown() error
}

// loggerImpl is the charmbracelet/log based implementation.
type loggerImpl struct {
	clogger  *clog.Logger
	closer   io.Closer
	redactor *redactor
	fields   []any
	path     string
}

// Init opens a JSON log file under the logs directory of cfg.StateDir and
// returns a Logger writing to it. If cfg.Enabled is false, returns a no-op
// logger.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = config.Get("state_dir", "")
	}
	logDir, err := logDirFor(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to determine log directory: %w", err)
	}
	// Keep room for the file about to be created.
	if err := rotate(logDir, cfg.MaxFiles-1); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	fname := fmt.Sprintf("%s%s_PID%d_%s.log",
		logFilePrefix,
		time.Now().Format("20060102_150405"),
		cfg.PID,
		strings.ReplaceAll(cfg.Command, " ", "_"))
	path := filepath.Join(logDir, fname)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	clogger := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
	})
	clogger.SetFormatter(clog.JSONFormatter)
	clogger = clogger.With("pid", cfg.PID, "command", cfg.Command)
	return &loggerImpl{
		clogger:  clogger,
		closer:   f,
		redactor: newRedactor(),
		path:     path,
	}, nil
}

// NewConsole returns a Logger writing human-readable lines to w.
// Headless commands use it to report poll cycles on stderr.
func NewConsole(w io.Writer, level string) Logger {
	clogger := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           parseLevel(level),
	})
	return &loggerImpl{clogger: clogger, redactor: newRedactor()}
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *loggerImpl) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *loggerImpl) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *loggerImpl) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

// log writes a log entry with redaction applied to the key-value pairs.
func (l *loggerImpl) log(level clog.Level, msg string, args []any) {
	all := make([]any, 0, len(l.fields)+len(args))
	all = append(all, l.fields...)
	all = append(all, args...)
	l.clogger.Log(level, msg, l.redactor.redact(all)...)
}

func (l *loggerImpl) With(args ...any) Logger {
	fields := make([]any, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &loggerImpl{
		clogger:  l.clogger,
		closer:   l.closer,
		redactor: l.redactor,
		fields:   fields,
		path:     l.path,
	}
}

func (l *loggerImpl) Shutdown() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// noopLogger is a logger that discards all output.
type noopLogger struct{}

func (n noopLogger) Debug(msg string, args ...any) {}
func (n noopLogger) Info(msg string, args ...any)  {}
func (n noopLogger) Warn(msg string, args ...any)  {}
func (n noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) With(args ...any) Logger       { return n }
func (n noopLogger) Shutdown() error               { return nil }

// Nop returns a logger that discards everything.
func Nop() Logger { return noopLogger{} }

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

// InitGlobal initializes the global logger from the global configuration
// and mirrors console messages into it.
func InitGlobal() error {
	l, err := Init(FromGlobalConfig())
	if err != nil {
		return err
	}
	SetGlobal(l)
	colors.SetLogger(l)
	if path := CurrentLogFile(); path != "" {
		colors.Debug("Logging to file:", path)
	}
	return nil
}

// SetGlobal replaces the global logger.
func SetGlobal(l Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = l
}

// GetGlobal returns the global logger, or a no-op logger if not initialized.
func GetGlobal() Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if globalLogger == nil {
		return noopLogger{}
	}
	return globalLogger
}

// ShutdownGlobal shuts down the global logger.
func ShutdownGlobal() error {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		return nil
	}
	err := globalLogger.Shutdown()
	globalLogger = nil
	return err
}

// CurrentLogFile returns the path of the active global log file, or "" when
// logging is disabled.
func CurrentLogFile() string {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if impl, ok := globalLogger.(*loggerImpl); ok {
		return impl.path
	}
	return ""
}
