// Package logx provides structured logging functionality with optional debug and file output.
package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogFileName is the file written inside the log directory when file logging is enabled.
const LogFileName = "aeos-in-notion.log"

const timestampFormat = "2006-01-02T15:04:05.000Z"

type Logger struct {
	component string
}

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// DebugConfig controls debug logging behavior.
type DebugConfig struct {
	Enabled     bool
	FileLogging bool
	LogDir      string
	Domains     map[string]bool // Which domains to enable debug for (nil = all)
}

// Global debug configuration and output sinks.
//
//nolint:gochecknoglobals // Process-wide logging configuration
var (
	debugConfig = &DebugConfig{}
	debugMutex  sync.RWMutex

	// logWriter overrides stderr when set (tests).
	logWriter     io.Writer
	logFile       *os.File
	logWriterLock sync.Mutex
)

// Initialize debug configuration from environment variables.
func init() { //nolint:gochecknoinits // Required for env var initialization
	initDebugFromEnv()
}

// initDebugFromEnv initializes debug configuration from environment variables.
func initDebugFromEnv() {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugConfig.LogDir == "" {
		debugConfig.LogDir = DefaultLogDir()
	}

	// DEBUG=1 or DEBUG=true
	if debug := os.Getenv("DEBUG"); debug == "1" || strings.EqualFold(debug, "true") {
		debugConfig.Enabled = true
	}

	// DEBUG_DOMAINS=poller,notion
	if domains := os.Getenv("DEBUG_DOMAINS"); domains != "" {
		debugConfig.Domains = make(map[string]bool)
		for _, domain := range strings.Split(domains, ",") {
			debugConfig.Domains[strings.TrimSpace(domain)] = true
		}
	}
}

// DefaultLogDir returns ./logs relative to the working directory.
func DefaultLogDir() string {
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, "logs")
	}
	return "logs"
}

func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// SetDebugConfig configures global debug logging settings.
// When fileLogging is set, every log line is also appended to <logDir>/aeos-in-notion.log.
func SetDebugConfig(enabled, fileLogging bool, logDir string) {
	debugMutex.Lock()
	debugConfig.Enabled = enabled
	debugConfig.FileLogging = fileLogging
	if logDir == "" {
		logDir = DefaultLogDir()
	}
	debugConfig.LogDir = logDir
	debugMutex.Unlock()

	logWriterLock.Lock()
	defer logWriterLock.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	if !fileLogging {
		return
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create log directory %s: %v\n", logDir, err)
		return
	}
	f, err := os.OpenFile(filepath.Join(logDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open log file in %s: %v\n", logDir, err)
		return
	}
	logFile = f
}

// SetDebugDomains configures which domains should have debug logging enabled.
func SetDebugDomains(domains []string) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if len(domains) == 0 {
		debugConfig.Domains = nil // Enable all domains
		return
	}
	debugConfig.Domains = make(map[string]bool)
	for _, domain := range domains {
		debugConfig.Domains[strings.TrimSpace(domain)] = true
	}
}

// IsDebugEnabled returns whether debug logging is enabled.
func IsDebugEnabled() bool {
	debugMutex.RLock()
	defer debugMutex.RUnlock()
	return debugConfig.Enabled
}

// IsDebugEnabledForDomain returns whether debug logging is enabled for a specific domain.
func IsDebugEnabledForDomain(domain string) bool {
	debugMutex.RLock()
	defer debugMutex.RUnlock()

	if !debugConfig.Enabled {
		return false
	}
	if debugConfig.Domains == nil {
		return true
	}
	return debugConfig.Domains[domain]
}

// Close flushes and closes the log file, if one is open.
func Close() error {
	logWriterLock.Lock()
	defer logWriterLock.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

func writeLine(line string) {
	logWriterLock.Lock()
	defer logWriterLock.Unlock()

	var out io.Writer = os.Stderr
	if logWriter != nil {
		out = logWriter
	}
	fmt.Fprintln(out, line)

	if logFile != nil {
		fmt.Fprintln(logFile, line)
	}
}

func formatLine(component string, level Level, message string) string {
	timestamp := time.Now().UTC().Format(timestampFormat)
	return fmt.Sprintf("[%s] [%s] %s: %s", timestamp, component, level, message)
}

func (l *Logger) log(level Level, format string, args ...any) {
	writeLine(formatLine(l.component, level, fmt.Sprintf(format, args...)))
}

func (l *Logger) Debug(format string, args ...any) {
	if !IsDebugEnabled() {
		return
	}
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// componentKey is the context key carrying the logging component name.
type componentKey struct{}

// WithComponent returns a context whose Debug calls are attributed to component.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey{}, component)
}

// Debug logs a debug message with context and domain filtering.
//
//	logx.Debug(ctx, "poller", "tick skipped: %s", reason)
//
// Environment variable control:
//
//	DEBUG=1                          # Enable debug for all domains
//	DEBUG=1 DEBUG_DOMAINS=poller     # Enable debug only for the poller domain
func Debug(ctx context.Context, domain, format string, args ...any) {
	if !IsDebugEnabledForDomain(domain) {
		return
	}

	component := "unknown"
	if ctx != nil {
		if c, ok := ctx.Value(componentKey{}).(string); ok {
			component = c
		}
	}

	message := fmt.Sprintf("[%s] %s", domain, fmt.Sprintf(format, args...))
	writeLine(formatLine(component, LevelDebug, message))
}

// DebugState logs state transition information.
func (l *Logger) DebugState(action, state string, extra ...string) {
	extraInfo := ""
	if len(extra) > 0 {
		extraInfo = fmt.Sprintf(" - %s", extra[0])
	}
	l.Debug("State %s: %s%s", action, state, extraInfo)
}

func (l *Logger) GetComponent() string {
	return l.component
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{component: component}
}

// Global logging functions for convenience.
var defaultLogger = NewLogger("system") //nolint:gochecknoglobals

func Debugf(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

func Infof(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

func Warnf(format string, args ...any) {
	defaultLogger.Warn(format, args...)
}

// Errorf logs and returns the formatted error.
//
//	err := logx.Errorf("setup failed: %w", err)
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	defaultLogger.Error("%s", err.Error())
	return err
}

// Wrap logs msg + ": " + err.Error() and returns fmt.Errorf("%s: %w", msg, err).
//
//	if err != nil { return logx.Wrap(err, "open journal") }
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	wrappedErr := fmt.Errorf("%s: %w", msg, err)
	defaultLogger.Error("%s", wrappedErr.Error())
	return wrappedErr
}
