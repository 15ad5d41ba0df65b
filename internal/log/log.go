// Package log provides structured logging for hues.
// Entries carry a level, a category and key=value fields. Logging is off
// until Init is called, which the CLI does for --debug or HUES_DEBUG.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/hues/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelDebug, fmt.Errorf("unknown log level %q", s)
}

// Category groups related log messages.
type Category string

const (
	CatConfig    Category = "config"    // Configuration loading/saving
	CatWatcher   Category = "watcher"   // File watcher events
	CatScheduler Category = "scheduler" // Coalescing worker and timers
	CatMatcher   Category = "matcher"   // Token pattern compilation and scans
	CatIcon      Category = "icon"      // Gutter icon synthesis
	CatRender    Category = "render"    // Highlight passes and overlays
	CatCache     Category = "cache"     // cache operations
	CatDB        Category = "db"        // Timing history store
	CatUI        Category = "ui"        // Viewer updates
)

// Entry is one formatted log record as published to listeners.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	// Line is the full text written to the log file, without the newline.
	Line string
}

func (e Entry) String() string { return e.Line }

// Options configures Init.
type Options struct {
	// MinLevel drops entries below it.
	MinLevel Level
	// Tea opens the file through tea.LogToFile with the given prefix so the
	// Bubble Tea runtime shares it. Empty opens the file directly.
	Tea string
}

// Logger writes entries and fans them out to listeners.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[Entry]
}

var (
	loggerMu      sync.RWMutex
	defaultLogger *Logger
)

func current() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

func install(l *Logger) {
	loggerMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	loggerMu.Unlock()
	if prev != nil && prev.broker != nil {
		prev.broker.Close()
	}
}

// Init opens path for appending and makes it the global log. The returned
// cleanup closes the file.
func Init(path string, opts Options) (func(), error) {
	var (
		f   *os.File
		err error
	)
	if opts.Tea != "" {
		f, err = tea.LogToFile(path, opts.Tea)
	} else {
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is the user's debug log
	}
	if err != nil {
		return nil, err
	}

	l := newLogger(f, opts.MinLevel)
	l.closer = f
	install(l)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		_ = l.closer.Close()
		l.enabled = false
	}, nil
}

func newLogger(w io.Writer, level Level) *Logger {
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: level,
		broker:   pubsub.NewBroker[Entry](),
	}
}

// SetOutput replaces the global logger with one writing to w at debug
// level. Passing nil disables logging.
func SetOutput(w io.Writer) {
	if w == nil {
		install(nil)
		return
	}
	install(newLogger(w, LevelDebug))
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	if !l.enabled || level < l.minLevel {
		l.mu.Unlock()
		return
	}

	now := time.Now()
	// 2025-12-06T10:45:00 [ERROR] [render] message key=value key2=value2
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", now.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	entry := Entry{Time: now, Level: level, Category: cat, Message: msg, Line: b.String()}

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry.Line+"\n")
	}
	l.mu.Unlock()

	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// LogEvent is a pubsub event carrying a log entry.
type LogEvent = pubsub.Event[Entry]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[Entry]

// NewListener creates a log event listener that stops with ctx. It is nil
// while logging is off.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.broker)
}

// SubscriberCount reports how many listeners are attached.
func SubscriberCount() int {
	l := current()
	if l == nil {
		return 0
	}
	return l.broker.SubscriberCount()
}
