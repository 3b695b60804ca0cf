package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Format selects the output encoding
type Format string

const (
	// FormatConsole is a human-readable single-line format
	FormatConsole Format = "console"
	// FormatJSON emits one JSON object per line
	FormatJSON Format = "json"
)

// Logger is the main logger instance
type Logger struct {
	mu       sync.Mutex
	level    Level
	format   Format
	writer   io.Writer
	exitFunc func(int)
}

// NewLogger creates a new logger writing to stdout
func NewLogger(level Level, format Format) *Logger {
	return &Logger{
		level:    level,
		format:   format,
		writer:   os.Stdout,
		exitFunc: os.Exit,
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// log is the internal logging method
func (l *Logger) log(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.level.Enabled(level) {
		return
	}

	now := time.Now()

	var line []byte
	if l.format == FormatJSON {
		payload := map[string]interface{}{
			"time":    now.Format(time.RFC3339Nano),
			"level":   level.String(),
			"message": msg,
		}
		for k, v := range fields {
			payload[k] = v
		}
		line, _ = json.Marshal(payload)
		line = append(line, '\n')
	} else {
		buf := fmt.Sprintf("%s | %-5s | %s", now.Format("2006-01-02 15:04:05"), level.String(), msg)
		if len(fields) > 0 {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				buf += fmt.Sprintf(" %s=%v", k, fields[k])
			}
		}
		line = []byte(buf + "\n")
	}

	if _, err := l.writer.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "logx: write error: %v\n", err)
	}
}

// Entry allows building up log entries with multiple fields
type Entry struct {
	logger *Logger
	fields Fields
}

// WithField adds a field to the entry (chainable)
func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry (chainable)
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError adds an error field (chainable)
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

// Debug logs at debug level
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields) }

// Info logs at info level
func (e *Entry) Info(msg string) { e.logger.log(LevelInfo, msg, e.fields) }

// Warn logs at warn level
func (e *Entry) Warn(msg string) { e.logger.log(LevelWarn, msg, e.fields) }

// Error logs at error level
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields) }

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	e := &Entry{logger: l, fields: make(Fields, len(fields))}
	return e.WithFields(fields)
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return l.WithFields(Fields{key: value})
}

// WithError creates a new entry with an error field
func (l *Logger) WithError(err error) *Entry {
	e := &Entry{logger: l, fields: make(Fields, 1)}
	return e.WithError(err)
}
