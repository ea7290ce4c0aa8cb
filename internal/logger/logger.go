package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	TRACE: "TRACE",
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Component represents the logging component
type Component string

const (
	ComponentApp        Component = "app"
	ComponentDownloader Component = "downloader"
	ComponentCipher     Component = "cipher"
	ComponentPlayer     Component = "player"
	ComponentClient     Component = "client"
	ComponentFormat     Component = "format"
)

// Format represents the log output format
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatColor
)

// Config holds logger configuration
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	Components map[Component]bool
	Timestamp  bool
}

// DefaultConfig returns default logger configuration. Only the app component
// is enabled; the rest are opted into when debugging the respective area.
func DefaultConfig() *Config {
	return &Config{
		Level:  INFO,
		Format: FormatText,
		Output: os.Stderr,
		Components: map[Component]bool{
			ComponentApp:        true,
			ComponentDownloader: false,
			ComponentCipher:     false,
			ComponentPlayer:     false,
			ComponentClient:     false,
			ComponentFormat:     false,
		},
		Timestamp: false,
	}
}

// Entry represents a single log entry
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Component Component      `json:"component"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger provides structured, component-filtered logging.
type Logger struct {
	config *Config
	mu     sync.RWMutex
}

// New creates a new logger instance
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	return &Logger{config: config}
}

// WithComponent creates a logger view scoped to one component.
func (l *Logger) WithComponent(component Component) *ComponentLogger {
	return &ComponentLogger{logger: l, component: component}
}

// SetLevel changes the logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// SetFormat changes the log format
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Format = format
}

// SetOutput changes the log output
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Output = w
}

// EnableComponent enables logging for a specific component
func (l *Logger) EnableComponent(component Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Components[component] = true
}

// DisableComponent disables logging for a specific component
func (l *Logger) DisableComponent(component Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Components[component] = false
}

func (l *Logger) log(level Level, component Component, message string, fields map[string]any) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.config.Level {
		return
	}
	if !l.config.Components[component] {
		return
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level,
		Component: component,
		Message:   message,
		Fields:    fields,
	}

	var out string
	switch l.config.Format {
	case FormatJSON:
		data, _ := json.Marshal(entry)
		out = string(data)
	case FormatColor:
		out = l.formatColor(entry)
	default:
		out = l.formatText(entry)
	}
	fmt.Fprintln(l.config.Output, out)
}

func (l *Logger) formatText(entry Entry) string {
	var parts []string
	if l.config.Timestamp {
		parts = append(parts, entry.Timestamp.Format("2006-01-02 15:04:05"))
	}
	parts = append(parts,
		fmt.Sprintf("[%s]", levelNames[entry.Level]),
		fmt.Sprintf("[%s]", entry.Component),
		entry.Message,
	)
	if len(entry.Fields) > 0 {
		parts = append(parts, formatFields(entry.Fields, "", "", ""))
	}
	return strings.Join(parts, " ")
}

func (l *Logger) formatColor(entry Entry) string {
	var parts []string
	if l.config.Timestamp {
		parts = append(parts, "\033[90m"+entry.Timestamp.Format("2006-01-02 15:04:05")+"\033[0m")
	}
	parts = append(parts,
		fmt.Sprintf("%s[%s]\033[0m", levelColor(entry.Level), levelNames[entry.Level]),
		fmt.Sprintf("\033[36m[%s]\033[0m", entry.Component),
		entry.Message,
	)
	if len(entry.Fields) > 0 {
		parts = append(parts, formatFields(entry.Fields, "\033[33m", "\033[32m", "\033[0m"))
	}
	return strings.Join(parts, " ")
}

func formatFields(fields map[string]any, keyColor, valColor, reset string) string {
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s%s%s=%s%v%s", keyColor, k, reset, valColor, v, reset))
	}
	return strings.Join(parts, " ")
}

func levelColor(level Level) string {
	switch level {
	case TRACE:
		return "\033[37m"
	case DEBUG:
		return "\033[94m"
	case INFO:
		return "\033[92m"
	case WARN:
		return "\033[93m"
	case ERROR:
		return "\033[91m"
	default:
		return "\033[0m"
	}
}

// ComponentLogger provides component-specific logging
type ComponentLogger struct {
	logger    *Logger
	component Component
}

// Trace logs a trace message
func (cl *ComponentLogger) Trace(message string, fields ...map[string]any) {
	cl.log(TRACE, message, fields...)
}

// Debug logs a debug message
func (cl *ComponentLogger) Debug(message string, fields ...map[string]any) {
	cl.log(DEBUG, message, fields...)
}

// Info logs an info message
func (cl *ComponentLogger) Info(message string, fields ...map[string]any) {
	cl.log(INFO, message, fields...)
}

// Warn logs a warning message
func (cl *ComponentLogger) Warn(message string, fields ...map[string]any) {
	cl.log(WARN, message, fields...)
}

// Error logs an error message
func (cl *ComponentLogger) Error(message string, fields ...map[string]any) {
	cl.log(ERROR, message, fields...)
}

func (cl *ComponentLogger) log(level Level, message string, fields ...map[string]any) {
	var merged map[string]any
	if len(fields) > 0 {
		merged = fields[0]
	}
	cl.logger.log(level, cl.component, message, merged)
}

// Global logger instance
var globalLogger = New(DefaultConfig())

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger
}

// WithComponent returns a component logger from the global logger
func WithComponent(component Component) *ComponentLogger {
	return globalLogger.WithComponent(component)
}
