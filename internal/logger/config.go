package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// EnvironmentConfig builds a Config from STREAMGET_LOG_* environment
// variables, falling back to defaults for anything unset.
//
//	STREAMGET_LOG_LEVEL      TRACE|DEBUG|INFO|WARN|ERROR
//	STREAMGET_LOG_FORMAT     text|json|color
//	STREAMGET_LOG_OUTPUT     stdout|stderr|null
//	STREAMGET_LOG_COMPONENTS comma-separated component names to enable
//	STREAMGET_LOG_TIMESTAMP  true|1
func EnvironmentConfig() *Config {
	config := DefaultConfig()

	if v := os.Getenv("STREAMGET_LOG_LEVEL"); v != "" {
		if level, err := ParseLevel(v); err == nil {
			config.Level = level
		}
	}
	if v := os.Getenv("STREAMGET_LOG_FORMAT"); v != "" {
		if format, err := ParseFormat(v); err == nil {
			config.Format = format
		}
	}
	if v := os.Getenv("STREAMGET_LOG_OUTPUT"); v != "" {
		if w, err := parseOutput(v); err == nil {
			config.Output = w
		}
	}
	if v := os.Getenv("STREAMGET_LOG_TIMESTAMP"); v != "" {
		config.Timestamp = v == "true" || v == "1"
	}
	if v := os.Getenv("STREAMGET_LOG_COMPONENTS"); v != "" {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				config.Components[Component(name)] = true
			}
		}
	}
	return config
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown level: %s", s)
	}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "color", "colored":
		return FormatColor, nil
	default:
		return FormatText, fmt.Errorf("unknown format: %s", s)
	}
}

func parseOutput(s string) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "null", "none":
		return io.Discard, nil
	default:
		return nil, fmt.Errorf("unknown output: %s", s)
	}
}
