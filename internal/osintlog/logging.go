// Package osintlog wires the process-wide zerolog logger, mirroring the
// teacher's internal/logging package: one Init(Config) call sets format,
// level and a component tag; every caller then logs through
// github.com/rs/zerolog/log with field-chained calls, never fmt.Println.
package osintlog

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the logger's wire format, minimum level, and a component
// tag attached to every line it emits.
type Config struct {
	// Format "console" selects human-readable console output; any other
	// value (e.g. "json") selects JSON. There is no TTY auto-detection.
	Format string
	// Level is one of zerolog's level names: trace, debug, info, warn,
	// error.
	Level string
	// Component is attached as a "component" field on every log line.
	Component string
}

const defaultTimeFmt = time.RFC3339

var (
	mu            sync.RWMutex
	baseLogger    zerolog.Logger
	baseComponent string
	initialized   bool
)

// Init configures the global zerolog logger. Safe to call once at process
// start; later calls replace the prior configuration.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = defaultTimeFmt

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var writer zerolog.LevelWriter
	format := strings.ToLower(cfg.Format)
	if format == "console" {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	} else {
		writer = zerolog.New(os.Stderr)
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	if cfg.Component != "" {
		logger = logger.With().Str("component", cfg.Component).Logger()
	}

	baseLogger = logger
	baseComponent = cfg.Component
	initialized = true
	log.Logger = baseLogger
}

func parseLevel(raw string) zerolog.Level {
	switch strings.ToLower(raw) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ForComponent returns a zerolog.Logger tagged with an additional
// "subcomponent" field, for a package that wants to distinguish itself
// within the process-wide logger (e.g. the orchestrator vs. a probe).
func ForComponent(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !initialized {
		return log.Logger.With().Str("subcomponent", name).Logger()
	}
	return baseLogger.With().Str("subcomponent", name).Logger()
}
