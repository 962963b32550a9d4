package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/placement/pkg/constants"
)

// Config describes where and how a logger writes.
type Config struct {
	Level      string // trace, debug, info, warn, error or disabled
	Format     string // json, console or auto
	Output     string // stderr, stdout, discard or a file path
	TimeFormat string // Console timestamps: kitchen, rfc3339, datetime or a Go layout
	NoColor    bool
	AddCaller  bool
}

// DefaultConfig returns an info level config that picks console or JSON
// output depending on whether stderr is a terminal.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// envConfig is the configuration of the process-wide default logger.
// LOG_LEVEL takes precedence over DEBUG.
func envConfig() *Config {
	cfg := DefaultConfig()
	switch {
	case os.Getenv("LOG_LEVEL") != "":
		cfg.Level = os.Getenv("LOG_LEVEL")
	case os.Getenv("DEBUG") != "":
		cfg.Level = "debug"
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = format
	}
	return cfg
}

// NewLoggerFromConfig builds a logger from cfg. It also sets the zerolog
// global level, so loggers derived elsewhere follow the same threshold.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(newWriter(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// newWriter resolves the output destination and wraps it in a console
// writer when the format asks for one.
func newWriter(cfg *Config) io.Writer {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		out = io.Discard
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			out = os.Stderr
		} else {
			out = file
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if out == os.Stderr && stderrIsTerminal() {
			format = "console"
		}
	}

	if format == "console" || format == "pretty" {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: parseTimeFormat(cfg.TimeFormat),
			NoColor:    cfg.NoColor,
		}
	}
	return out
}

// parseLevel maps a level name to a zerolog level. Unknown names mean info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

var timeFormats = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"stamp":       time.Stamp,
	"unix":        "",
}

// parseTimeFormat returns the layout for a named format. Anything that
// looks like a Go layout is used as is.
func parseTimeFormat(format string) string {
	if layout, ok := timeFormats[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}
