package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger for application-wide logging
type Logger struct {
	*zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string    // debug, info, warn, error; anything else means info
	Pretty     bool      // human readable console output instead of JSON
	OutputFile string    // optional file that receives a copy of every line
	Output     io.Writer // defaults to stdout
	Service    string    // added as "service" to every line when set
}

// New creates a new logger with the given configuration
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}
	if cfg.OutputFile != "" {
		if file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			output = io.MultiWriter(output, file)
		}
	}

	zctx := zerolog.New(output).Level(level).With().Timestamp().Caller()
	if cfg.Service != "" {
		zctx = zctx.Str("service", cfg.Service)
	}

	l := zctx.Logger()
	return &Logger{Logger: &l}
}

// NewDefault creates a logger with default settings
func NewDefault() *Logger {
	return New(Config{Level: "info", Pretty: true})
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{Logger: &l}
}

func (l *Logger) with(fn func(zerolog.Context) zerolog.Context) *Logger {
	child := fn(l.With()).Logger()
	return &Logger{Logger: &child}
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("component", component) })
}

// WithContext returns a logger tagged with the request ID that chi's
// RequestID middleware stored in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	requestID := middleware.GetReqID(ctx)
	if requestID == "" {
		return l
	}
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("request_id", requestID) })
}

// WithIP returns a logger with an IP address field
func (l *Logger) WithIP(ip string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("ip", ip) })
}

// WithUser returns a logger with a username field
func (l *Logger) WithUser(username string) *Logger {
	return l.with(func(c zerolog.Context) zerolog.Context { return c.Str("username", username) })
}

// SetGlobal makes l the process-wide logger returned by Global.
// Call it once from main before other goroutines start.
func SetGlobal(l *Logger) {
	log.Logger = *l.Logger
}

// Global returns the process-wide logger
func Global() *Logger {
	return &Logger{Logger: &log.Logger}
}
