package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
)

// Logger wraps zerolog.Logger with additional functionality
type Logger struct {
	*zerolog.Logger
	closer io.Closer
}

// NewLogger creates a new logger based on configuration and installs it as the global logger
func NewLogger(cfg config.LoggingConfig) *Logger {
	out, closer, err := openOutput(cfg.Output)
	l := New(out, cfg)
	l.closer = closer
	if err != nil {
		l.Logger.Warn().Err(err).Str("output", cfg.Output).Msg("Falling back to stdout for logging")
	}

	log.Logger = *l.Logger
	return l
}

// New creates a logger writing to w without touching the global logger
func New(w io.Writer, cfg config.LoggingConfig) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    w != os.Stdout && w != os.Stderr,
		}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.EnableCaller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	return &Logger{Logger: &logger}
}

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stdout, nil, err
	}
	return f, f, nil
}

func (l *Logger) derive(logger zerolog.Logger) *Logger {
	return &Logger{Logger: &logger, closer: l.closer}
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.derive(l.Logger.With().Interface(key, value).Logger())
}

// WithError adds an error to the logger
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.Logger.With().Err(err).Logger())
}

// WithComponent adds a component name to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return l.derive(l.Logger.With().Str("component", component).Logger())
}

// WithCabinet tags every entry with the cabinet it concerns
func (l *Logger) WithCabinet(cabinetID string) *Logger {
	return l.derive(l.Logger.With().Str("cabinet_id", cabinetID).Logger())
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string) {
	l.Logger.Fatal().Msg(msg)
}

// FatalWithError logs a fatal message with error and exits
func (l *Logger) FatalWithError(err error, msg string) {
	l.Logger.Fatal().Err(err).Msg(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.Logger.Error().Msg(msg)
}

// ErrorWithError logs an error message with error
func (l *Logger) ErrorWithError(err error, msg string) {
	l.Logger.Error().Err(err).Msg(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.Logger.Warn().Msg(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.Logger.Info().Msg(msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.Logger.Debug().Msg(msg)
}

// Close releases a log file opened for a path output
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Nop returns a logger that discards everything, for tests
func Nop() *Logger {
	logger := zerolog.Nop()
	return &Logger{Logger: &logger}
}
