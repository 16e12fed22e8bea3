/*
Package logging wraps zap for nx's structured logging. It follows the
teacher's pattern of a single package-level sugared logger initialized
once by the root command's PersistentPreRunE, before the AppContext is
built, with small With* helpers for adding
context to a call site.
*/
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLogger *zap.SugaredLogger

// Logger wraps zap.SugaredLogger with nx-specific helpers.
type Logger struct {
	*zap.SugaredLogger
}

// Init initializes the global logger. verbose selects debug level and a
// development (console, caller-annotated) encoder; otherwise a quiet
// warn-level production (JSON) encoder is used. Both write to stderr only, since stdout is
// reserved for command output (including --json).
func Init(verbose bool) error {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	defaultLogger = logger.Sugar()
	return nil
}

// Get returns the global logger, lazily building a quiet default if Init
// was never called (e.g. in unit tests that construct components directly).
func Get() *Logger {
	if defaultLogger == nil {
		logger, _ := zap.NewProduction()
		defaultLogger = logger.Sugar()
	}
	return &Logger{defaultLogger}
}

// WithError returns a logger annotated with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{l.SugaredLogger.With("error", err)}
}

// WithField returns a logger annotated with an arbitrary key/value.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{l.SugaredLogger.With(key, value)}
}
