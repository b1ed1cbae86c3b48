package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

// NewLogger creates a new logger instance with production configuration
func NewLogger() (*Logger, error) {
	return build(zap.NewProductionConfig(), zapcore.InfoLevel)
}

// NewDevelopmentLogger creates a human readable logger at debug level.
func NewDevelopmentLogger() (*Logger, error) {
	return build(zap.NewDevelopmentConfig(), zapcore.DebugLevel)
}

// NewNop returns a logger that discards everything. Used by tests and as the
// fallback when no logger is configured.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func build(config zap.Config, level zapcore.Level) (*Logger, error) {
	// Set the output to stdout
	config.OutputPaths = []string{"stdout"}

	// Set the error output to stderr
	config.ErrorOutputPaths = []string{"stderr"}

	config.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
