// Package obslog provides the structured logger used at construction,
// compaction and snapshot boundaries. It is never invoked from the
// per-query hot path: EdgeVec's synchronous execution model has no
// background logging.
package obslog

import "go.uber.org/zap"

// Logger wraps a zap.Logger so callers depend on this package, not zap
// directly, keeping the concrete logging library an implementation detail.
type Logger struct {
	z *zap.Logger
}

// NewNop returns a Logger that discards everything, the default when a
// caller does not supply one.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// NewProduction returns a Logger configured for production use (JSON,
// info level and above).
func NewProduction() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// NewDevelopment returns a Logger configured for human-readable local
// development output.
func NewDevelopment() (*Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Error(msg, fields...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.z == nil {
		return nil
	}
	return l.z.Sync()
}
