// Package logging builds the run logger: zap with a console-style encoder writing to a
// rotating file and, optionally, stdout.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// With creates a child logger with additional fields.
	With(fields ...zap.Field) Logger
	// Named creates a child logger with the given name.
	Named(name string) Logger

	Zap() *zap.Logger
	// Sync flushes any buffered log entries.
	Sync() error
	// Close flushes and releases the log file. Child loggers share it.
	Close() error
}

type zapLogger struct {
	zl     *zap.Logger
	sl     *zap.SugaredLogger
	closer io.Closer
}

// NewLogger creates a Logger from the given Config.
func NewLogger(config Config) (Logger, error) {
	config.applyDefaults()

	ws, closer, err := getWriteSyncer(config)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", config.File, err)
	}
	core := zapcore.NewCore(GetEncoder(config), ws, config.TransportLevel())

	l := newZapLogger(zap.New(core))
	l.closer = closer
	return l, nil
}

func newZapLogger(zl *zap.Logger) *zapLogger {
	return &zapLogger{
		zl: zl,
		sl: zl.Sugar(),
	}
}

// FromZap wraps an existing *zap.Logger as a Logger.
func FromZap(zl *zap.Logger) Logger {
	return newZapLogger(zl)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return newZapLogger(zap.NewNop())
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) {
	l.zl.Debug(msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...zap.Field) {
	l.zl.Info(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...zap.Field) {
	l.zl.Warn(msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...zap.Field) {
	l.zl.Error(msg, fields...)
}

func (l *zapLogger) Debugf(format string, args ...any) {
	l.sl.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...any) {
	l.sl.Infof(format, args...)
}

func (l *zapLogger) Warnf(format string, args ...any) {
	l.sl.Warnf(format, args...)
}

func (l *zapLogger) Errorf(format string, args ...any) {
	l.sl.Errorf(format, args...)
}

func (l *zapLogger) With(fields ...zap.Field) Logger {
	zl := l.zl.With(fields...)
	return &zapLogger{zl: zl, sl: zl.Sugar(), closer: l.closer}
}

func (l *zapLogger) Named(name string) Logger {
	zl := l.zl.Named(name)
	return &zapLogger{zl: zl, sl: zl.Sugar(), closer: l.closer}
}

func (l *zapLogger) Zap() *zap.Logger {
	return l.zl
}

func (l *zapLogger) Sync() error {
	return l.zl.Sync()
}

func (l *zapLogger) Close() error {
	// stdout cannot always be synced; the file is closed regardless
	_ = l.zl.Sync()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

var _ Logger = (*zapLogger)(nil)
