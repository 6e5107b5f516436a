package logger

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM output through zap under the "gorm" name. Query
// lines carry the request and trace ids of the context they ran in.
type GormLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

// NewGormLogger logs queries slower than slow at warn; zero turns slow
// query logging off.
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *GormLogger {
	return &GormLogger{logger: base.Named("gorm"), level: level, slow: slow}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level >= min {
		l.logger.Sugar().Logf(lvl, msg, data...)
	}
}

// Trace logs failed statements at error, slow ones at warn and the rest at
// debug. Record-not-found is a normal lookup miss and is never logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	var (
		lvl    zapcore.Level
		msg    string
		fields []zap.Field
	)
	switch {
	case l.level >= gormlogger.Error && err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		lvl, msg, fields = zapcore.ErrorLevel, "SQL error", []zap.Field{zap.Error(err)}
	case l.level >= gormlogger.Warn && l.slow > 0 && elapsed > l.slow:
		lvl, msg, fields = zapcore.WarnLevel, "Slow SQL", []zap.Field{zap.Duration("threshold", l.slow)}
	case l.level >= gormlogger.Info:
		lvl, msg = zapcore.DebugLevel, "SQL"
	default:
		return
	}

	sql, rows := fc()
	fields = append(fields, zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	l.scoped(ctx).Log(lvl, msg, fields...)
}

func (l *GormLogger) scoped(ctx context.Context) *zap.Logger {
	log := l.logger
	if id := GetRequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		log = log.With(zap.String("trace_id", sc.TraceID().String()))
	}
	return log
}

// MapGormLogLevel derives the GORM level from the application log level.
// Debug and info show every statement; anything unknown shows warnings.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
