package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func query(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 100*time.Millisecond)
	ctx := WithRequestID(context.Background(), "req-7")

	gl.Trace(ctx, time.Now(), query("SELECT 1"), nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), query("SELECT slow"), nil)
	gl.Trace(ctx, time.Now(), query("SELECT broken"), errors.New("syntax error"))
	gl.Trace(ctx, time.Now(), query("SELECT missing"), gormlogger.ErrRecordNotFound)

	assert.Equal(t, 1, recorded.FilterMessage("SQL").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())
	errs := recorded.FilterMessage("SQL error").All()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "req-7", errs[0].ContextMap()["request_id"])
	}
}

func TestGormLogger_TraceID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 0)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x0a, 0xf7},
		SpanID:  trace.SpanID{0x01},
	})

	gl.Trace(trace.ContextWithSpanContext(context.Background(), sc), time.Now(), query("SELECT 1"), nil)

	if assert.Equal(t, 1, recorded.Len()) {
		assert.Equal(t, sc.TraceID().String(), recorded.All()[0].ContextMap()["trace_id"])
	}
}

func TestGormLogger_Silent(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 0).LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), query("SELECT 1"), errors.New("x"))
	gl.Error(context.Background(), "ignored %d", 1)
	assert.Zero(t, recorded.Len())
}

func TestGormLogger_WarnLevelSkipsQueries(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

	gl.Trace(context.Background(), time.Now().Add(-time.Hour), query("SELECT 1"), nil)
	gl.Warn(context.Background(), "pool %s", "exhausted")
	assert.Equal(t, 1, recorded.Len())
	assert.Equal(t, "pool exhausted", recorded.All()[0].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
