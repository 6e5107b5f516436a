package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThresh = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that annotate
// each span with the table, rows affected and a slow query marker.
// Query variables stay out of spans unless DBLogFullSQL is set.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThresh
	}
	if err := registerSpanCallbacks(db, thresh); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", thresh),
	)
	return nil
}

func registerSpanCallbacks(db *gorm.DB, thresh time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, thresh) }

	cb := db.Callback()
	regs := []struct {
		name string
		err  error
	}{
		{"create", cb.Create().Before("gorm:create").Register("zm_trace:before_create", before)},
		{"query", cb.Query().Before("gorm:query").Register("zm_trace:before_query", before)},
		{"update", cb.Update().Before("gorm:update").Register("zm_trace:before_update", before)},
		{"delete", cb.Delete().Before("gorm:delete").Register("zm_trace:before_delete", before)},
		{"row", cb.Row().Before("gorm:row").Register("zm_trace:before_row", before)},
		{"raw", cb.Raw().Before("gorm:raw").Register("zm_trace:before_raw", before)},
		{"create", cb.Create().After("gorm:create").Register("zm_trace:after_create", after)},
		{"query", cb.Query().After("gorm:query").Register("zm_trace:after_query", after)},
		{"update", cb.Update().After("gorm:update").Register("zm_trace:after_update", after)},
		{"delete", cb.Delete().After("gorm:delete").Register("zm_trace:after_delete", after)},
		{"row", cb.Row().After("gorm:row").Register("zm_trace:after_row", after)},
		{"raw", cb.Raw().After("gorm:raw").Register("zm_trace:after_raw", after)},
	}
	for _, r := range regs {
		if r.err != nil {
			return fmt.Errorf("register %s trace callback: %w", r.name, r.err)
		}
	}
	return nil
}

func annotateSpan(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
