// Package telemetry wires OpenTelemetry traces, metrics and logs, Pyroscope
// profiling and the Prometheus scrape endpoint.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	serviceVersion         = "1.0.0"
	shutdownTimeout        = 10 * time.Second
	defaultMetricsInterval = 60 * time.Second
)

// Signals owns the OTLP pipelines and the profiling agent. A pipeline that
// is switched off stays nil and the otel globals keep their no-op default.
type Signals struct {
	traces   *sdktrace.TracerProvider
	metrics  *sdkmetric.MeterProvider
	logs     *sdklog.LoggerProvider
	profiler *pyroscope.Profiler
	logger   *zap.Logger

	once        sync.Once
	shutdownErr error
}

// Setup starts every signal cfg asks for. Metrics and logs are only
// exported when telemetry itself is enabled; profiling is independent.
// When both tracing and profiling run, spans are linked to CPU profiles.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Signals, error) {
	s := &Signals{logger: logger}

	if cfg.ProfilingEnabled {
		p, err := startProfiler(cfg, logger)
		if err != nil {
			return nil, err
		}
		s.profiler = p
	}
	if !cfg.Enabled {
		logger.Info("Telemetry export disabled")
		return s, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(serviceVersion),
	))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("telemetry resource: %w", err), s.Shutdown(ctx))
	}

	starters := []func(context.Context, config.TelemetryConfig, *resource.Resource) error{s.startTraces}
	if cfg.MetricsEnabled {
		starters = append(starters, s.startMetrics)
	}
	if cfg.LogsEnabled {
		starters = append(starters, s.startLogs)
	}
	for _, start := range starters {
		if err := start(ctx, cfg, res); err != nil {
			return nil, errors.Join(err, s.Shutdown(ctx))
		}
	}

	if s.profiler != nil {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(s.traces))
	}
	logger.Info("Telemetry export started",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("metrics", s.metrics != nil),
		zap.Bool("logs", s.logs != nil),
		zap.Bool("span_profiles", s.profiler != nil),
	)
	return s, nil
}

func (s *Signals) startTraces(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("trace exporter: %w", err)
	}
	s.traces = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(s.traces)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return nil
}

func (s *Signals) startMetrics(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("metric exporter: %w", err)
	}
	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	s.metrics = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(s.metrics)
	return nil
}

func (s *Signals) startLogs(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource) error {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("log exporter: %w", err)
	}
	s.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(s.logs)
	return nil
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// Tracing reports whether spans leave the process.
func (s *Signals) Tracing() bool { return s.traces != nil }

// Profiling reports whether the Pyroscope agent is running.
func (s *Signals) Profiling() bool { return s.profiler != nil }

// Meter returns a meter from the export pipeline, or the global no-op.
func (s *Signals) Meter(name string) metric.Meter {
	if s.metrics == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return s.metrics.Meter(name)
}

// LogCore forwards zap entries at or above level to the collector. It is a
// nop core when logs are not exported.
func (s *Signals) LogCore(serviceName string, level zapcore.Level) zapcore.Core {
	if s.logs == nil {
		return zapcore.NewNopCore()
	}
	return &minLevelCore{
		Core: otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(s.logs)),
		min:  level,
	}
}

// Shutdown flushes and stops every running signal. Later calls return the
// result of the first.
func (s *Signals) Shutdown(ctx context.Context) error {
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		var errs []error
		if s.traces != nil {
			errs = append(errs, wrapShutdown("traces", s.traces.Shutdown(ctx)))
		}
		if s.metrics != nil {
			errs = append(errs, wrapShutdown("metrics", s.metrics.Shutdown(ctx)))
		}
		if s.logs != nil {
			errs = append(errs, wrapShutdown("logs", s.logs.Shutdown(ctx)))
		}
		if s.profiler != nil {
			errs = append(errs, wrapShutdown("profiler", s.profiler.Stop()))
		}
		s.shutdownErr = errors.Join(errs...)
	})
	return s.shutdownErr
}

func wrapShutdown(signal string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("stop %s: %w", signal, err)
}

// minLevelCore gives the otelzap core, which exports everything, a floor.
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
