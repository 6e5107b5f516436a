package telemetry

import (
	"errors"
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func startProfiler(cfg config.TelemetryConfig, logger *zap.Logger) (*pyroscope.Profiler, error) {
	if cfg.ProfilerAddress == "" {
		return nil, errors.New("telemetry.profiler_address is required when profiling is enabled")
	}
	pcfg := pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.ProfilerAddress,
		Logger:          pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	}
	if host, err := os.Hostname(); err == nil {
		pcfg.Tags = map[string]string{"hostname": host}
	}
	if cfg.ProfilerAuthToken != "" {
		pcfg.HTTPHeaders = map[string]string{"Authorization": "Bearer " + cfg.ProfilerAuthToken}
	}

	p, err := pyroscope.Start(pcfg)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("Pyroscope profiler started", zap.String("server_address", cfg.ProfilerAddress))
	return p, nil
}

type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
