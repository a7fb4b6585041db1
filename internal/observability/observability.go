package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

// Setup starts tracing, profiling and the pprof listener. The returned
// shutdown stops them in reverse order and joins their errors.
func Setup(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("observability")

	shutdownTracing, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}

	stopProfiler, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	pprofServer := StartPprofServer(cfg, logger)

	return func(ctx context.Context) error {
		var errs []error
		if err := stopPprofServer(ctx, pprofServer); err != nil {
			errs = append(errs, fmt.Errorf("stop pprof: %w", err))
		}
		if err := stopProfiler(); err != nil {
			errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
		}
		if err := shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown uptrace: %w", err))
		}
		return errors.Join(errs...)
	}, nil
}
