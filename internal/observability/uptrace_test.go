package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup_AllDisabled(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	cfg := config.Config{
		ServiceName:    "fantasy-cricket-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := Setup(cfg, logging.FromZap(zap.New(core)))
	if err != nil {
		t.Fatalf("setup observability: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown observability: %v", err)
	}

	for _, msg := range []string{"uptrace disabled", "pyroscope disabled", "pprof disabled"} {
		if got := logs.FilterMessage(msg).Len(); got != 1 {
			t.Fatalf("unexpected %q log count: got=%d want=1", msg, got)
		}
	}
}

func TestInitUptrace_EnabledWithoutDSNStaysDisabled(t *testing.T) {
	t.Parallel()

	shutdown, err := InitUptrace(config.Config{UptraceEnabled: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}
