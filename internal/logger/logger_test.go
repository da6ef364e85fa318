package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/runner/internal/config"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		obs     config.Observability
		level   zapcore.Level
		wantErr bool
	}{
		{"json debug", config.Observability{LogLevel: "debug", LogEncoding: "json"}, zapcore.DebugLevel, false},
		{"console warn", config.Observability{LogLevel: "warn", LogEncoding: "console"}, zapcore.WarnLevel, false},
		{"unknown level falls back to info", config.Observability{LogLevel: "loud", LogEncoding: "json"}, zapcore.InfoLevel, false},
		{"unknown encoding", config.Observability{LogLevel: "info", LogEncoding: "xml"}, zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Build(tt.obs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestNewSyncsOnStop(t *testing.T) {
	var cfg config.Config
	cfg.Observability = config.Observability{LogLevel: "info", LogEncoding: "json", ServiceName: "runner"}

	lc := fxtest.NewLifecycle(t)
	logger, err := New(lc, cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	lc.RequireStart().RequireStop()
}
