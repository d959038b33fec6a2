package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{
			name:    "default config",
			cfg:     DefaultLogConfig(),
			wantErr: false,
		},
		{
			name:    "console format",
			cfg:     LogConfig{Level: "debug", Format: "console", Output: "stderr"},
			wantErr: false,
		},
		{
			name:    "invalid level",
			cfg:     LogConfig{Level: "loud", Format: "json", Output: "stdout"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Info("test message", String("key", "value"))
		})
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	// All methods must be safe to call
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	assert.NoError(t, logger.Sync())
	assert.NotNil(t, logger.With(String("k", "v")))
}

func TestNewZapLogger(t *testing.T) {
	logger := NewZapLogger(zap.NewNop())
	require.NotNil(t, logger)
	logger.Info("message", Int("n", 1))
	assert.NotNil(t, logger.With(Bool("b", true)))
}
