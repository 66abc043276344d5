package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{
			name:      "production info",
			opts:      Options{AppEnv: "prod", Level: "info", Service: "cart-service"},
			wantLevel: zapcore.InfoLevel,
		},
		{
			name:      "dev debug",
			opts:      Options{AppEnv: "dev", Level: "debug"},
			wantLevel: zapcore.DebugLevel,
		},
		{
			name:    "bad level",
			opts:    Options{Level: "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := zap.ReplaceGlobals(zap.NewNop())
			defer restore()

			l, err := New(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.True(t, l.Core().Enabled(tt.wantLevel))
			assert.False(t, l.Core().Enabled(tt.wantLevel-1))
			assert.Same(t, l, zap.L())
		})
	}
}
