package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	AppEnv  string
	Level   string
	Service string
}

// New builds the process logger and installs it as the zap global, so
// components constructed without a logger still log through it.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("zapcore.ParseLevel: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if opts.AppEnv == "dev" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cfg.Build: %w", err)
	}

	if opts.Service != "" {
		l = l.With(zap.String("service", opts.Service))
	}

	zap.ReplaceGlobals(l)
	return l, nil
}
