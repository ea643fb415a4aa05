// Package logging builds the zap logger shared by coursemark commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jcorbin/coursemark/internal/config"
)

// New builds a logger from cfg, writing to stderr. Verbose forces debug
// level regardless of the configured one.
func New(cfg config.Log, verbose bool) (*zap.Logger, error) {
	zc, err := zapConfig(cfg, verbose)
	if err != nil {
		return nil, err
	}
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func zapConfig(cfg config.Log, verbose bool) (zap.Config, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return zc, fmt.Errorf("invalid log level: %w", err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc, nil
}
