// Package obslog builds the zap logger used throughout the dictionary,
// configured from the same LoggingConfig the rest of the process reads.
package obslog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ontolabs/valuedict/internal/config"
)

// New builds a *zap.Logger from cfg. Format "json" produces
// production-style structured output; anything else falls back to the
// human-readable console encoder.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("valuedict/obslog: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format != "json" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("valuedict/obslog: build logger: %w", err)
	}
	return logger, nil
}
