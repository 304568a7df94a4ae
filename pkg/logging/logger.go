// Package logging builds the zap logger used across carbon-engine.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New constructs a logger for the given environment. Local and development
// environments get human-readable console output at debug level; everything
// else gets production JSON output.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "local", "development":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
