package config

import (
	"fmt"

	"go.uber.org/zap"
)

// setLogger builds the zap logger for the given environment
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	case "local", "":
		return zap.NewExample(), nil
	default:
		return nil, fmt.Errorf("unknown environment %q", env)
	}
}
