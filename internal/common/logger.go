package common

import (
	"go.uber.org/zap"
)

// NewLogger returns a human-readable logger for development and a JSON
// logger for every other environment.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
