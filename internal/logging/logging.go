// ABOUTME: Logger construction for the engine using zap
// ABOUTME: Production JSON logging by default, console output in debug mode
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a logger. Debug mode uses the human-readable development
// encoder; otherwise structured JSON suitable for aggregation.
func New(debug bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	return logger, nil
}
