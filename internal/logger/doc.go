// Package logger provides a structured logging facility based on Zap.
//
// Log records go to stderr so they never mix with the reports the commands
// print on stdout.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console (default) or json
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("table updated", zap.String("project", "boards/ecu"))
package logger
