// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: coloured console output
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Request(rid).Scenario(sid, "highway").Info("Blueprint compiled")
//	logger.Warn("Compile diagnostic", zap.String("subject", "actions[2]"))
package logging
