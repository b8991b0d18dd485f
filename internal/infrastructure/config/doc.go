// Package config provides 12-factor configuration management for the
// scenario compiler.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Compiler: output directory, simulator resources, stop time, traffic density
//   - Placement: background traffic source (remote service or catalog file)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - OUTPUT_DIR, ESMINI_RESOURCES, STOP_TIME, TRAFFIC_DENSITY_FACTOR, KNOWLEDGE_FILE
//   - PLACEMENT_URL, PLACEMENT_CATALOG, PLACEMENT_TIMEOUT, PLACEMENT_RETRIES
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
