// Package main is the entry point for the ScenarioForge HTTP server.
//
// The server compiles scenario blueprints produced by an upstream generator
// into OpenSCENARIO documents for esmini.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -resources /opt/esmini/resources
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Background traffic from a remote placement service
//	PLACEMENT_URL=http://localhost:9000 ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
