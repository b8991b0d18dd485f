/*
Package monitoring collects Prometheus metrics for the compiler and its HTTP
surface.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))

	comp := compiler.New(registry, cfg, compiler.WithMetrics(metrics))

A nil *Metrics is valid and records nothing, so library callers that do
not care about metrics can skip it.
*/
package monitoring
