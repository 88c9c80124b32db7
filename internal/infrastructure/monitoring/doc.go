/*
Package monitoring provides Prometheus metrics for the ROM server.

# Overview

Metrics are registered on a private registry so that several servers (and
tests) can live in one process. The registry is exposed for the /metrics
endpoint.

# Features

- HTTP request metrics (count, latency)
- Dataspace construction outcomes by backing kind
- Refusals by cause (trusted side only; clients always see "service denied")
- Open ROM session gauge

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))

	builder := dataspace.NewBuilder(fs, table, logger).WithRecorder(metrics)
	service := rom.NewService(builder, table, logger).WithGauge(metrics.SessionsActive)

# Metrics Endpoint

	handler := promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})
	router.GET("/metrics", gin.WrapH(handler))
*/
package monitoring
