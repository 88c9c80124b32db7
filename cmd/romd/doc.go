// Package main is the entry point for romd, the Linux ROM backend.
//
// romd serves the files of one host directory as read-only ROM modules.
// A session names its module through the last element of its label; the
// server validates that name, opens the file read-only and hands out a
// capability for it.
//
// The HTTP API is meant for the trusted side (tooling, tests, inspection):
//
//	POST   /rom/sessions      {"args": "label=\"init -> boot_module.bin\""}
//	GET    /rom/sessions
//	GET    /rom/sessions/:id
//	DELETE /rom/sessions/:id
//	GET    /health
//	GET    /metrics
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	./romd -root /srv/rom -port 8000
//	./romd -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, releasing all open ROM files
package main
