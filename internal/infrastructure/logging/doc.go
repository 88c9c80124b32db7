// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The ROM server logs are the trusted side of the refusal policy. Clients
// only ever see "service denied"; why a session was refused is recorded here.
//
// Example Usage:
//
//	logger := logging.FromSettings("info", false)
//	logger.Error("file name too long", zap.String("filename", name))
package logging
