// Package logger provides structured logging for streamkit using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
// Stream machinery logs through it when no subscriber is attached to
// receive an error signal (orphaned protocol violations, recovered
// scheduler task panics).
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("scheduler")
//	log.Warn("task panicked", logger.Fields("scheduler", "pool"))
package logger
