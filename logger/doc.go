// Package logger provides structured logging for the library
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("system-command")
//	log.Info("process exited", logger.Fields("exit_code", 0))
package logger
