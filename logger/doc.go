// Package logger provides structured logging for the bridge and transport
// using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "syncreq").WithComponent("bridge")
//	log.Info("dispatch completed", logger.Fields(logger.FieldStatus, 200))
package logger
