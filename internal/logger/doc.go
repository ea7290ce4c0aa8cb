// Package logger provides structured, component-filtered logging for the
// streamget packages.
//
// Each package logs through a ComponentLogger; individual components are
// enabled or disabled on the shared config, so cipher-extraction tracing can
// be turned on without drowning in download progress noise.
//
//	log := logger.WithComponent(logger.ComponentDownloader)
//	log.Info("starting download", map[string]any{"url": u, "size": n})
package logger
