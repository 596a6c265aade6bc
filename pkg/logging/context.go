package logging

import (
	"log/slog"
)

// WithType creates a logger with data-type context.
// Use this when logging operations driven by a resolved type descriptor.
//
// Example:
//
//	log := logging.WithType(dt.Name())
//	log.Debug("deserializing column", "rows", limit)
func WithType(typeName string) *slog.Logger {
	return GetLogger().With("type", typeName)
}

// WithFormat creates a logger with text-format context.
// Use this in import/export paths that are parameterized by format.
//
// Example:
//
//	log := logging.WithFormat("csv")
//	log.Info("export finished", "rows", n)
func WithFormat(format string) *slog.Logger {
	return GetLogger().With("format", format)
}

// WithInput creates a logger with input-source context.
//
// Example:
//
//	log := logging.WithInput(path)
//	log.Warn("short read", "row", row)
func WithInput(source string) *slog.Logger {
	return GetLogger().With("input", source)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("cli")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
// Use this when logging errors to include the error in structured format.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Error("conversion failed", "column", name)
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
