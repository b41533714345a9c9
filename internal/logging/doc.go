// Package logging assembles structured slog loggers and formatting helpers used
// across puppetmask components.
//
// It owns the configurable console/JSON handlers, tees a JSON copy of every
// record into the log directory, and exposes context-aware helpers so request
// handlers and editing sessions can tag log lines with puppet IDs and
// correlation IDs. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
