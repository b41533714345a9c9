// Package daemon runs the long-lived puppetmask process: it owns the
// single-instance lock, prunes old logs, and serves the mask storage HTTP
// API over a storage backend.
//
// Handlers live in api_server.go and only translate between HTTP and the
// Backend; validation, coalescing and locking belong to the storage layer.
package daemon
