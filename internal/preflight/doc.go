// Package preflight provides readiness checks for the directories and
// binaries puppetmask depends on.
//
// The daemon runs RunAll at startup and reports the results on
// /api/status; the CLI "puppetmask status" command prints the same checks,
// plus CheckDaemon when pointed at a running server.
package preflight
