// Package logs reads the JSON log file the daemon writes under
// paths.log_dir.
//
// Tail keeps memory bounded when showing the last N lines and supports
// follow mode by offset, so `puppetmask logs --follow` can poll without
// rereading the file. Filter narrows records to one puppet, component or
// minimum level.
package logs
