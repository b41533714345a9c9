// Package history keeps a SQLite log of saved masks.
//
// Each save is recorded with a UUID, the puppet id, the object path it was
// written to, its size and SHA-256. The latest record per puppet backs the
// mask status endpoint; the full list backs `puppetmask mask history`.
//
// Schema changes bump schemaVersion in schema.go; the log is advisory, so a
// mismatched database can simply be deleted.
package history
