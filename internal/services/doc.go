// Package services defines shared utilities consumed by the mask editor, the
// storage layer and the API server.
//
// Key responsibilities:
//   - Context helpers that stamp puppet IDs and correlation identifiers for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper so frame load, mask load
//     and save failures can be classified with errors.Is.
//   - HTTPStatus, which translates those markers into API responses.
//
// Use these helpers when wiring new components so failure handling stays
// uniform between the CLI, the daemon and the editing session.
package services
