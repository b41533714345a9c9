// Package editor implements the mask editing interaction state machine.
//
// An Editor owns a geometry.Model and turns discrete pointer, keyboard and
// button events into model mutations. It tracks two orthogonal pieces of
// state: the drawing mode (idle or accumulating a stroke) and the selection
// (none, a single shape, or all shapes). Render projects a Snapshot into
// display commands without retaining any drawing state, and ParseScript reads
// line based event scripts for non-interactive editing.
//
// Editors are not safe for concurrent use; events must be dispatched serially.
package editor
