// Package geometry holds the vector model behind a mask editing session.
//
// A Model owns exactly one main Circle, the ordered list of closed polygon
// Shapes (list order is draw order and the index is the addressing key for
// selection and deletion), and the open Stroke that is still being drawn.
// Mutations never clamp against the frame; only the numeric limits carried in
// Limits (minimum radius, stroke density, closing distance) are enforced.
//
// The model is not safe for concurrent use. Sessions dispatch every mutation
// serially from the editor state machine.
package geometry
