// Package raster turns mask geometry into pixels.
//
// Rasterize composites the main circle and every fillable shape into a binary
// grayscale image (black marks the used region, white the unused one) sized
// to the frame. Geometry is clipped to the frame before it reaches the
// golang.org/x/image/vector rasterizer and anti-aliased coverage is
// thresholded at one half, so the output only ever holds two values.
//
// PaintOverlay is the preview counterpart: it draws editor display commands
// over a copy of the frame.
package raster
