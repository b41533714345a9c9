// Package reconstruct recovers approximate editing geometry from a saved
// mask image.
//
// The main circle is estimated from the foreground (pure black) pixels: the
// centroid gives the center and the mean centroid distance over a sparse
// sample grid gives the radius. Auxiliary polygon recovery traces connected
// components outside that circle; it is approximate, can invent small shapes
// from noise, and is disabled unless Options.ExtractShapes is set.
//
// Reconstruction never fails: undecodable input degrades to the default
// geometry and is reported through the returned Result.
package reconstruct
