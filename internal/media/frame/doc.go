// Package frame extracts a single still image from a camera recording with
// ffmpeg. The seek offset is clamped against the probed duration so short
// recordings still yield a frame.
package frame
