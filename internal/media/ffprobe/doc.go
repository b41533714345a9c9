// Package ffprobe wraps ffprobe JSON output for camera recordings.
//
// Inspect runs the binary and returns a Result; helpers on Result expose the
// duration and the first video stream's dimensions, which frame extraction
// uses to pick a safe seek offset.
package ffprobe
