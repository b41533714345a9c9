// Package storage defines the collaborator boundary an editing session talks
// to and the filesystem bucket that implements it.
//
// The bucket mirrors the object layout of the calibration bucket:
//
//	<bucket>/<puppet>/camera/<unix-timestamp>/camera_video.mp4
//	<bucket>/<puppet>/camera/mask.png
//
// Frames are extracted from the earliest recording with ffmpeg, cached as
// PNG, and coalesced per puppet so concurrent opens share one extraction.
// Saves are serialized per puppet by an in-process keyed mutex plus a file
// lock, written atomically, and recorded in the history store.
package storage
