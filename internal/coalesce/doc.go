// Package coalesce collapses concurrent requests for the same key into one
// call and serves repeats within a short grace window from the finished
// result.
//
// Storage uses it so that opening the same puppet from several clients
// extracts one frame instead of one per request.
package coalesce
