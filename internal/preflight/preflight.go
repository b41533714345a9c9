package preflight

import (
	"context"

	"puppetmask/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the bucket, log and cache directories for the given config.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Bucket directory", cfg.Paths.BucketDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Frames.CacheEnabled && cfg.Paths.CacheDir != "" {
		results = append(results, CheckDirectoryAccess("Frame cache", cfg.Paths.CacheDir))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
