package logging

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names files eligible for age-based pruning. Recursive
// targets walk subdirectories, which the frame cache needs since it nests
// per puppet.
type RetentionTarget struct {
	Dir       string
	Pattern   string
	Exclude   []string
	Recursive bool
}

func (t RetentionTarget) matches(name string) bool {
	pattern := strings.TrimSpace(t.Pattern)
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

func (t RetentionTarget) candidates() []string {
	dir := strings.TrimSpace(t.Dir)
	if dir == "" {
		return nil
	}
	var paths []string
	if !t.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		for _, entry := range entries {
			if !entry.IsDir() && t.matches(entry.Name()) {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
		return paths
	}
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() && t.matches(entry.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

// CleanupOldLogs removes files matched by targets whose modification time is
// older than retentionDays and returns how many were removed. Zero or a
// negative value disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	keep := make(map[string]bool)
	for _, target := range targets {
		for _, path := range target.Exclude {
			if abs, err := filepath.Abs(strings.TrimSpace(path)); err == nil && strings.TrimSpace(path) != "" {
				keep[abs] = true
			}
		}
	}

	removed := 0
	for _, target := range targets {
		for _, path := range target.candidates() {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			if keep[path] {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				WarnWithContext(logger, "retention remove failed; file remains", "retention_remove_failed",
					String("path", path),
					Error(err),
					String(FieldErrorHint, "check ownership of log_dir and cache_dir"),
					String(FieldImpact, "stale file stays on disk"),
				)
				continue
			}
			removed++
			if logger != nil {
				logger.Debug("file pruned", String("path", path), String(FieldEventType, "file_pruned"))
			}
		}
	}
	if removed > 0 && logger != nil {
		logger.Info("retention pruned files",
			Int("removed", removed),
			Int("retention_days", retentionDays),
			String(FieldEventType, "retention_pruned"),
		)
	}
	return removed
}
