package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	BucketDir string `toml:"bucket_dir"`
	LogDir    string `toml:"log_dir"`
	CacheDir  string `toml:"cache_dir"`
	APIBind   string `toml:"api_bind"`
	APIToken  string `toml:"api_token"`
}

// Frames controls how a representative frame is pulled from a puppet video.
type Frames struct {
	FFmpegBinary   string  `toml:"ffmpeg_binary"`
	FFprobeBinary  string  `toml:"ffprobe_binary"`
	SeekSeconds    float64 `toml:"seek_seconds"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	CacheEnabled   bool    `toml:"cache_enabled"`
}

// Editor holds the geometry thresholds and keyboard step sizes.
type Editor struct {
	MinPointDistance  float64 `toml:"min_point_distance"`
	CloseDistance     float64 `toml:"close_distance"`
	SimplifyTolerance float64 `toml:"simplify_tolerance"`
	MinRadius         float64 `toml:"min_radius"`
	MoveStep          float64 `toml:"move_step"`
	RadiusStep        float64 `toml:"radius_step"`
	ScaleStep         float64 `toml:"scale_step"`
	SnapDistance      float64 `toml:"snap_distance"`
}

// Reconstruct tunes how geometry is recovered from a saved mask.
type Reconstruct struct {
	ExtractShapes      bool    `toml:"extract_shapes"`
	SampleStep         int     `toml:"sample_step"`
	MinBoundaryPoints  int     `toml:"min_boundary_points"`
	MinAreaFraction    float64 `toml:"min_area_fraction"`
	BoundarySampleStep int     `toml:"boundary_sample_step"`
}

// Storage configures the filesystem bucket.
type Storage struct {
	MaskObject           string `toml:"mask_object"`
	CoalesceGraceSeconds int    `toml:"coalesce_grace_seconds"`
	HistoryEnabled       bool   `toml:"history_enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for puppetmask.
//
// Configuration sections by subsystem:
//   - Paths: bucket, cache and log directories plus the API bind address
//   - Frames: ffmpeg/ffprobe frame extraction
//   - Editor: geometry thresholds and keyboard steps
//   - Reconstruct: recovery of geometry from saved masks
//   - Storage: mask object naming, request coalescing and save history
//   - Logging: log format, level, and retention
type Config struct {
	Paths       Paths       `toml:"paths"`
	Frames      Frames      `toml:"frames"`
	Editor      Editor      `toml:"editor"`
	Reconstruct Reconstruct `toml:"reconstruct"`
	Storage     Storage     `toml:"storage"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("puppetmask.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.BucketDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Frames.CacheEnabled && strings.TrimSpace(c.Paths.CacheDir) != "" {
		if err := os.MkdirAll(c.Paths.CacheDir, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", c.Paths.CacheDir, err)
		}
	}
	return nil
}

// FrameTimeout returns the per-extraction deadline for ffmpeg and ffprobe.
func (c *Config) FrameTimeout() time.Duration {
	return time.Duration(c.Frames.TimeoutSeconds) * time.Second
}

// CoalesceGrace returns how long a completed frame fetch stays shared.
func (c *Config) CoalesceGrace() time.Duration {
	return time.Duration(c.Storage.CoalesceGraceSeconds) * time.Second
}

// HistoryPath returns the SQLite save history location inside the bucket.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.BucketDir, ".puppetmask", "history.db")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "puppetmaskd.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
