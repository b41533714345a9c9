package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateEditor(); err != nil {
		return err
	}
	if err := c.validateReconstruct(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.BucketDir) == "" {
		return errors.New("paths.bucket_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateFrames() error {
	if c.Frames.SeekSeconds < 0 {
		return errors.New("frames.seek_seconds must be zero or positive")
	}
	if c.Frames.TimeoutSeconds < 0 {
		return errors.New("frames.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEditor() error {
	checks := []struct {
		key   string
		value float64
	}{
		{"editor.min_point_distance", c.Editor.MinPointDistance},
		{"editor.close_distance", c.Editor.CloseDistance},
		{"editor.simplify_tolerance", c.Editor.SimplifyTolerance},
		{"editor.min_radius", c.Editor.MinRadius},
		{"editor.move_step", c.Editor.MoveStep},
		{"editor.radius_step", c.Editor.RadiusStep},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("%s must be positive", check.key)
		}
	}
	if c.Editor.ScaleStep <= 0 || c.Editor.ScaleStep >= 1 {
		return errors.New("editor.scale_step must be between 0 and 1 (exclusive)")
	}
	if c.Editor.SnapDistance < 0 {
		return errors.New("editor.snap_distance must be zero or positive")
	}
	return nil
}

func (c *Config) validateReconstruct() error {
	if c.Reconstruct.SampleStep < 1 {
		return errors.New("reconstruct.sample_step must be at least 1")
	}
	if c.Reconstruct.BoundarySampleStep < 1 {
		return errors.New("reconstruct.boundary_sample_step must be at least 1")
	}
	if c.Reconstruct.MinBoundaryPoints < 0 {
		return errors.New("reconstruct.min_boundary_points must be zero or positive")
	}
	if c.Reconstruct.MinAreaFraction < 0 || c.Reconstruct.MinAreaFraction > 1 {
		return errors.New("reconstruct.min_area_fraction must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateStorage() error {
	name := c.Storage.MaskObject
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("storage.mask_object %q must be a plain file name", name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		return fmt.Errorf("storage.mask_object %q must use the .png extension", name)
	}
	if c.Storage.CoalesceGraceSeconds < 0 {
		return errors.New("storage.coalesce_grace_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
