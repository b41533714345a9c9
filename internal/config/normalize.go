package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFrames()
	c.normalizeEditor()
	c.normalizeReconstruct()
	c.normalizeStorage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.BucketDir) == "" {
		c.Paths.BucketDir = defaultBucketDir
	}
	if c.Paths.BucketDir, err = expandPath(c.Paths.BucketDir); err != nil {
		return fmt.Errorf("paths.bucket_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv(apiTokenEnv); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeFrames() {
	c.Frames.FFmpegBinary = strings.TrimSpace(c.Frames.FFmpegBinary)
	if c.Frames.FFmpegBinary == "" {
		c.Frames.FFmpegBinary = defaultFFmpegBinary
	}
	c.Frames.FFprobeBinary = strings.TrimSpace(c.Frames.FFprobeBinary)
	if c.Frames.FFprobeBinary == "" {
		c.Frames.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Frames.TimeoutSeconds == 0 {
		c.Frames.TimeoutSeconds = defaultFrameTimeoutSeconds
	}
}

func (c *Config) normalizeEditor() {
	if c.Editor.MinPointDistance == 0 {
		c.Editor.MinPointDistance = defaultMinPointDistance
	}
	if c.Editor.CloseDistance == 0 {
		c.Editor.CloseDistance = defaultCloseDistance
	}
	if c.Editor.SimplifyTolerance == 0 {
		c.Editor.SimplifyTolerance = defaultSimplifyTolerance
	}
	if c.Editor.MinRadius == 0 {
		c.Editor.MinRadius = defaultMinRadius
	}
	if c.Editor.MoveStep == 0 {
		c.Editor.MoveStep = defaultMoveStep
	}
	if c.Editor.RadiusStep == 0 {
		c.Editor.RadiusStep = defaultRadiusStep
	}
	if c.Editor.ScaleStep == 0 {
		c.Editor.ScaleStep = defaultScaleStep
	}
}

func (c *Config) normalizeReconstruct() {
	if c.Reconstruct.SampleStep == 0 {
		c.Reconstruct.SampleStep = defaultSampleStep
	}
	if c.Reconstruct.MinBoundaryPoints == 0 {
		c.Reconstruct.MinBoundaryPoints = defaultMinBoundaryPoints
	}
	if c.Reconstruct.MinAreaFraction == 0 {
		c.Reconstruct.MinAreaFraction = defaultMinAreaFraction
	}
	if c.Reconstruct.BoundarySampleStep == 0 {
		c.Reconstruct.BoundarySampleStep = defaultBoundarySampleStep
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.MaskObject = strings.TrimSpace(c.Storage.MaskObject)
	if c.Storage.MaskObject == "" {
		c.Storage.MaskObject = defaultMaskObject
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
