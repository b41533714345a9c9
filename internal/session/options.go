package session

import (
	"log/slog"

	"puppetmask/internal/config"
	"puppetmask/internal/editor"
	"puppetmask/internal/geometry"
	"puppetmask/internal/reconstruct"
)

// Options configure a session.
type Options struct {
	Limits      geometry.Limits
	Editor      editor.Options
	Reconstruct reconstruct.Options
	Logger      *slog.Logger
}

// DefaultOptions returns stock limits and step sizes.
func DefaultOptions() Options {
	return Options{
		Limits:      geometry.DefaultLimits(),
		Reconstruct: reconstruct.DefaultOptions(),
	}
}

// OptionsFromConfig maps the [editor] and [reconstruct] sections.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	if cfg == nil {
		opts := DefaultOptions()
		opts.Logger = logger
		return opts
	}
	return Options{
		Limits: geometry.Limits{
			MinPointDistance:  cfg.Editor.MinPointDistance,
			CloseDistance:     cfg.Editor.CloseDistance,
			SimplifyTolerance: cfg.Editor.SimplifyTolerance,
			MinRadius:         cfg.Editor.MinRadius,
			SnapDistance:      cfg.Editor.SnapDistance,
		},
		Editor: editor.Options{
			MoveStep:   cfg.Editor.MoveStep,
			RadiusStep: cfg.Editor.RadiusStep,
			ScaleStep:  cfg.Editor.ScaleStep,
		},
		Reconstruct: reconstruct.Options{
			ExtractShapes:      cfg.Reconstruct.ExtractShapes,
			SampleStep:         cfg.Reconstruct.SampleStep,
			MinBoundaryPoints:  cfg.Reconstruct.MinBoundaryPoints,
			MinAreaFraction:    cfg.Reconstruct.MinAreaFraction,
			BoundarySampleStep: cfg.Reconstruct.BoundarySampleStep,
		},
		Logger: logger,
	}
}
