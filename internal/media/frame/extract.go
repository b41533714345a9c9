package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"

	"puppetmask/internal/logging"
	"puppetmask/internal/media/ffprobe"
	"puppetmask/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Extractor pulls PNG stills out of recordings.
type Extractor struct {
	ffmpeg  string
	ffprobe string
	timeout time.Duration
	logger  *slog.Logger
	run     commandRunner
	probe   probeFunc
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(r commandRunner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.run = r
		}
	}
}

// WithProbe overrides the ffprobe inspection (used in tests).
func WithProbe(p func(ctx context.Context, binary, path string) (ffprobe.Result, error)) Option {
	return func(e *Extractor) {
		if p != nil {
			e.probe = p
		}
	}
}

// NewExtractor builds an extractor for the given binaries. A zero timeout
// leaves the caller's context in charge.
func NewExtractor(ffmpegBinary, ffprobeBinary string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		ffmpeg:  defaultString(ffmpegBinary, "ffmpeg"),
		ffprobe: defaultString(ffprobeBinary, "ffprobe"),
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "frame"),
		run:     runCommand,
		probe:   ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract writes one PNG frame from video to destination, seeking to
// seekSeconds or half the recording when it is shorter than twice that.
func (e *Extractor) Extract(ctx context.Context, video string, seekSeconds float64, destination string) error {
	if strings.TrimSpace(video) == "" || strings.TrimSpace(destination) == "" {
		return services.Wrap(services.ErrValidation, "frame", "extract", "video and destination are required", nil)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	started := time.Now()

	seek := math.Max(seekSeconds, 0)
	probe, err := e.probe(ctx, e.ffprobe, video)
	switch {
	case err != nil:
		logging.WarnWithContext(e.logger, "ffprobe failed; using configured seek", "frame_probe_failed",
			logging.String("video", video),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that ffprobe is installed and the recording is readable"),
			logging.String(logging.FieldImpact, "very short recordings may yield no frame"),
		)
	default:
		w, h := probe.Dimensions()
		e.logger.Debug("recording probed",
			logging.String("video", video),
			logging.Float64("duration_seconds", probe.DurationSeconds()),
			logging.Int("width", w),
			logging.Int("height", h),
		)
		seek = ClampSeek(seek, probe.DurationSeconds())
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", seek),
		"-i", video,
		"-frames:v", "1",
		"-an",
		"-f", "image2",
		"-c:v", "png",
		destination,
	}
	if err := e.run(ctx, e.ffmpeg, args...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "frame", "extract", "ffmpeg timed out", err)
		}
		return services.Wrap(services.ErrExternalTool, "frame", "extract", "Failed to extract frame with ffmpeg", err)
	}
	info, err := os.Stat(destination)
	if err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "frame", "extract", "ffmpeg produced no frame", err)
	}

	e.logger.Debug("frame extracted",
		logging.String("video", video),
		logging.Float64("seek_seconds", seek),
		logging.Int64("bytes", info.Size()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// ClampSeek keeps the seek offset inside the first half of a recording of
// the given duration. Unknown durations leave the seek unchanged.
func ClampSeek(seek, duration float64) float64 {
	if math.IsNaN(duration) || duration <= 0 {
		return seek
	}
	if limit := duration / 2; seek > limit {
		return limit
	}
	return seek
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func defaultString(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
