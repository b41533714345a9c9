package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"puppetmask/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BucketDir = filepath.Join(base, "bucket")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Paths.APIToken = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithAPIToken sets the bearer token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithoutHistory disables the SQLite save history.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.HistoryEnabled = false
	}
}

// WithCoalesceGrace overrides the frame coalescing grace window in seconds.
func WithCoalesceGrace(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.CoalesceGraceSeconds = seconds
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// points the frame config at them. If names is empty, ffmpeg and ffprobe
// are stubbed. The stubs exit 0 without output.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			switch name {
			case "ffmpeg":
				b.cfg.Frames.FFmpegBinary = target
			case "ffprobe":
				b.cfg.Frames.FFprobeBinary = target
			}
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.BucketDir)
}
