package testsupport

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"puppetmask/internal/config"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AddRecording creates a placeholder camera video for puppetID under the
// given timestamp folder and returns its path.
func AddRecording(t testing.TB, cfg *config.Config, puppetID, timestamp string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.BucketDir, puppetID, "camera", timestamp, "camera_video.mp4")
	WriteFile(t, path, 64)
	return path
}

// FramePNG encodes a w x h gradient frame.
func FramePNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return buf.Bytes()
}

// FrameExtractor writes a fixed PNG instead of running ffmpeg and counts
// calls.
type FrameExtractor struct {
	Frame []byte
	Err   error
	Calls atomic.Int32
	Hook  func()
}

// Extract implements storage.FrameExtractor.
func (f *FrameExtractor) Extract(_ context.Context, _ string, _ float64, destination string) error {
	f.Calls.Add(1)
	if f.Hook != nil {
		f.Hook()
	}
	if f.Err != nil {
		return f.Err
	}
	return os.WriteFile(destination, f.Frame, 0o644)
}
