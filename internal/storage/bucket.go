package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"puppetmask/internal/coalesce"
	"puppetmask/internal/config"
	"puppetmask/internal/deps"
	"puppetmask/internal/fileutil"
	"puppetmask/internal/logging"
	"puppetmask/internal/media/frame"
	"puppetmask/internal/services"
	"puppetmask/internal/storage/history"
	"puppetmask/internal/textutil"
)

const (
	cameraDir     = "camera"
	videoName     = "camera_video.mp4"
	maskLockName  = ".mask.lock"
	frameCacheDir = "frames"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// FrameExtractor writes a still from video to destination.
type FrameExtractor interface {
	Extract(ctx context.Context, video string, seekSeconds float64, destination string) error
}

// Recording identifies the video a puppet's frame is taken from.
type Recording struct {
	PuppetID  string
	Timestamp string
	Path      string
}

var _ Service = (*Bucket)(nil)

// Bucket is the filesystem implementation of Service.
type Bucket struct {
	root         string
	cacheDir     string
	cacheEnabled bool
	maskObject   string
	seekSeconds  float64
	extractor    FrameExtractor
	history      *history.Store
	frames       *coalesce.Group[[]byte]
	saves        *keyedMutex
	logger       *slog.Logger
}

// BucketOption customizes a Bucket.
type BucketOption func(*Bucket)

// WithExtractor overrides the ffmpeg frame extractor (used in tests).
func WithExtractor(e FrameExtractor) BucketOption {
	return func(b *Bucket) {
		if e != nil {
			b.extractor = e
		}
	}
}

// WithHistory attaches a save history store the bucket takes ownership of.
func WithHistory(store *history.Store) BucketOption {
	return func(b *Bucket) {
		b.history = store
	}
}

// NewBucket builds a bucket rooted at cfg.Paths.BucketDir. The save history
// is opened when enabled and not supplied by an option.
func NewBucket(cfg *config.Config, logger *slog.Logger, opts ...BucketOption) (*Bucket, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "open bucket", "configuration required", nil)
	}
	root := strings.TrimSpace(cfg.Paths.BucketDir)
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "open bucket", "paths.bucket_dir is empty", nil)
	}
	logger = logging.NewComponentLogger(logger, "storage")
	b := &Bucket{
		root:         root,
		cacheDir:     filepath.Join(cfg.Paths.CacheDir, frameCacheDir),
		cacheEnabled: cfg.Frames.CacheEnabled && strings.TrimSpace(cfg.Paths.CacheDir) != "",
		maskObject:   cfg.Storage.MaskObject,
		seekSeconds:  cfg.Frames.SeekSeconds,
		frames:       coalesce.New[[]byte](cfg.CoalesceGrace(), 0),
		saves:        newKeyedMutex(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.extractor == nil {
		tools := deps.FrameTools(cfg.Frames.FFmpegBinary, cfg.Frames.FFprobeBinary)
		b.extractor = frame.NewExtractor(tools[0].Command, tools[1].Command, cfg.FrameTimeout(), logger)
	}
	if b.history == nil && cfg.Storage.HistoryEnabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "storage", "open history", cfg.HistoryPath(), err)
		}
		b.history = store
	}
	return b, nil
}

// Close releases the history store.
func (b *Bucket) Close() error {
	if b.history == nil {
		return nil
	}
	return b.history.Close()
}

// Root returns the bucket directory.
func (b *Bucket) Root() string { return b.root }

// ListPuppets returns every non-hidden top-level directory, sorted by id.
func (b *Bucket) ListPuppets(ctx context.Context) ([]Puppet, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Puppet{}, nil
		}
		return nil, services.Wrap(services.ErrTransient, "storage", "list puppets", b.root, err)
	}
	puppets := make([]Puppet, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || textutil.ValidateID(entry.Name()) != nil {
			continue
		}
		puppets = append(puppets, Puppet{ID: entry.Name(), Name: textutil.DisplayName(entry.Name())})
	}
	sort.Slice(puppets, func(i, j int) bool { return puppets[i].ID < puppets[j].ID })
	return puppets, nil
}

// LocateRecording finds the earliest timestamp folder holding a camera video.
func (b *Bucket) LocateRecording(puppetID string) (Recording, error) {
	dir, err := b.puppetDir(puppetID)
	if err != nil {
		return Recording{}, err
	}
	entries, err := os.ReadDir(filepath.Join(dir, cameraDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Recording{}, services.Wrap(services.ErrNotFound, "storage", "locate recording", "No timestamp folders found", nil)
		}
		return Recording{}, services.Wrap(services.ErrTransient, "storage", "locate recording", puppetID, err)
	}

	type stamped struct {
		name  string
		value int64
	}
	var folders []stamped
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		value, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		folders = append(folders, stamped{name: entry.Name(), value: value})
	}
	if len(folders) == 0 {
		return Recording{}, services.Wrap(services.ErrNotFound, "storage", "locate recording", "No timestamp folders found", nil)
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].value < folders[j].value })

	for _, folder := range folders {
		video := filepath.Join(dir, cameraDir, folder.name, videoName)
		if info, err := os.Stat(video); err == nil && info.Mode().IsRegular() {
			return Recording{PuppetID: puppetID, Timestamp: folder.name, Path: video}, nil
		}
	}
	return Recording{}, services.Wrap(services.ErrNotFound, "storage", "locate recording", "Video file not found", nil)
}

// FetchFrame returns a PNG still from the puppet's earliest recording.
func (b *Bucket) FetchFrame(ctx context.Context, puppetID string) ([]byte, error) {
	if _, err := b.puppetDir(puppetID); err != nil {
		return nil, err
	}
	data, shared, err := b.frames.Do(ctx, puppetID, func(ctx context.Context) ([]byte, error) {
		return b.loadFrame(ctx, puppetID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		b.logger.Debug("frame request coalesced",
			logging.String(logging.FieldPuppetID, puppetID),
			logging.Int("in_flight", b.frames.InFlight()),
		)
	}
	return data, nil
}

// InvalidateFrame drops the cached frames for puppetID so the next
// FetchFrame extracts a fresh one.
func (b *Bucket) InvalidateFrame(puppetID string) error {
	if _, err := b.puppetDir(puppetID); err != nil {
		return err
	}
	b.frames.Forget(puppetID)
	if !b.cacheEnabled {
		return nil
	}
	dir := filepath.Join(b.cacheDir, puppetID)
	if err := os.RemoveAll(dir); err != nil {
		return services.Wrap(services.ErrTransient, "storage", "invalidate frame", dir, err)
	}
	b.logger.Debug("frame cache invalidated", logging.String(logging.FieldPuppetID, puppetID))
	return nil
}

func (b *Bucket) loadFrame(ctx context.Context, puppetID string) ([]byte, error) {
	rec, err := b.LocateRecording(puppetID)
	if err != nil {
		return nil, err
	}
	cached := filepath.Join(b.cacheDir, puppetID, rec.Timestamp+".png")
	if b.cacheEnabled {
		if data, err := os.ReadFile(cached); err == nil && len(data) > 0 {
			b.logger.Debug("frame cache hit",
				logging.String(logging.FieldPuppetID, puppetID),
				logging.String("path", cached),
			)
			return data, nil
		}
	}

	workDir := os.TempDir()
	if b.cacheEnabled {
		workDir = filepath.Dir(cached)
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrTransient, "storage", "prepare frame cache", workDir, err)
		}
	}
	tmp, err := os.CreateTemp(workDir, ".frame-*.png")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "storage", "prepare frame", workDir, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	started := time.Now()
	if err := b.extractor.Extract(ctx, rec.Path, b.seekSeconds, tmpPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "storage", "read frame", tmpPath, err)
	}
	if b.cacheEnabled {
		if err := os.Rename(tmpPath, cached); err != nil {
			logging.WarnWithContext(b.logger, "frame cache write failed", "frame_cache_failed",
				logging.String(logging.FieldPuppetID, puppetID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on paths.cache_dir"),
				logging.String(logging.FieldImpact, "the next open extracts the frame again"),
			)
		}
	}
	b.logger.Info("frame extracted",
		logging.String(logging.FieldPuppetID, puppetID),
		logging.String("recording", rec.Timestamp),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return data, nil
}

// FetchExistingMask returns the saved mask, or (nil, false, nil) when the
// puppet has none.
func (b *Bucket) FetchExistingMask(_ context.Context, puppetID string) ([]byte, bool, error) {
	path, err := b.maskPath(puppetID)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, services.Wrap(services.ErrTransient, "storage", "read mask", path, err)
	}
	return data, true, nil
}

// SaveMask validates the PNG payload and writes it over the puppet's mask.
// Saves for the same puppet are serialized within the process and across
// processes sharing the bucket.
func (b *Bucket) SaveMask(ctx context.Context, puppetID string, data []byte) (SaveResult, error) {
	path, err := b.maskPath(puppetID)
	if err != nil {
		return SaveResult{}, err
	}
	if len(data) == 0 {
		return SaveResult{}, services.Wrap(services.ErrValidation, "storage", "save mask", "No mask data provided", nil)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return SaveResult{}, services.Wrap(services.ErrValidation, "storage", "save mask", "mask data is not a PNG image", nil)
	}

	unlock := b.saves.Lock(puppetID)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return SaveResult{}, services.Wrap(services.ErrTransient, "storage", "save mask", path, err)
	}

	fileLock := flock.New(filepath.Join(filepath.Dir(path), maskLockName))
	locked, err := fileLock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return SaveResult{}, services.Wrap(services.ErrTransient, "storage", "lock mask", puppetID, err)
	}
	defer func() { _ = fileLock.Unlock() }()

	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return SaveResult{}, services.Wrap(services.ErrTransient, "storage", "write mask", path, err)
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldPuppetID, puppetID),
		logging.Int("bytes", len(data)),
		logging.String(logging.FieldEventType, "mask_written"),
	}
	if b.history != nil {
		entry, err := b.history.Record(ctx, puppetID, b.objectName(puppetID), int64(len(data)), fileutil.SHA256Hex(data))
		if err != nil {
			logging.WarnWithContext(b.logger, "mask save history not recorded", "history_record_failed",
				logging.String(logging.FieldPuppetID, puppetID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the history database under the bucket"),
				logging.String(logging.FieldImpact, "mask status falls back to the file time"),
			)
		} else {
			attrs = append(attrs, logging.String("save_id", entry.ID))
		}
	}
	b.logger.Info("mask saved", logging.Args(attrs...)...)

	return SaveResult{Success: true, Location: fileURL(path)}, nil
}

// MaskStatus reports whether a mask exists and when it was last saved.
func (b *Bucket) MaskStatus(ctx context.Context, puppetID string) (MaskStatus, error) {
	path, err := b.maskPath(puppetID)
	if err != nil {
		return MaskStatus{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MaskStatus{Exists: false}, nil
		}
		return MaskStatus{}, services.Wrap(services.ErrTransient, "storage", "stat mask", path, err)
	}
	status := MaskStatus{Exists: true, CreatedAt: info.ModTime().UTC()}
	if b.history != nil {
		if entry, ok, err := b.history.Latest(ctx, puppetID); err == nil && ok {
			status.CreatedAt = entry.CreatedAt
		}
	}
	return status, nil
}

// History lists recorded saves for a puppet, newest first.
func (b *Bucket) History(ctx context.Context, puppetID string, limit int) ([]history.Entry, error) {
	if _, err := b.puppetDir(puppetID); err != nil {
		return nil, err
	}
	if b.history == nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "history", "storage.history_enabled is false", nil)
	}
	return b.history.List(ctx, puppetID, limit)
}

func (b *Bucket) puppetDir(puppetID string) (string, error) {
	if err := textutil.ValidateID(puppetID); err != nil {
		return "", services.Wrap(services.ErrValidation, "storage", "puppet id", puppetID, err)
	}
	dir := filepath.Join(b.root, puppetID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", services.Wrap(services.ErrNotFound, "storage", "puppet", fmt.Sprintf("puppet %q not found", puppetID), nil)
	}
	return dir, nil
}

func (b *Bucket) maskPath(puppetID string) (string, error) {
	dir, err := b.puppetDir(puppetID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cameraDir, b.maskObject), nil
}

func (b *Bucket) objectName(puppetID string) string {
	return puppetID + "/" + cameraDir + "/" + b.maskObject
}

func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
