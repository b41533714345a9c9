package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"puppetmask/internal/editor"
	"puppetmask/internal/geometry"
	"puppetmask/internal/logging"
	"puppetmask/internal/raster"
	"puppetmask/internal/reconstruct"
	"puppetmask/internal/services"
	"puppetmask/internal/storage"
)

// SaveStatus is the outcome of the most recent save.
type SaveStatus int

const (
	SaveIdle SaveStatus = iota
	SavePending
	SaveSuccess
	SaveError
)

func (s SaveStatus) String() string {
	switch s {
	case SaveIdle:
		return "idle"
	case SavePending:
		return "pending"
	case SaveSuccess:
		return "success"
	case SaveError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Session is one loaded, editable puppet mask. Event handling and Save must
// be called from a single goroutine; Status and Close are safe from any.
type Session struct {
	puppetID string
	svc      storage.Service
	frame    image.Image
	editor   *editor.Editor
	restored reconstruct.Result
	logger   *slog.Logger

	mu       sync.Mutex
	status   SaveStatus
	lastErr  error
	location string
	closed   bool
}

// Load fetches the frame and prior mask concurrently and returns a session
// once both have completed. A frame failure is fatal and wraps
// services.ErrFrameLoad; a mask failure is logged and editing starts from
// the default geometry.
func Load(ctx context.Context, svc storage.Service, puppetID string, opts Options) (*Session, error) {
	ctx = services.WithPuppetID(ctx, puppetID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "session"))
	started := time.Now()

	var (
		frameData []byte
		maskData  []byte
		maskFound bool
		maskErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := svc.FetchFrame(gctx, puppetID)
		if err != nil {
			return err
		}
		frameData = data
		return nil
	})
	g.Go(func() error {
		maskData, maskFound, maskErr = svc.FetchExistingMask(gctx, puppetID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, services.Wrap(services.ErrFrameLoad, "session", "fetch frame", puppetID, err)
	}

	frame, format, err := image.Decode(bytes.NewReader(frameData))
	if err != nil {
		return nil, services.Wrap(services.ErrFrameLoad, "session", "decode frame", puppetID, err)
	}
	width, height := frame.Bounds().Dx(), frame.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return nil, services.Wrap(services.ErrFrameLoad, "session", "decode frame",
			fmt.Sprintf("%s: empty frame", puppetID), nil)
	}

	model := geometry.NewModel(width, height, opts.Limits)
	var restored reconstruct.Result
	switch {
	case maskErr != nil && !errors.Is(maskErr, context.Canceled):
		logging.WarnWithContext(logger, "existing mask fetch failed; using default geometry", "mask_load_failed",
			logging.Error(maskErr),
			logging.String(logging.FieldErrorHint, "check the storage service and retry the load"),
			logging.String(logging.FieldImpact, "editing starts from the default circle"),
		)
		restored = reconstruct.FromBytes(nil, width, height, opts.Reconstruct, logger)
		restored.Err = services.Wrap(services.ErrMaskLoad, "session", "fetch mask", puppetID, maskErr)
	case maskFound:
		restored = reconstruct.FromBytes(maskData, width, height, opts.Reconstruct, logger)
	default:
		restored = reconstruct.FromBytes(nil, width, height, opts.Reconstruct, logger)
	}
	if restored.Found {
		model.SetCircle(restored.Circle)
		model.SetShapes(restored.Shapes)
	}

	logger.Info("session loaded",
		logging.String("frame_format", format),
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Bool("mask_found", maskFound),
		logging.Bool("geometry_restored", restored.Found),
		logging.Int("shapes", len(model.Shapes)),
		logging.Duration("elapsed", time.Since(started)),
	)

	return &Session{
		puppetID: puppetID,
		svc:      svc,
		frame:    frame,
		editor:   editor.New(model, opts.Editor, opts.Logger),
		restored: restored,
		logger:   logger,
	}, nil
}

// PuppetID returns the puppet being edited.
func (s *Session) PuppetID() string { return s.puppetID }

// Frame returns the decoded editing frame.
func (s *Session) Frame() image.Image { return s.frame }

// Editor exposes the state machine for direct event dispatch.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Restored reports what reconstruction recovered at load time.
func (s *Session) Restored() reconstruct.Result { return s.restored }

// Snapshot captures the current editor state.
func (s *Session) Snapshot() editor.Snapshot { return s.editor.Snapshot() }

// Render projects the current state into display commands.
func (s *Session) Render() []editor.Command { return editor.Render(s.editor.Snapshot()) }

// Apply dispatches events in order. Save actions trigger Save; the first
// save error stops processing and is returned. Events arriving after Close
// are dropped.
func (s *Session) Apply(ctx context.Context, events []editor.Event) error {
	for _, ev := range events {
		if s.editor.Closed() {
			return nil
		}
		if ev.Kind == editor.SaveAction {
			if _, err := s.Save(ctx); err != nil {
				return err
			}
			continue
		}
		s.editor.Handle(ev)
	}
	return nil
}

// Mask rasterizes the current geometry at frame size.
func (s *Session) Mask() (*image.Gray, error) {
	model := s.editor.Model()
	width, height := model.Size()
	return raster.Rasterize(width, height, model.Circle, model.Shapes, s.logger)
}

// Save rasterizes, encodes and uploads the mask. Failures wrap
// services.ErrSave and leave the session editable. A save that completes
// after Close does not update the status.
func (s *Session) Save(ctx context.Context) (storage.SaveResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return storage.SaveResult{}, services.Wrap(services.ErrSave, "session", "save", "session closed", nil)
	}
	s.status = SavePending
	s.lastErr = nil
	s.mu.Unlock()

	result, err := s.save(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("save result ignored after close", logging.Bool("success", err == nil))
		return result, err
	}
	if err != nil {
		s.status = SaveError
		s.lastErr = err
		logging.ErrorWithContext(s.logger, "mask save failed", "mask_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry the save; the session is still editable"),
		)
		return result, err
	}
	s.status = SaveSuccess
	s.location = result.Location
	s.logger.Info("mask saved", logging.String("location", result.Location), logging.String(logging.FieldEventType, "mask_saved"))
	return result, nil
}

func (s *Session) save(ctx context.Context) (storage.SaveResult, error) {
	mask, err := s.Mask()
	if err != nil {
		return storage.SaveResult{}, services.Wrap(services.ErrSave, "session", "rasterize", s.puppetID, err)
	}
	data, err := raster.EncodePNG(mask)
	if err != nil {
		return storage.SaveResult{}, services.Wrap(services.ErrSave, "session", "encode", s.puppetID, err)
	}
	result, err := s.svc.SaveMask(ctx, s.puppetID, data)
	if err != nil {
		return storage.SaveResult{}, services.Wrap(services.ErrSave, "session", "upload", s.puppetID, err)
	}
	if !result.Success {
		return result, services.Wrap(services.ErrSave, "session", "upload", "storage reported failure", nil)
	}
	return result, nil
}

// SaveState reports the most recent save.
type SaveState struct {
	Status   SaveStatus
	Err      error
	Location string
}

// Status returns the latest save state. Location is kept from the last
// successful save.
func (s *Session) Status() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SaveState{Status: s.status, Err: s.lastErr, Location: s.location}
}

// Close stops input handling and detaches late save results.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.editor.Close()
	s.logger.Debug("session closed")
}
