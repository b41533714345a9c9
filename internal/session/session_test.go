package session_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"

	"puppetmask/internal/editor"
	"puppetmask/internal/geometry"
	"puppetmask/internal/logging"
	"puppetmask/internal/raster"
	"puppetmask/internal/services"
	"puppetmask/internal/session"
	"puppetmask/internal/storage"
)

type fakeService struct {
	mu       sync.Mutex
	frame    []byte
	frameErr error
	mask     []byte
	maskErr  error
	saveErr  error
	saved    [][]byte
	saveHook func()
}

func (f *fakeService) ListPuppets(context.Context) ([]storage.Puppet, error) {
	return []storage.Puppet{{ID: "p1", Name: "P1"}}, nil
}

func (f *fakeService) FetchFrame(context.Context, string) ([]byte, error) {
	return f.frame, f.frameErr
}

func (f *fakeService) FetchExistingMask(context.Context, string) ([]byte, bool, error) {
	if f.maskErr != nil {
		return nil, false, f.maskErr
	}
	return f.mask, f.mask != nil, nil
}

func (f *fakeService) SaveMask(_ context.Context, id string, data []byte) (storage.SaveResult, error) {
	if f.saveHook != nil {
		f.saveHook()
	}
	if f.saveErr != nil {
		return storage.SaveResult{}, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, data)
	return storage.SaveResult{Success: true, Location: "file:///bucket/" + id + "/camera/mask.png"}, nil
}

func (f *fakeService) MaskStatus(context.Context, string) (storage.MaskStatus, error) {
	return storage.MaskStatus{Exists: len(f.saved) > 0}, nil
}

func framePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return buf.Bytes()
}

func maskPNG(t *testing.T, w, h int, c geometry.Circle) []byte {
	t.Helper()
	mask, err := raster.Rasterize(w, h, c, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	data, err := raster.EncodePNG(mask)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	return data
}

func options() session.Options {
	opts := session.DefaultOptions()
	opts.Logger = logging.NewNop()
	return opts
}

func TestLoadWithoutMaskUsesDefaultCircle(t *testing.T) {
	svc := &fakeService{frame: framePNG(t, 320, 240)}
	s, err := session.Load(context.Background(), svc, "p1", options())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Editor().Model().Circle; got != geometry.DefaultCircle(320, 240) {
		t.Fatalf("circle = %+v, want default", got)
	}
	if s.Restored().Found {
		t.Fatal("nothing should be restored without a mask")
	}
	if st := s.Status(); st.Status != session.SaveIdle {
		t.Fatalf("status = %s, want idle", st.Status)
	}
}

func TestLoadRestoresSavedCircle(t *testing.T) {
	want := geometry.Circle{CenterX: 100, CenterY: 120, Radius: 60}
	svc := &fakeService{frame: framePNG(t, 320, 240), mask: maskPNG(t, 320, 240, want)}
	s, err := session.Load(context.Background(), svc, "p1", options())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := s.Editor().Model().Circle
	if math.Abs(got.CenterX-want.CenterX) > 2 || math.Abs(got.CenterY-want.CenterY) > 2 {
		t.Fatalf("center = (%.1f, %.1f), want (100, 120)", got.CenterX, got.CenterY)
	}
	if math.Abs(got.Radius-want.Radius) > want.Radius*0.05 {
		t.Fatalf("radius = %.1f, want about 60", got.Radius)
	}
}

func TestLoadFrameFailure(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
	}{
		{"fetch error", &fakeService{frameErr: services.Wrap(services.ErrNotFound, "storage", "fetch frame", "p1", nil)}},
		{"undecodable", &fakeService{frame: []byte("not an image")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := session.Load(context.Background(), tt.svc, "p1", options())
			if !errors.Is(err, services.ErrFrameLoad) {
				t.Fatalf("expected ErrFrameLoad, got %v", err)
			}
		})
	}
}

func TestLoadMaskFailureDegrades(t *testing.T) {
	svc := &fakeService{frame: framePNG(t, 200, 100), maskErr: errors.New("bucket offline")}
	s, err := session.Load(context.Background(), svc, "p1", options())
	if err != nil {
		t.Fatalf("mask failure must not be fatal: %v", err)
	}
	if got := s.Editor().Model().Circle; got != geometry.DefaultCircle(200, 100) {
		t.Fatalf("circle = %+v, want default", got)
	}
	if !errors.Is(s.Restored().Err, services.ErrMaskLoad) {
		t.Fatalf("expected ErrMaskLoad on the restore result, got %v", s.Restored().Err)
	}
}

func TestApplySaveUploadsRasterizedMask(t *testing.T) {
	svc := &fakeService{frame: framePNG(t, 320, 240)}
	s, err := session.Load(context.Background(), svc, "p1", options())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	events := []editor.Event{
		editor.Down(250, 20),
		editor.Move(300, 20),
		editor.Move(300, 70),
		editor.Move(252, 22),
		editor.Up(),
		{Kind: editor.SaveAction},
	}
	if err := s.Apply(context.Background(), events); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(svc.saved) != 1 {
		t.Fatalf("expected one upload, got %d", len(svc.saved))
	}
	img, err := png.Decode(bytes.NewReader(svc.saved[0]))
	if err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("mask size = %v, want 320x240", b)
	}
	used := func(x, y int) bool {
		r, _, _, _ := img.At(x, y).RGBA()
		return r == 0
	}
	if !used(160, 120) {
		t.Fatal("circle center should be used")
	}
	if !used(290, 30) {
		t.Fatal("drawn shape should be used")
	}
	if used(10, 10) {
		t.Fatal("corner should be unused")
	}
	st := s.Status()
	if st.Status != session.SaveSuccess || st.Location == "" {
		t.Fatalf("status = %+v", st)
	}
}

func TestSaveFailureKeepsSessionEditable(t *testing.T) {
	svc := &fakeService{frame: framePNG(t, 320, 240), saveErr: errors.New("upload refused")}
	s, err := session.Load(context.Background(), svc, "p1", options())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Save(context.Background()); !errors.Is(err, services.ErrSave) {
		t.Fatalf("expected ErrSave, got %v", err)
	}
	if st := s.Status(); st.Status != session.SaveError || st.Err == nil {
		t.Fatalf("status = %+v", st)
	}
	if !s.Editor().Handle(editor.Key(editor.KeyArrowRight)) {
		t.Fatal("editor should still accept input after a failed save")
	}

	svc.saveErr = nil
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if st := s.Status(); st.Status != session.SaveSuccess || st.Err != nil {
		t.Fatalf("status after retry = %+v", st)
	}
}

func TestCloseDetachesLateSaveResult(t *testing.T) {
	svc := &fakeService{frame: framePNG(t, 320, 240)}
	s, err := session.Load(context.Background(), svc, "p1", options())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	svc.saveHook = s.Close
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st := s.Status(); st.Status != session.SavePending {
		t.Fatalf("late result should be ignored, status = %s", st.Status)
	}
	if s.Editor().Handle(editor.Key(editor.KeyArrowRight)) {
		t.Fatal("closed session should ignore input")
	}
	if _, err := s.Save(context.Background()); !errors.Is(err, services.ErrSave) {
		t.Fatalf("save after close should fail, got %v", err)
	}
}

func TestCloseWhileApplyingEvents(t *testing.T) {
	svc := &fakeService{frame: framePNG(t, 320, 240)}
	s, err := session.Load(context.Background(), svc, "p1", options())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 1000 {
			if err := s.Apply(context.Background(), []editor.Event{editor.Key(editor.KeyArrowLeft)}); err != nil {
				t.Errorf("Apply: %v", err)
				return
			}
		}
	}()
	s.Close()
	wg.Wait()

	before := s.Editor().Model().Circle
	if err := s.Apply(context.Background(), []editor.Event{editor.Key(editor.KeyArrowLeft)}); err != nil {
		t.Fatalf("Apply after close: %v", err)
	}
	if got := s.Editor().Model().Circle; got != before {
		t.Fatalf("circle moved after close: %+v -> %+v", before, got)
	}
	if !s.Editor().Closed() {
		t.Fatal("editor should report closed")
	}
}

func TestSaveStatusString(t *testing.T) {
	for status, want := range map[session.SaveStatus]string{
		session.SaveIdle:    "idle",
		session.SavePending: "pending",
		session.SaveSuccess: "success",
		session.SaveError:   "error",
	} {
		if got := status.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", int(status), got, want)
		}
	}
}
