package daemon_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"puppetmask/internal/api"
	"puppetmask/internal/config"
	"puppetmask/internal/daemon"
	"puppetmask/internal/logging"
	"puppetmask/internal/storage"
	"puppetmask/internal/testsupport"
)

type fixture struct {
	cfg       *config.Config
	bucket    *storage.Bucket
	extractor *testsupport.FrameExtractor
	server    *httptest.Server
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken(token))
	extractor := &testsupport.FrameExtractor{Frame: testsupport.FramePNG(t, 320, 240)}
	bucket, err := storage.NewBucket(cfg, logging.NewNop(), storage.WithExtractor(extractor))
	if err != nil {
		t.Fatalf("NewBucket: %v", err)
	}
	t.Cleanup(func() { _ = bucket.Close() })
	testsupport.AddRecording(t, cfg, "red_fox", "1700000200")

	server := httptest.NewServer(daemon.NewHandler(token, bucket, nil, logging.NewNop()))
	t.Cleanup(server.Close)
	return &fixture{cfg: cfg, bucket: bucket, extractor: extractor, server: server}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestListPuppets(t *testing.T) {
	f := newFixture(t, "")
	resp := f.do(t, http.MethodGet, "/api/puppets", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	puppets := decode[[]api.Puppet](t, resp)
	if len(puppets) != 1 || puppets[0].ID != "red_fox" || puppets[0].Name != "Red Fox" {
		t.Fatalf("puppets = %+v", puppets)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestFrameEndpoint(t *testing.T) {
	f := newFixture(t, "")
	resp := f.do(t, http.MethodGet, "/api/puppets/red_fox/frame", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	frame := decode[api.FrameResponse](t, resp)
	if !strings.HasPrefix(frame.FrameData, "data:image/png;base64,") {
		t.Fatalf("frameData prefix = %.30q", frame.FrameData)
	}
	if frame.VideoPath != "red_fox/camera/1700000200/camera_video.mp4" {
		t.Fatalf("videoPath = %q", frame.VideoPath)
	}

	missing := f.do(t, http.MethodGet, "/api/puppets/owl/frame", "", nil)
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing puppet status = %d, want 404", missing.StatusCode)
	}
	if body := decode[api.ErrorResponse](t, missing); body.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestFrameEndpointRefresh(t *testing.T) {
	f := newFixture(t, "")
	for _, path := range []string{
		"/api/puppets/red_fox/frame",
		"/api/puppets/red_fox/frame",
		"/api/puppets/red_fox/frame?refresh=1",
	} {
		if resp := f.do(t, http.MethodGet, path, "", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, resp.StatusCode)
		}
	}
	if n := f.extractor.Calls.Load(); n != 2 {
		t.Fatalf("extractor ran %d times, want 2 (cached once, refreshed once)", n)
	}

	missing := f.do(t, http.MethodGet, "/api/puppets/owl/frame?refresh=true", "", nil)
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("refresh missing puppet status = %d, want 404", missing.StatusCode)
	}
}

func TestMaskRoundTripOverHTTP(t *testing.T) {
	f := newFixture(t, "")

	none := f.do(t, http.MethodGet, "/api/puppets/red_fox/existing-mask", "", nil)
	if none.StatusCode != http.StatusNoContent {
		t.Fatalf("existing-mask without save = %d, want 204", none.StatusCode)
	}
	status := decode[api.MaskStatusResponse](t, f.do(t, http.MethodGet, "/api/puppets/red_fox/mask", "", nil))
	if status.Exists {
		t.Fatal("mask should not exist yet")
	}

	mask := testsupport.FramePNG(t, 320, 240)
	save := f.do(t, http.MethodPost, "/api/puppets/red_fox/mask", "", api.SaveMaskRequest{
		MaskData: api.EncodeDataURL(api.PNGMediaType, mask),
	})
	if save.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", save.StatusCode)
	}
	saved := decode[api.SaveMaskResponse](t, save)
	if !saved.Success || !strings.HasPrefix(saved.URL, "file://") {
		t.Fatalf("save response = %+v", saved)
	}

	existing := decode[api.ExistingMaskResponse](t, f.do(t, http.MethodGet, "/api/puppets/red_fox/existing-mask", "", nil))
	data, err := api.DecodeDataURL(existing.MaskData)
	if err != nil {
		t.Fatalf("decode mask: %v", err)
	}
	if !bytes.Equal(data, mask) {
		t.Fatal("stored mask differs from upload")
	}

	status = decode[api.MaskStatusResponse](t, f.do(t, http.MethodGet, "/api/puppets/red_fox/mask", "", nil))
	if !status.Exists || status.CreatedAt == "" {
		t.Fatalf("status after save = %+v", status)
	}

	hist := decode[api.HistoryResponse](t, f.do(t, http.MethodGet, "/api/puppets/red_fox/mask/history?limit=5", "", nil))
	if len(hist.Entries) != 1 || hist.Entries[0].SizeBytes != int64(len(mask)) {
		t.Fatalf("history = %+v", hist)
	}
}

func TestSaveMaskRejectsBadPayloads(t *testing.T) {
	f := newFixture(t, "")
	tests := []struct {
		name string
		body any
		want string
	}{
		{name: "missing", body: map[string]string{}, want: "No mask data provided"},
		{name: "not base64", body: api.SaveMaskRequest{MaskData: "data:image/png;base64,@@@"}, want: ""},
		{name: "not png", body: api.SaveMaskRequest{MaskData: api.EncodeDataURL(api.PNGMediaType, []byte("hello"))}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/api/puppets/red_fox/mask", "", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			body := decode[api.ErrorResponse](t, resp)
			if tt.want != "" && body.Error != tt.want {
				t.Fatalf("error = %q, want %q", body.Error, tt.want)
			}
		})
	}

	bad := f.do(t, http.MethodPost, "/api/puppets/..hidden/mask", "", api.SaveMaskRequest{
		MaskData: api.EncodeDataURL(api.PNGMediaType, testsupport.FramePNG(t, 4, 4)),
	})
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid id status = %d, want 400", bad.StatusCode)
	}
}

func TestSaveMaskRejectsOversizedBody(t *testing.T) {
	daemon.SetMaxBodyBytes(t, 1024)
	f := newFixture(t, "")

	resp := f.do(t, http.MethodPost, "/api/puppets/red_fox/mask", "", api.SaveMaskRequest{
		MaskData: "data:image/png;base64," + strings.Repeat("A", 4096),
	})
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
	body := decode[api.ErrorResponse](t, resp)
	if !strings.HasPrefix(body.Error, "Mask data too large") {
		t.Fatalf("error = %q", body.Error)
	}

	small := f.do(t, http.MethodPost, "/api/puppets/red_fox/mask", "", api.SaveMaskRequest{
		MaskData: api.EncodeDataURL(api.PNGMediaType, testsupport.FramePNG(t, 4, 4)),
	})
	if small.StatusCode != http.StatusOK {
		t.Fatalf("small body status = %d, want 200", small.StatusCode)
	}
}

func TestBearerAuth(t *testing.T) {
	f := newFixture(t, "s3cret")

	if resp := f.do(t, http.MethodGet, "/api/puppets", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/puppets", "wrong", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/puppets", "s3cret", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", resp.StatusCode)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t, "")
	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/status", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("request id = %q, want req-42", got)
	}
	if status := decode[api.DaemonStatus](t, resp); !status.Running {
		t.Fatal("expected running status")
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	f := newFixture(t, "")
	resp := f.do(t, http.MethodGet, "/api/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}
