package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"puppetmask/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDaemon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		url   string
		token string
		pass  bool
	}{
		{"ok", srv.URL + "/", "good", true},
		{"bad token", srv.URL, "bad", false},
		{"missing url", "", "good", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckDaemon(context.Background(), tt.url, tt.token)
			if result.Passed != tt.pass {
				t.Fatalf("passed = %v (%s), want %v", result.Passed, result.Detail, tt.pass)
			}
		})
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BucketDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.CacheDir = t.TempDir()
	cfg.Frames.CacheEnabled = true

	results := RunAll(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}

	cfg.Frames.CacheEnabled = false
	cfg.Paths.BucketDir = filepath.Join(t.TempDir(), "missing")
	results = RunAll(context.Background(), &cfg)
	if len(results) != 2 || AllPassed(results) {
		t.Fatalf("expected 2 results with a failure, got %+v", results)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := config.Default()
	cfg.Frames.FFmpegBinary = "definitely-missing-ffmpeg"
	cfg.Frames.FFprobeBinary = "definitely-missing-ffprobe"
	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Available || statuses[0].Optional || !statuses[1].Optional {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}
