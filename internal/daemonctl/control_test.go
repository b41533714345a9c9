package daemonctl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"puppetmask/internal/daemonrun"
)

func startChild(t *testing.T, script string) (*exec.Cmd, <-chan struct{}) {
	t.Helper()
	cmd := exec.Command("/bin/sh", "-c", script)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	t.Cleanup(func() { _ = cmd.Process.Kill() })
	return cmd, exited
}

func writePID(t *testing.T, dir string, pid int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, daemonrun.PIDFileName), []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	target := Target{URL: "http://127.0.0.1:0", LogDir: t.TempDir()}
	if _, err := Stop(context.Background(), target, time.Second); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("err = %v, want ErrDaemonNotRunning", err)
	}
}

func TestStopTerminatesProcess(t *testing.T) {
	dir := t.TempDir()
	cmd, exited := startChild(t, "exec sleep 30")
	writePID(t, dir, cmd.Process.Pid)

	result, err := Stop(context.Background(), Target{URL: "http://127.0.0.1:0", LogDir: dir}, 5*time.Second)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if result.PID != cmd.Process.Pid || result.ForcedKill {
		t.Fatalf("result = %+v", result)
	}
	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("child still running")
	}
}

func TestStopEscalatesToKill(t *testing.T) {
	dir := t.TempDir()
	cmd, exited := startChild(t, `trap "" TERM; exec sleep 30`)
	writePID(t, dir, cmd.Process.Pid)
	time.Sleep(100 * time.Millisecond)

	result, err := Stop(context.Background(), Target{URL: "http://127.0.0.1:0", LogDir: dir}, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !result.ForcedKill {
		t.Fatalf("expected forced kill, got %+v", result)
	}
	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("child survived SIGKILL")
	}
	if _, ok := daemonrun.ReadPID(dir); ok {
		t.Fatal("pid file should be removed after kill")
	}
}

func TestEnsureStartedAlreadyRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	writePID(t, dir, 4242)
	result, err := EnsureStarted(context.Background(), Target{URL: server.URL, LogDir: dir}, "/nonexistent", LaunchOptions{}, time.Second)
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if result.State != StartStateAlreadyRunning || result.PID != 4242 {
		t.Fatalf("result = %+v", result)
	}
}

func TestWaitForReadyTimesOut(t *testing.T) {
	err := WaitForReady(context.Background(), Target{URL: "http://127.0.0.1:0"}, 300*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if err := Launch("  ", LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable")
	}
}
