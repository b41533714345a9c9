package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"puppetmask/internal/daemonrun"
	"puppetmask/internal/preflight"
)

// ErrDaemonNotRunning indicates neither the API nor a live pid was found.
var ErrDaemonNotRunning = errors.New("daemon not running")

const pollInterval = 200 * time.Millisecond

// Target identifies a daemon instance.
type Target struct {
	URL    string
	Token  string
	LogDir string
}

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State StartState
	PID   int
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// Launch starts a detached `serve` process from executablePath.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}
	args := []string{"serve"}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// Reachable reports whether the daemon API answers.
func Reachable(ctx context.Context, target Target) bool {
	return preflight.CheckDaemon(ctx, target.URL, target.Token).Passed
}

// WaitForReady polls the API until it answers or timeout elapses.
func WaitForReady(ctx context.Context, target Target, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var last preflight.Result
	for {
		last = preflight.CheckDaemon(ctx, target.URL, target.Token)
		if last.Passed {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon failed to start: %s", last.Detail)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// EnsureStarted launches the daemon unless its API already answers.
func EnsureStarted(ctx context.Context, target Target, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	if Reachable(ctx, target) {
		pid, _ := daemonrun.ReadPID(target.LogDir)
		return StartResult{State: StartStateAlreadyRunning, PID: pid}, nil
	}
	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	if err := WaitForReady(ctx, target, waitTimeout); err != nil {
		return StartResult{}, err
	}
	pid, _ := daemonrun.ReadPID(target.LogDir)
	return StartResult{State: StartStateStarted, PID: pid}, nil
}

// Stop sends SIGTERM to the recorded daemon pid and escalates to SIGKILL if
// the process outlives gracePeriod.
func Stop(ctx context.Context, target Target, gracePeriod time.Duration) (StopResult, error) {
	pid, ok := daemonrun.ReadPID(target.LogDir)
	if !ok || !processAlive(pid) {
		if Reachable(ctx, target) {
			return StopResult{}, fmt.Errorf("daemon answers at %s but no live pid is recorded in %s", target.URL, target.LogDir)
		}
		removePIDFile(target.LogDir)
		return StopResult{}, ErrDaemonNotRunning
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}

	result := StopResult{PID: pid}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return result, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}
	if waitForExit(ctx, pid, gracePeriod) {
		return result, nil
	}

	if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	removePIDFile(target.LogDir)
	result.ForcedKill = true
	return result, nil
}

func waitForExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return true
		}
		select {
		case <-ctx.Done():
			return !processAlive(pid)
		case <-time.After(pollInterval):
		}
	}
	return !processAlive(pid)
}

// processAlive probes pid with signal 0. Zombies still count as alive until
// their parent reaps them.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func removePIDFile(logDir string) {
	if logDir == "" {
		return
	}
	_ = os.Remove(filepath.Join(logDir, daemonrun.PIDFileName))
}
