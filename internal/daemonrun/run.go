package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"puppetmask/internal/config"
	"puppetmask/internal/daemon"
	"puppetmask/internal/deps"
	"puppetmask/internal/logging"
	"puppetmask/internal/preflight"
	"puppetmask/internal/storage"
)

// PIDFileName is written under paths.log_dir while the daemon runs.
const PIDFileName = "puppetmaskd.pid"

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel string
	// Ready, when set, receives the bound API address once the server listens.
	Ready func(address string)
}

// Run starts the puppetmask daemon and blocks until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout"},
		FilePath:    filepath.Join(cfg.Paths.LogDir, logging.LogFileName),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	pidPath := filepath.Join(cfg.Paths.LogDir, PIDFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	bucket, err := storage.NewBucket(cfg, logger)
	if err != nil {
		logger.Error("open bucket", logging.Error(err))
		return err
	}

	d, err := daemon.New(cfg, bucket, logger)
	if err != nil {
		_ = bucket.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.api_bind and whether another daemon holds the lock"),
			logging.String(logging.FieldImpact, "mask storage API is unavailable"),
		)
		return err
	}
	if opts.Ready != nil {
		opts.Ready(d.Address())
	}

	<-signalCtx.Done()
	logger.Info("puppetmask daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// ReadPID returns the pid recorded in logDir, if any.
func ReadPID(logDir string) (int, bool) {
	raw, err := os.ReadFile(filepath.Join(logDir, PIDFileName))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("bucket_dir", cfg.Paths.BucketDir),
		logging.Bool("auth_enabled", strings.TrimSpace(cfg.Paths.APIToken) != ""),
		logging.Bool("history_enabled", cfg.Storage.HistoryEnabled),
	}
	statuses := preflight.CheckSystemDeps(cfg)
	for _, status := range statuses {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
	for _, missing := range deps.MissingRequired(statuses) {
		logging.WarnWithContext(logger, "required dependency missing", "dependency_missing",
			logging.String("dependency", missing.Name),
			logging.String("detail", missing.Detail),
			logging.String(logging.FieldErrorHint, "install it or set the binary path under [frames]"),
			logging.String(logging.FieldImpact, "frame requests for uncached puppets will fail"),
		)
	}
}
