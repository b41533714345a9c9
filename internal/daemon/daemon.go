package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"puppetmask/internal/api"
	"puppetmask/internal/config"
	"puppetmask/internal/logging"
	"puppetmask/internal/preflight"
)

// Daemon serves the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend Backend
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// New constructs a daemon over the given storage backend.
func New(cfg *config.Config, backend Backend, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || backend == nil || logger == nil {
		return nil, errors.New("daemon requires config, backend, and logger")
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		backend:  backend,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.api = newAPIServer(cfg.Paths.APIBind, NewHandler(cfg.Paths.APIToken, backend, d, logger), logger)
	return d, nil
}

// Start acquires the daemon lock, prunes old logs and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another puppetmask daemon instance is already running")
	}

	logging.CleanupOldLogs(d.logger, d.cfg.Logging.RetentionDays, logging.RetentionTargets(d.cfg)...)

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("puppetmask daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bucket", d.cfg.Paths.BucketDir),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("puppetmask daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if closer, ok := d.backend.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Address returns the bound API address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Status reports runtime information, directory checks and binary
// availability.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		BucketDir:    d.cfg.Paths.BucketDir,
		LockFilePath: d.lockPath,
		Dependencies: api.FromDependencies(preflight.CheckSystemDeps(d.cfg)),
		Checks:       api.FromChecks(preflight.RunAll(ctx, d.cfg)),
	}
	if status.Running {
		status.StartedAt = api.FormatTime(d.startedAt)
	}
	if d.cfg.Storage.HistoryEnabled {
		status.HistoryDBPath = d.cfg.HistoryPath()
	}
	if puppets, err := d.backend.ListPuppets(ctx); err == nil {
		status.Puppets = len(puppets)
	}
	return status
}
