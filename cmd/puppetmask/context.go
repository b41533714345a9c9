package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"puppetmask/internal/apiclient"
	"puppetmask/internal/config"
	"puppetmask/internal/logging"
	"puppetmask/internal/storage"
	"puppetmask/internal/storage/history"
)

// backend is what every data command needs. Both the local bucket and the
// HTTP client satisfy it.
type backend interface {
	storage.Service
	History(ctx context.Context, puppetID string, limit int) ([]history.Entry, error)
}

type commandContext struct {
	serverFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(serverFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) server() string {
	if c.serverFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.serverFlag)
}

// localDaemonURL is where a daemon started from this config would listen.
func (c *commandContext) localDaemonURL(cfg *config.Config) string {
	if server := c.server(); server != "" {
		return server
	}
	return "http://" + cfg.Paths.APIBind
}

// logger writes warnings and above to stderr so command output stays clean.
func (c *commandContext) logger(cfg *config.Config) *slog.Logger {
	level := "warn"
	if cfg != nil && strings.EqualFold(cfg.Logging.Level, "debug") {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withBackend opens the bucket, or a daemon client when --server is set, and
// runs fn against it.
func (c *commandContext) withBackend(cmd *cobra.Command, fn func(backend, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.logger(cfg)

	if server := c.server(); server != "" {
		client, err := apiclient.New(server, cfg.Paths.APIToken)
		if err != nil {
			return err
		}
		return fn(client, logger)
	}

	bucket, err := storage.NewBucket(cfg, logger)
	if err != nil {
		return fmt.Errorf("open bucket: %w", err)
	}
	defer bucket.Close()
	return fn(bucket, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
