package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"puppetmask/internal/daemonctl"
)

const (
	startWaitTimeout = 10 * time.Second
	stopGracePeriod  = 10 * time.Second
)

func (c *commandContext) daemonTarget() (daemonctl.Target, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return daemonctl.Target{}, err
	}
	return daemonctl.Target{
		URL:    "http://" + cfg.Paths.APIBind,
		Token:  cfg.Paths.APIToken,
		LogDir: cfg.Paths.LogDir,
	}, nil
}

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var logLevel string

	start := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ctx.daemonTarget()
			if err != nil {
				return err
			}
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			result, err := daemonctl.EnsureStarted(cmd.Context(), target, exe, daemonctl.LaunchOptions{
				ConfigPath: ctx.configPath,
				LogLevel:   logLevel,
			}, startWaitTimeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(out, "Daemon already running at %s\n", target.URL)
			default:
				fmt.Fprintf(out, "Daemon started at %s (pid %d)\n", target.URL, result.PID)
			}
			return nil
		},
	}
	start.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for the daemon")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ctx.daemonTarget()
			if err != nil {
				return err
			}
			result, err := daemonctl.Stop(cmd.Context(), target, stopGracePeriod)
			out := cmd.OutOrStdout()
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Daemon (pid %d) did not exit in time and was killed\n", result.PID)
			} else {
				fmt.Fprintf(out, "Daemon (pid %d) stopped\n", result.PID)
			}
			return nil
		},
	}

	return []*cobra.Command{start, stop}
}
