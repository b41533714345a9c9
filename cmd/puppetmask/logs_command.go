package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"puppetmask/internal/logging"
	"puppetmask/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var raw bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()
			emit := func(result logs.TailResult) {
				for _, line := range result.Lines {
					if !raw {
						line = logs.Format(line)
					}
					fmt.Fprintln(out, line)
				}
			}

			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			emit(result)
			if !follow {
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			offset := result.Offset
			for {
				result, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 2 * time.Second, Filter: filter})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				emit(result)
				offset = result.Offset
				if runCtx.Err() != nil {
					return nil
				}
			}
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unformatted")
	cmd.Flags().StringVar(&filter.PuppetID, "puppet", "", "Only records for this puppet")
	cmd.Flags().StringVar(&filter.Component, "component", "", "Only records from this component (storage, session, api-server)")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	return cmd
}
