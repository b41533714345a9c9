package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"puppetmask/internal/api"
	"puppetmask/internal/apiclient"
	"puppetmask/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show directory, dependency and daemon health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			daemonURL := ctx.localDaemonURL(cfg)
			reach := preflight.CheckDaemon(cmd.Context(), daemonURL, cfg.Paths.APIToken)

			var remote *api.DaemonStatus
			if reach.Passed {
				client, err := apiclient.New(daemonURL, cfg.Paths.APIToken)
				if err == nil {
					if status, err := client.Status(cmd.Context()); err == nil {
						remote = &status
					}
				}
			}

			checks := preflight.RunAll(cmd.Context(), cfg)
			local := api.DaemonStatus{
				BucketDir:    cfg.Paths.BucketDir,
				LockFilePath: cfg.LockPath(),
				Dependencies: api.FromDependencies(preflight.CheckSystemDeps(cfg)),
				Checks:       api.FromChecks(checks),
			}
			if cfg.Storage.HistoryEnabled {
				local.HistoryDBPath = cfg.HistoryPath()
			}

			if asJSON {
				payload := map[string]any{"config": ctx.configPath, "local": local, "daemonUrl": daemonURL}
				if remote != nil {
					payload["daemon"] = remote
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			lines = append(lines, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			lines = append(lines, renderStatusLine("Bucket", statusInfo, cfg.Paths.BucketDir, colorize))
			lines = append(lines, checkLines(local.Checks, colorize)...)
			if !preflight.AllPassed(checks) {
				lines = append(lines, renderStatusLine("Directories", statusError, "fix the paths above, then run `puppetmask config validate`", colorize))
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(local.Dependencies, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Daemon", colorize)...)
			if remote == nil {
				lines = append(lines, renderStatusLine("Daemon", statusWarn, reach.Detail+" ("+daemonURL+")", colorize))
			} else {
				lines = append(lines, renderStatusLine("Daemon", statusOK, "Running at "+daemonURL, colorize))
				lines = append(lines, renderStatusLine("PID", statusInfo, strconv.Itoa(remote.PID), colorize))
				if remote.StartedAt != "" {
					lines = append(lines, renderStatusLine("Started", statusInfo, remote.StartedAt, colorize))
				}
				lines = append(lines, renderStatusLine("Puppets", statusInfo, strconv.Itoa(remote.Puppets), colorize))
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
