package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"puppetmask/internal/config"
	"puppetmask/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(err, os.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Point paths.bucket_dir at the directory holding your puppet folders, then run `puppetmask status`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func resolveInitTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report the effective settings",
		Long: "Load the configuration and report the effective settings.\n\n" +
			"With --strict the bucket, log and cache directories must also be readable and writable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			describeConfig(out, cfg)

			if strict {
				results := preflight.RunAll(cmd.Context(), cfg)
				for _, r := range results {
					fmt.Fprintf(out, "%-16s %s %s\n", r.Name+":", choose(r.Passed, "ok", "FAIL"), r.Detail)
				}
				if !preflight.AllPassed(results) {
					return errors.New("directory checks failed")
				}
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Also check directory access")
	return cmd
}

func describeConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "Bucket: %s\n", cfg.Paths.BucketDir)
	fmt.Fprintf(out, "API: %s (auth %s)\n", cfg.Paths.APIBind, choose(strings.TrimSpace(cfg.Paths.APIToken) != "", "on", "off"))
	fmt.Fprintf(out, "Frames: seek %.1fs, cache %s\n", cfg.Frames.SeekSeconds, choose(cfg.Frames.CacheEnabled, "on", "off"))
	e := cfg.Editor
	fmt.Fprintf(out, "Editor: close %.0fpx, simplify %.0fpx, min radius %.0fpx\n", e.CloseDistance, e.SimplifyTolerance, e.MinRadius)
	fmt.Fprintf(out, "History: %s\n", choose(cfg.Storage.HistoryEnabled, cfg.HistoryPath(), "off"))
}

func choose(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
