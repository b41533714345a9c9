package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"puppetmask/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mask storage daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.server() != "" {
				return fmt.Errorf("serve runs a local daemon; drop --server")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: logLevel,
				Ready: func(address string) {
					fmt.Fprintf(out, "Serving masks from %s on http://%s\n", cfg.Paths.BucketDir, address)
				},
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	return cmd
}
