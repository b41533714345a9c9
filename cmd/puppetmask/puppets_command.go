package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"puppetmask/internal/api"
)

type puppetRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HasMask   bool   `json:"hasMask"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func newPuppetsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "puppets",
		Short: "List puppets and whether each has a saved mask",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(b backend, _ *slog.Logger) error {
				puppets, err := b.ListPuppets(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([]puppetRow, 0, len(puppets))
				for _, p := range puppets {
					row := puppetRow{ID: p.ID, Name: p.Name}
					status, err := b.MaskStatus(cmd.Context(), p.ID)
					if err != nil {
						return fmt.Errorf("mask status for %s: %w", p.ID, err)
					}
					row.HasMask = status.Exists
					row.CreatedAt = api.FormatTime(status.CreatedAt)
					rows = append(rows, row)
				}

				if asJSON {
					return writeJSON(cmd, rows)
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No puppets found")
					return nil
				}
				table := make([][]string, 0, len(rows))
				for _, row := range rows {
					table = append(table, []string{row.ID, row.Name, yesNo(row.HasMask), row.CreatedAt})
				}
				fmt.Fprintln(out, renderTable([]column{{title: "ID"}, {title: "Name"}, {title: "Mask"}, {title: "Saved"}}, table))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
