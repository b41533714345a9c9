package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"puppetmask/internal/api"
	"puppetmask/internal/editor"
	"puppetmask/internal/fileutil"
	"puppetmask/internal/geometry"
	"puppetmask/internal/raster"
	"puppetmask/internal/session"
)

func newMaskCommand(ctx *commandContext) *cobra.Command {
	maskCmd := &cobra.Command{
		Use:   "mask",
		Short: "Inspect, edit and render puppet masks",
	}
	maskCmd.AddCommand(newMaskShowCommand(ctx))
	maskCmd.AddCommand(newMaskEditCommand(ctx))
	maskCmd.AddCommand(newMaskRenderCommand(ctx))
	maskCmd.AddCommand(newMaskHistoryCommand(ctx))
	return maskCmd
}

// withSession loads an editing session for puppetID and closes it after fn.
func (c *commandContext) withSession(cmd *cobra.Command, puppetID string, fn func(*session.Session, backend) error) error {
	return c.withBackend(cmd, func(b backend, logger *slog.Logger) error {
		cfg, err := c.ensureConfig()
		if err != nil {
			return err
		}
		sess, err := session.Load(cmd.Context(), b, puppetID, session.OptionsFromConfig(cfg, logger))
		if err != nil {
			return err
		}
		defer sess.Close()
		return fn(sess, b)
	})
}

type maskSummary struct {
	PuppetID  string           `json:"puppetId"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	MaskSaved bool             `json:"maskSaved"`
	SavedAt   string           `json:"savedAt,omitempty"`
	Restored  bool             `json:"restored"`
	Circle    geometry.Circle  `json:"circle"`
	Shapes    []geometry.Shape `json:"shapes"`
}

func summarize(sess *session.Session) maskSummary {
	model := sess.Editor().Model()
	w, h := model.Size()
	shapes := model.Shapes
	if shapes == nil {
		shapes = []geometry.Shape{}
	}
	return maskSummary{
		PuppetID: sess.PuppetID(),
		Width:    w,
		Height:   h,
		Restored: sess.Restored().Found,
		Circle:   model.Circle,
		Shapes:   shapes,
	}
}

func printSummary(out io.Writer, s maskSummary) {
	fmt.Fprintf(out, "Puppet:  %s\n", s.PuppetID)
	fmt.Fprintf(out, "Frame:   %dx%d\n", s.Width, s.Height)
	saved := yesNo(s.MaskSaved)
	if s.SavedAt != "" {
		saved += " (" + s.SavedAt + ")"
	}
	fmt.Fprintf(out, "Saved:   %s\n", saved)
	fmt.Fprintf(out, "Circle:  center (%.1f, %.1f) radius %.1f\n", s.Circle.CenterX, s.Circle.CenterY, s.Circle.Radius)
	if len(s.Shapes) == 0 {
		fmt.Fprintln(out, "Shapes:  none")
		return
	}
	rows := make([][]string, 0, len(s.Shapes))
	for i, shape := range s.Shapes {
		first := "-"
		if len(shape.Points) > 0 {
			first = fmt.Sprintf("(%.0f, %.0f)", shape.Points[0].X, shape.Points[0].Y)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(len(shape.Points)), yesNo(shape.Closed), first})
	}
	fmt.Fprintln(out, renderTable([]column{{title: "#", numeric: true}, {title: "Points", numeric: true}, {title: "Closed"}, {title: "Start"}}, rows))
}

func newMaskShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <puppet>",
		Short: "Show the geometry recovered from a puppet's saved mask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], func(sess *session.Session, b backend) error {
				summary := summarize(sess)
				status, err := b.MaskStatus(cmd.Context(), sess.PuppetID())
				if err != nil {
					return err
				}
				summary.MaskSaved = status.Exists
				summary.SavedAt = api.FormatTime(status.CreatedAt)
				if asJSON {
					return writeJSON(cmd, summary)
				}
				out := cmd.OutOrStdout()
				printSummary(out, summary)
				if restoreErr := sess.Restored().Err; restoreErr != nil {
					fmt.Fprintf(out, "Warning: saved mask unreadable, defaults shown (%v)\n", restoreErr)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newMaskEditCommand(ctx *commandContext) *cobra.Command {
	var scriptPath string
	var dryRun bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "edit <puppet>",
		Short: "Apply an event script to a puppet's mask and save it",
		Long: `Replays editor events from a script, one per line:

  down X Y | move X Y | up | click X Y
  key NAME | key ctrl+a | select-all | clear-all | save

The mask is saved once after the script unless --dry-run is set or the script
already ends with save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := readScript(cmd, scriptPath)
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, args[0], func(sess *session.Session, _ backend) error {
				if dryRun {
					events = dropSaves(events)
				}
				if err := sess.Apply(cmd.Context(), events); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !dryRun && !endsWithSave(events) {
					if _, err := sess.Save(cmd.Context()); err != nil {
						return err
					}
				}
				if outPath != "" {
					if err := writeMask(sess, outPath); err != nil {
						return err
					}
					fmt.Fprintf(out, "Wrote mask to %s\n", outPath)
				}
				printSummary(out, summarize(sess))
				state := sess.Status()
				switch state.Status {
				case session.SaveSuccess:
					fmt.Fprintf(out, "Saved mask: %s\n", state.Location)
				case session.SaveIdle:
					fmt.Fprintln(out, "Not saved (dry run)")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "-", "Event script path, or - for stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Apply events without saving")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Also write the resulting mask PNG here")
	return cmd
}

func newMaskRenderCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var maskOnly bool
	var maxSide int

	cmd := &cobra.Command{
		Use:   "render <puppet>",
		Short: "Render the frame with the mask overlay, or the mask itself, to a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outPath) == "" {
				return errors.New("--out is required")
			}
			return ctx.withSession(cmd, args[0], func(sess *session.Session, _ backend) error {
				if maskOnly {
					if err := writeMask(sess, outPath); err != nil {
						return err
					}
				} else {
					preview := raster.PaintOverlay(sess.Frame(), sess.Render(), maxSide)
					data, err := raster.EncodePNG(preview)
					if err != nil {
						return err
					}
					if err := fileutil.WriteFileAtomic(outPath, data, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", outPath, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination PNG")
	cmd.Flags().BoolVar(&maskOnly, "mask", false, "Write the binary mask instead of the overlay preview")
	cmd.Flags().IntVar(&maxSide, "max-side", 0, "Fit the preview within this many pixels per side")
	return cmd
}

func newMaskHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <puppet>",
		Short: "List recorded saves for a puppet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(cmd, func(b backend, _ *slog.Logger) error {
				entries, err := b.History(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.FromHistory(entries))
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No saves recorded")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{api.FormatTime(e.CreatedAt), strconv.FormatInt(e.SizeBytes, 10), e.SHA256, e.ObjectPath})
				}
				fmt.Fprintln(out, renderTable([]column{
					{title: "Saved"},
					{title: "Bytes", numeric: true},
					{title: "SHA256", maxWidth: 12},
					{title: "Object"},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func readScript(cmd *cobra.Command, path string) ([]editor.Event, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	return editor.ParseScript(r)
}

func writeMask(sess *session.Session, path string) error {
	mask, err := sess.Mask()
	if err != nil {
		return err
	}
	data, err := raster.EncodePNG(mask)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func endsWithSave(events []editor.Event) bool {
	return len(events) > 0 && events[len(events)-1].Kind == editor.SaveAction
}

func dropSaves(events []editor.Event) []editor.Event {
	kept := events[:0:0]
	for _, ev := range events {
		if ev.Kind != editor.SaveAction {
			kept = append(kept, ev)
		}
	}
	return kept
}
