package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"puppetmask/internal/editor"
	"puppetmask/internal/geometry"
)

// PaintOverlay draws display commands over a copy of frame. The frame itself
// is never modified. A positive maxSide fits the result within a
// maxSide x maxSide box.
func PaintOverlay(frame image.Image, cmds []editor.Command, maxSide int) *image.NRGBA {
	canvas := imaging.Clone(frame)
	b := canvas.Bounds()
	w, h := b.Dx(), b.Dy()
	r := vector.NewRasterizer(w, h)

	for _, cmd := range cmds {
		switch cmd.Kind {
		case editor.DrawCircle:
			pts := circlePolygon(cmd.Circle)
			paintFill(r, canvas, pts, cmd.Fill, cmd.Opacity)
			paintOutline(r, canvas, pts, true, cmd.Stroke, cmd.StrokeWidth, cmd.Opacity)
		case editor.DrawPolygon:
			if cmd.Closed {
				paintFill(r, canvas, cmd.Points, cmd.Fill, cmd.Opacity)
			}
			paintOutline(r, canvas, cmd.Points, cmd.Closed, cmd.Stroke, cmd.StrokeWidth, cmd.Opacity)
		case editor.DrawStroke:
			paintOutline(r, canvas, cmd.Points, false, cmd.Stroke, cmd.StrokeWidth, cmd.Opacity)
		}
	}

	if maxSide > 0 && (w > maxSide || h > maxSide) {
		return imaging.Fit(canvas, maxSide, maxSide, imaging.Lanczos)
	}
	return canvas
}

func paintFill(r *vector.Rasterizer, dst *image.NRGBA, pts []geometry.Point, c color.NRGBA, opacity float64) {
	if c.A == 0 || len(pts) < 3 {
		return
	}
	b := dst.Bounds()
	clipped := clipPolygon(pts, float64(b.Dx()), float64(b.Dy()))
	if len(clipped) < 3 {
		return
	}
	r.Reset(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	tracePath(r, clipped)
	r.Draw(dst, b, image.NewUniform(fade(c, opacity)), image.Point{})
}

// paintOutline strokes each segment as a quad of the given width.
func paintOutline(r *vector.Rasterizer, dst *image.NRGBA, pts []geometry.Point, closed bool, c color.NRGBA, width, opacity float64) {
	if c.A == 0 || width <= 0 || len(pts) < 2 {
		return
	}
	b := dst.Bounds()
	src := image.NewUniform(fade(c, opacity))
	segments := len(pts) - 1
	if closed {
		segments = len(pts)
	}
	half := width / 2
	for i := range segments {
		a, z := pts[i], pts[(i+1)%len(pts)]
		dx, dy := z.X-a.X, z.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		quad := []geometry.Point{
			{X: a.X + nx, Y: a.Y + ny},
			{X: z.X + nx, Y: z.Y + ny},
			{X: z.X - nx, Y: z.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		}
		clipped := clipPolygon(quad, float64(b.Dx()), float64(b.Dy()))
		if len(clipped) < 3 {
			continue
		}
		r.Reset(b.Dx(), b.Dy())
		r.DrawOp = draw.Over
		tracePath(r, clipped)
		r.Draw(dst, b, src, image.Point{})
	}
}

func fade(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity <= 0 || opacity >= 1 {
		return c
	}
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}
