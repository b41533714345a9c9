package raster

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"math"

	"golang.org/x/image/vector"

	"puppetmask/internal/geometry"
	"puppetmask/internal/logging"
	"puppetmask/internal/services"
)

const (
	// Used and Unused are the only gray levels a mask contains.
	Used   uint8 = 0
	Unused uint8 = 255

	coverageThreshold = 0x80
	minCircleSegments = 64
	maxCircleSegments = 2048
)

// Rasterize paints the circle and then each fillable shape, in list order,
// onto a white width x height canvas. Shapes that are open or have fewer
// than three distinct vertices are skipped and logged at debug level.
func Rasterize(width, height int, circle geometry.Circle, shapes []geometry.Shape, logger *slog.Logger) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, services.Wrap(services.ErrValidation, "raster", "rasterize",
			fmt.Sprintf("invalid frame size %dx%d", width, height), nil)
	}
	logger = logging.NewComponentLogger(logger, "raster")

	bounds := image.Rect(0, 0, width, height)
	coverage := image.NewAlpha(bounds)
	r := vector.NewRasterizer(width, height)

	fillPolygon(r, coverage, circlePolygon(circle), width, height)

	painted := 0
	for i, shape := range shapes {
		if !shape.Fillable() {
			logger.Debug("shape skipped",
				logging.Int("shape_index", i),
				logging.Bool("closed", shape.Closed),
				logging.Int("distinct_vertices", shape.DistinctVertices()),
			)
			continue
		}
		fillPolygon(r, coverage, shape.Vertices(), width, height)
		painted++
	}

	mask := image.NewGray(bounds)
	for i, a := range coverage.Pix {
		if a >= coverageThreshold {
			mask.Pix[i] = Used
		} else {
			mask.Pix[i] = Unused
		}
	}

	logger.Debug("mask rasterized",
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Int("shapes_painted", painted),
		logging.Int("shapes_skipped", len(shapes)-painted),
	)
	return mask, nil
}

// fillPolygon rasterizes one closed polygon into dst. Each polygon gets a
// fresh accumulation buffer so opposite windings never cancel.
func fillPolygon(r *vector.Rasterizer, dst *image.Alpha, pts []geometry.Point, width, height int) {
	clipped := clipPolygon(pts, float64(width), float64(height))
	if len(clipped) < 3 {
		return
	}
	r.Reset(width, height)
	r.DrawOp = draw.Over
	tracePath(r, clipped)
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
}

func tracePath(r *vector.Rasterizer, pts []geometry.Point) {
	r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
}

// circlePolygon flattens a circle into a polygon with roughly one segment
// per two pixels of circumference.
func circlePolygon(c geometry.Circle) []geometry.Point {
	if c.Radius <= 0 {
		return nil
	}
	n := int(math.Ceil(math.Pi * c.Radius))
	n = max(minCircleSegments, min(maxCircleSegments, n))
	pts := make([]geometry.Point, n)
	for i := range n {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geometry.Point{
			X: c.CenterX + c.Radius*math.Cos(theta),
			Y: c.CenterY + c.Radius*math.Sin(theta),
		}
	}
	return pts
}
