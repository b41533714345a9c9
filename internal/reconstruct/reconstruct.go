package reconstruct

import (
	"bytes"
	"image"
	_ "image/png"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"

	// Masks are written as PNG; these cover masks uploaded by hand.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"puppetmask/internal/geometry"
	"puppetmask/internal/logging"
	"puppetmask/internal/services"
)

const (
	defaultSampleStep         = 10
	defaultRadius             = 100.0
	defaultMinBoundaryPoints  = 25
	defaultMinAreaFraction    = 0.01
	defaultBoundarySampleStep = 20

	// The mean distance from the center of a uniform disk to its points is
	// two thirds of its radius.
	diskMeanToRadius = 1.5
)

// Options tune reconstruction.
type Options struct {
	ExtractShapes      bool
	SampleStep         int
	MinBoundaryPoints  int
	MinAreaFraction    float64
	BoundarySampleStep int
}

// DefaultOptions returns the stock settings with shape extraction disabled.
func DefaultOptions() Options {
	return Options{
		SampleStep:         defaultSampleStep,
		MinBoundaryPoints:  defaultMinBoundaryPoints,
		MinAreaFraction:    defaultMinAreaFraction,
		BoundarySampleStep: defaultBoundarySampleStep,
	}
}

func (o Options) normalized() Options {
	if o.SampleStep < 1 {
		o.SampleStep = defaultSampleStep
	}
	if o.BoundarySampleStep < 1 {
		o.BoundarySampleStep = defaultBoundarySampleStep
	}
	if o.MinBoundaryPoints < 0 {
		o.MinBoundaryPoints = 0
	}
	if o.MinAreaFraction < 0 {
		o.MinAreaFraction = 0
	}
	return o
}

// Result is the recovered geometry. Found is false when the mask was absent,
// undecodable or had no foreground; Circle then holds the frame default.
type Result struct {
	Circle     geometry.Circle
	Shapes     []geometry.Shape
	Found      bool
	Foreground int
	Samples    int
	// Err is set when the mask could not be decoded. It wraps
	// services.ErrMaskLoad and is informational only.
	Err error
}

// FromBytes decodes data and reconstructs geometry for a width x height
// frame. Empty data means there is no prior mask.
func FromBytes(data []byte, width, height int, opts Options, logger *slog.Logger) Result {
	logger = logging.NewComponentLogger(logger, "reconstruct")
	if len(data) == 0 {
		return defaults(width, height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		res := defaults(width, height)
		res.Err = services.Wrap(services.ErrMaskLoad, "reconstruct", "decode mask", "", err)
		logging.WarnWithContext(logger, "existing mask undecodable; using default geometry", "mask_load_failed",
			logging.Error(err),
			logging.Int("bytes", len(data)),
			logging.String(logging.FieldErrorHint, "re-save the mask from the editor"),
			logging.String(logging.FieldImpact, "editing starts from the default circle"),
		)
		return res
	}
	logger.Debug("mask decoded", logging.String("format", format), logging.Int("width", img.Bounds().Dx()), logging.Int("height", img.Bounds().Dy()))
	return Reconstruct(img, width, height, opts, logger)
}

// Reconstruct estimates the main circle, and optionally auxiliary shapes,
// from mask. A mask of a different size is rescaled to the frame first.
func Reconstruct(mask image.Image, width, height int, opts Options, logger *slog.Logger) Result {
	logger = logging.NewComponentLogger(logger, "reconstruct")
	opts = opts.normalized()
	if mask == nil || width <= 0 || height <= 0 {
		return defaults(width, height)
	}
	if b := mask.Bounds(); b.Dx() != width || b.Dy() != height {
		logger.Debug("mask rescaled to frame",
			logging.Int("mask_width", b.Dx()),
			logging.Int("mask_height", b.Dy()),
			logging.Int("frame_width", width),
			logging.Int("frame_height", height),
		)
		mask = imaging.Resize(mask, width, height, imaging.NearestNeighbor)
	}

	fg, count := classify(mask)
	if count == 0 {
		logger.Info("mask restore decision", logging.Args(logging.DecisionAttrs("mask_restore", "defaults", "mask has no foreground pixels")...)...)
		return defaults(width, height)
	}

	center := centroid(fg, width, height, count)
	radius, samples := estimateRadius(fg, width, height, center, opts.SampleStep)

	res := Result{
		Circle:     geometry.Circle{CenterX: center.X, CenterY: center.Y, Radius: radius},
		Found:      true,
		Foreground: count,
		Samples:    samples,
	}
	if opts.ExtractShapes {
		res.Shapes = extractShapes(fg, width, height, res.Circle, opts)
	}
	logger.Info("geometry reconstructed",
		logging.Float64("center_x", res.Circle.CenterX),
		logging.Float64("center_y", res.Circle.CenterY),
		logging.Float64("radius", res.Circle.Radius),
		logging.Int("foreground_pixels", count),
		logging.Int("radius_samples", samples),
		logging.Int("shapes", len(res.Shapes)),
	)
	return res
}

func defaults(width, height int) Result {
	return Result{Circle: geometry.DefaultCircle(width, height)}
}

// classify marks pure black, non-transparent pixels as foreground. The
// returned slice is indexed y*width+x relative to the image origin.
func classify(img image.Image) ([]bool, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	fg := make([]bool, w*h)
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a != 0 && r == 0 && g == 0 && bl == 0 {
				fg[y*w+x] = true
				count++
			}
		}
	}
	return fg, count
}

// centroid averages foreground pixel centers.
func centroid(fg []bool, width, height, count int) geometry.Point {
	var sumX, sumY float64
	for y := 0; y < height; y++ {
		row := fg[y*width : (y+1)*width]
		for x, on := range row {
			if on {
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}
	n := float64(count)
	return geometry.Point{X: sumX/n + 0.5, Y: sumY/n + 0.5}
}

// estimateRadius samples foreground pixels on a step x step grid and converts
// their mean distance from center into a disk radius.
func estimateRadius(fg []bool, width, height int, center geometry.Point, step int) (float64, int) {
	var dists []float64
	for y := 0; y < height; y += step {
		for x := 0; x < width; x += step {
			if !fg[y*width+x] {
				continue
			}
			dists = append(dists, math.Hypot(float64(x)+0.5-center.X, float64(y)+0.5-center.Y))
		}
	}
	if len(dists) == 0 {
		return defaultRadius, 0
	}
	return stat.Mean(dists, nil) * diskMeanToRadius, len(dists)
}
