package reconstruct

import (
	"math"
	"sort"

	"puppetmask/internal/geometry"
)

var (
	neighbors4 = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	neighbors8 = [8][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// extractShapes traces foreground components that lie outside circle and
// turns the large ones into closed polygons.
func extractShapes(fg []bool, width, height int, circle geometry.Circle, opts Options) []geometry.Shape {
	diff := make([]bool, len(fg))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !fg[i] {
				continue
			}
			if math.Hypot(float64(x)+0.5-circle.CenterX, float64(y)+0.5-circle.CenterY) > circle.Radius {
				diff[i] = true
			}
		}
	}

	minArea := float64(width*height) * opts.MinAreaFraction
	visited := make([]bool, len(diff))
	var shapes []geometry.Shape
	for y := 0; y < height; y += opts.SampleStep {
		for x := 0; x < width; x += opts.SampleStep {
			i := y*width + x
			if !diff[i] || visited[i] {
				continue
			}
			boundary := traceComponent(diff, visited, width, height, x, y)
			if len(boundary) <= opts.MinBoundaryPoints {
				continue
			}
			if boundingArea(boundary) <= minArea {
				continue
			}
			if shape, ok := boundaryShape(boundary, opts.BoundarySampleStep); ok {
				shapes = append(shapes, shape)
			}
		}
	}
	return shapes
}

// traceComponent flood fills the 4-connected component containing (sx, sy)
// with an explicit queue and returns the pixels that touch background or the
// frame edge in any of their 8 neighbors.
func traceComponent(diff, visited []bool, width, height, sx, sy int) []geometry.Point {
	queue := []int{sy*width + sx}
	visited[sy*width+sx] = true
	var boundary []geometry.Point
	for head := 0; head < len(queue); head++ {
		i := queue[head]
		x, y := i%width, i/width
		if isBoundary(diff, width, height, x, y) {
			boundary = append(boundary, geometry.Pt(float64(x), float64(y)))
		}
		for _, d := range neighbors4 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			n := ny*width + nx
			if diff[n] && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return boundary
}

func isBoundary(diff []bool, width, height, x, y int) bool {
	for _, d := range neighbors8 {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= width || ny < 0 || ny >= height {
			return true
		}
		if !diff[ny*width+nx] {
			return true
		}
	}
	return false
}

func boundingArea(pts []geometry.Point) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return (maxX - minX) * (maxY - minY)
}

// boundaryShape orders boundary pixels by angle around their centroid so the
// polygon follows the outline, keeps every step-th point and closes the
// ring. Fewer than three kept points yield no shape.
func boundaryShape(boundary []geometry.Point, step int) (geometry.Shape, bool) {
	center := geometry.Shape{Points: boundary}.Centroid()
	ordered := append([]geometry.Point(nil), boundary...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ai := math.Atan2(ordered[i].Y-center.Y, ordered[i].X-center.X)
		aj := math.Atan2(ordered[j].Y-center.Y, ordered[j].X-center.X)
		return ai < aj
	})

	var pts []geometry.Point
	for i := 0; i < len(ordered); i += step {
		pts = append(pts, ordered[i])
	}
	if len(pts) < 3 {
		return geometry.Shape{}, false
	}
	pts = append(pts, pts[0])
	return geometry.Shape{Points: pts, Closed: true}, true
}
