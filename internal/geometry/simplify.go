package geometry

// Simplify reduces a polyline in a single greedy pass. The first and last
// points are always kept; an interior point survives only when it lies at
// least tolerance away from the last kept point.
//
// This is lossy and order dependent. It bounds stroke density; it does not
// preserve shape the way Douglas-Peucker would.
func Simplify(points []Point, tolerance float64) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}
	out := make([]Point, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1 : len(points)-1] {
		if Distance(out[len(out)-1], p) >= tolerance {
			out = append(out, p)
		}
	}
	return append(out, points[len(points)-1])
}

// Snap pulls p onto the frame border when it lies within distance of an edge.
func Snap(p Point, width, height int, distance float64) Point {
	if distance <= 0 {
		return p
	}
	w, h := float64(width), float64(height)
	if p.X < distance {
		p.X = 0
	}
	if p.Y < distance {
		p.Y = 0
	}
	if p.X > w-distance {
		p.X = w
	}
	if p.Y > h-distance {
		p.Y = h
	}
	return p
}
