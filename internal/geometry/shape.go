package geometry

// Shape is a polygon. Closed shapes repeat their first vertex as the last
// point of the list (ring closure).
type Shape struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed"`
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{Points: append([]Point(nil), s.Points...), Closed: s.Closed}
}

// Centroid returns the arithmetic mean of every stored point. For closed
// shapes the ring-closure duplicate is part of the mean, which biases the
// result slightly toward the first vertex.
func (s Shape) Centroid() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	var sumX, sumY float64
	for _, p := range s.Points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(s.Points))
	return Point{X: sumX / n, Y: sumY / n}
}

// Vertices returns the points without the ring-closure duplicate.
func (s Shape) Vertices() []Point {
	pts := s.Points
	if s.Closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// DistinctVertices counts unique vertex positions, ignoring ring closure.
func (s Shape) DistinctVertices() int {
	verts := s.Vertices()
	if len(verts) == 0 {
		return 0
	}
	seen := make(map[Point]struct{}, len(verts))
	for _, p := range verts {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// Fillable reports whether the rasterizer can fill the shape: it must be
// closed and carry at least three distinct vertices.
func (s Shape) Fillable() bool {
	return s.Closed && s.DistinctVertices() >= 3
}

// Contains reports whether p lies inside the polygon using the even-odd rule.
// Open shapes never contain a point.
func (s Shape) Contains(p Point) bool {
	if !s.Closed {
		return false
	}
	verts := s.Vertices()
	if len(verts) < 3 {
		return false
	}
	inside := false
	j := len(verts) - 1
	for i := range verts {
		a, b := verts[i], verts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

func (s *Shape) translate(dx, dy float64) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(dx, dy)
	}
}

func (s *Shape) scale(factor float64) {
	c := s.Centroid()
	for i, p := range s.Points {
		s.Points[i] = Point{
			X: c.X + (p.X-c.X)*factor,
			Y: c.Y + (p.Y-c.Y)*factor,
		}
	}
}
