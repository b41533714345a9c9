package raster

import "puppetmask/internal/geometry"

type edge int

const (
	edgeLeft edge = iota
	edgeRight
	edgeTop
	edgeBottom
)

// clipPolygon clips a closed polygon to the rectangle [0,w]x[0,h] using
// Sutherland-Hodgman. The input must not repeat its first vertex.
func clipPolygon(pts []geometry.Point, w, h float64) []geometry.Point {
	out := pts
	for _, e := range []edge{edgeLeft, edgeRight, edgeTop, edgeBottom} {
		if len(out) == 0 {
			return nil
		}
		out = clipEdge(out, e, w, h)
	}
	return out
}

func clipEdge(pts []geometry.Point, e edge, w, h float64) []geometry.Point {
	out := make([]geometry.Point, 0, len(pts)+4)
	prev := pts[len(pts)-1]
	prevIn := inside(prev, e, w, h)
	for _, cur := range pts {
		curIn := inside(cur, e, w, h)
		switch {
		case curIn && prevIn:
			out = append(out, cur)
		case curIn && !prevIn:
			out = append(out, intersect(prev, cur, e, w, h), cur)
		case !curIn && prevIn:
			out = append(out, intersect(prev, cur, e, w, h))
		}
		prev, prevIn = cur, curIn
	}
	return out
}

func inside(p geometry.Point, e edge, w, h float64) bool {
	switch e {
	case edgeLeft:
		return p.X >= 0
	case edgeRight:
		return p.X <= w
	case edgeTop:
		return p.Y >= 0
	default:
		return p.Y <= h
	}
}

func intersect(a, b geometry.Point, e edge, w, h float64) geometry.Point {
	switch e {
	case edgeLeft, edgeRight:
		x := 0.0
		if e == edgeRight {
			x = w
		}
		t := (x - a.X) / (b.X - a.X)
		return geometry.Point{X: x, Y: a.Y + t*(b.Y-a.Y)}
	default:
		y := 0.0
		if e == edgeBottom {
			y = h
		}
		t := (y - a.Y) / (b.Y - a.Y)
		return geometry.Point{X: a.X + t*(b.X-a.X), Y: y}
	}
}
