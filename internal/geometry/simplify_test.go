package geometry_test

import (
	"testing"

	"puppetmask/internal/geometry"
)

func TestSimplifyKeepsEndpoints(t *testing.T) {
	in := []geometry.Point{
		geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(2, 0), geometry.Pt(6, 0),
		geometry.Pt(7, 0), geometry.Pt(12, 0), geometry.Pt(13, 0),
	}
	got := geometry.Simplify(in, 5)
	want := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(6, 0), geometry.Pt(12, 0), geometry.Pt(13, 0)}
	if len(got) != len(want) {
		t.Fatalf("Simplify() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Simplify()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSimplifyShortInputCopies(t *testing.T) {
	in := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 1)}
	got := geometry.Simplify(in, 5)
	got[0] = geometry.Pt(5, 5)
	if in[0] != geometry.Pt(0, 0) {
		t.Fatal("Simplify should not alias its input")
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in   geometry.Point
		want geometry.Point
	}{
		{in: geometry.Pt(5, 50), want: geometry.Pt(0, 50)},
		{in: geometry.Pt(50, 3), want: geometry.Pt(50, 0)},
		{in: geometry.Pt(795, 595), want: geometry.Pt(800, 600)},
		{in: geometry.Pt(10, 10), want: geometry.Pt(10, 10)},
	}
	for _, tt := range tests {
		if got := geometry.Snap(tt.in, 800, 600, 10); got != tt.want {
			t.Errorf("Snap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShapeContains(t *testing.T) {
	tri := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(100, 0), geometry.Pt(0, 100), geometry.Pt(0, 0)},
		Closed: true,
	}
	if !tri.Contains(geometry.Pt(10, 10)) {
		t.Fatal("expected point inside triangle")
	}
	if tri.Contains(geometry.Pt(90, 90)) {
		t.Fatal("expected point outside triangle")
	}
	open := tri.Clone()
	open.Closed = false
	if open.Contains(geometry.Pt(10, 10)) {
		t.Fatal("open shapes never contain points")
	}
}

func TestFillable(t *testing.T) {
	degenerate := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(0, 0)},
		Closed: true,
	}
	if degenerate.Fillable() {
		t.Fatal("two distinct vertices must not be fillable")
	}
	tri := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(0, 10), geometry.Pt(0, 0)},
		Closed: true,
	}
	if !tri.Fillable() {
		t.Fatal("triangle should be fillable")
	}
}
