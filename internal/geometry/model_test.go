package geometry_test

import (
	"math"
	"testing"

	"puppetmask/internal/geometry"
)

func newModel() *geometry.Model {
	return geometry.NewModel(800, 600, geometry.DefaultLimits())
}

func TestNewModelDefaultCircle(t *testing.T) {
	m := newModel()
	want := geometry.Circle{CenterX: 400, CenterY: 300, Radius: 150}
	if m.Circle != want {
		t.Fatalf("default circle = %+v, want %+v", m.Circle, want)
	}
	if len(m.Shapes) != 0 || len(m.Stroke) != 0 {
		t.Fatalf("expected empty shapes and stroke, got %d/%d", len(m.Shapes), len(m.Stroke))
	}
}

func TestNewModelNormalizesLimits(t *testing.T) {
	m := geometry.NewModel(100, 100, geometry.Limits{})
	limits := m.Limits()
	if limits.MinRadius != 10 || limits.CloseDistance != 20 || limits.MinPointDistance != 5 {
		t.Fatalf("unexpected limits %+v", limits)
	}
	if limits.SnapDistance != 0 {
		t.Fatalf("zero snap distance should stay disabled, got %v", limits.SnapDistance)
	}
}

func TestResizeMainCircleEnforcesMinimum(t *testing.T) {
	m := newModel()
	m.ResizeMainCircle(-1000)
	if m.Circle.Radius != 10 {
		t.Fatalf("radius = %v, want 10", m.Circle.Radius)
	}
	m.ResizeMainCircle(5)
	if m.Circle.Radius != 15 {
		t.Fatalf("radius = %v, want 15", m.Circle.Radius)
	}
}

func TestMoveMainCircleIsNotClamped(t *testing.T) {
	m := newModel()
	m.MoveMainCircle(-1000, 2000)
	if m.Circle.CenterX != -600 || m.Circle.CenterY != 2300 {
		t.Fatalf("unexpected center %+v", m.Circle)
	}
}

func TestSealFourPointStroke(t *testing.T) {
	m := newModel()
	m.StartStroke(geometry.Pt(10, 10))
	for _, p := range []geometry.Point{geometry.Pt(10, 200), geometry.Pt(200, 200), geometry.Pt(15, 15)} {
		if !m.AppendStrokePoint(p) {
			t.Fatalf("point %+v rejected", p)
		}
	}
	if !m.TrySealStroke() {
		t.Fatal("expected stroke to seal")
	}
	if len(m.Stroke) != 0 {
		t.Fatalf("stroke not reset: %v", m.Stroke)
	}
	if len(m.Shapes) != 1 {
		t.Fatalf("expected one shape, got %d", len(m.Shapes))
	}
	shape := m.Shapes[0]
	if !shape.Closed {
		t.Fatal("shape should be closed")
	}
	if len(shape.Points) != 5 {
		t.Fatalf("expected 5 points, got %d: %v", len(shape.Points), shape.Points)
	}
	if shape.Points[0] != shape.Points[4] {
		t.Fatalf("ring not closed: first %v last %v", shape.Points[0], shape.Points[4])
	}
}

func TestTrySealStrokeThresholds(t *testing.T) {
	tests := []struct {
		name   string
		points []geometry.Point
		sealed bool
	}{
		{name: "single point", points: []geometry.Point{geometry.Pt(0, 0)}, sealed: false},
		{name: "two close points", points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0)}, sealed: false},
		{name: "three point ring", points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(60, 0), geometry.Pt(0, 60), geometry.Pt(5, 5)}, sealed: true},
		{name: "degenerate after simplify", points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(3, 0), geometry.Pt(6, 0)}, sealed: false},
		{name: "exactly at threshold", points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(100, 0), geometry.Pt(20, 0)}, sealed: false},
		{name: "far endpoint", points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(100, 100)}, sealed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel()
			m.StartStroke(tt.points[0])
			for _, p := range tt.points[1:] {
				m.AddStrokePoint(p)
			}
			if got := m.TrySealStroke(); got != tt.sealed {
				t.Fatalf("TrySealStroke() = %v, want %v", got, tt.sealed)
			}
			if !tt.sealed && len(m.Stroke) != len(tt.points) {
				t.Fatalf("open stroke modified: %v", m.Stroke)
			}
			if tt.sealed {
				pts := m.Shapes[0].Points
				if pts[0] != pts[len(pts)-1] {
					t.Fatalf("ring not closed: %v", pts)
				}
				if !m.Shapes[0].Fillable() {
					t.Fatalf("sealed shape has too few vertices: %v", pts)
				}
			} else if len(m.Shapes) != 0 {
				t.Fatalf("unexpected shape added: %v", m.Shapes)
			}
		})
	}
}

func TestAppendStrokePointFiltersDensity(t *testing.T) {
	m := newModel()
	m.StartStroke(geometry.Pt(0, 0))
	if m.AppendStrokePoint(geometry.Pt(3, 4)) {
		t.Fatal("point at exactly 5px should be rejected")
	}
	if !m.AppendStrokePoint(geometry.Pt(6, 0)) {
		t.Fatal("point beyond 5px should be accepted")
	}
	if len(m.Stroke) != 2 {
		t.Fatalf("stroke length = %d, want 2", len(m.Stroke))
	}
}

func TestResizeShapeUnitScaleIsIdentity(t *testing.T) {
	m := newModel()
	m.Shapes = []geometry.Shape{{
		Points: []geometry.Point{geometry.Pt(0.1, 0.2), geometry.Pt(10.3, 0.7), geometry.Pt(5.9, 9.1), geometry.Pt(0.1, 0.2)},
		Closed: true,
	}}
	before := m.Shapes[0].Clone()
	if !m.ResizeShape(0, 1.0) {
		t.Fatal("resize reported out of range")
	}
	for i, p := range m.Shapes[0].Points {
		if p != before.Points[i] {
			t.Fatalf("point %d changed: %v -> %v", i, before.Points[i], p)
		}
	}
}

func TestResizeShapeScalesAboutCentroid(t *testing.T) {
	m := newModel()
	m.Shapes = []geometry.Shape{{
		Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(10, 10), geometry.Pt(0, 10)},
		Closed: true,
	}}
	m.ResizeShape(0, 2)
	want := []geometry.Point{geometry.Pt(-5, -5), geometry.Pt(15, -5), geometry.Pt(15, 15), geometry.Pt(-5, 15)}
	for i, p := range m.Shapes[0].Points {
		if math.Abs(p.X-want[i].X) > 1e-9 || math.Abs(p.Y-want[i].Y) > 1e-9 {
			t.Fatalf("point %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestCentroidIncludesRingDuplicate(t *testing.T) {
	s := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(9, 0), geometry.Pt(0, 9), geometry.Pt(0, 0)},
		Closed: true,
	}
	c := s.Centroid()
	if c.X != 2.25 || c.Y != 2.25 {
		t.Fatalf("centroid = %v, want (2.25, 2.25)", c)
	}
}

func TestDeleteShapeTwiceIsNoop(t *testing.T) {
	m := newModel()
	m.Shapes = []geometry.Shape{{Points: []geometry.Point{geometry.Pt(0, 0)}, Closed: true}}
	if !m.DeleteShape(0) {
		t.Fatal("first delete should succeed")
	}
	if m.DeleteShape(0) {
		t.Fatal("second delete should be a no-op")
	}
	if m.DeleteShape(-1) {
		t.Fatal("negative index should be a no-op")
	}
}

func TestDeleteShapeShiftsIndices(t *testing.T) {
	m := newModel()
	for i := range 3 {
		x := float64(i * 100)
		m.Shapes = append(m.Shapes, geometry.Shape{Points: []geometry.Point{geometry.Pt(x, 0)}, Closed: true})
	}
	m.DeleteShape(1)
	if len(m.Shapes) != 2 || m.Shapes[1].Points[0].X != 200 {
		t.Fatalf("unexpected shapes after delete: %+v", m.Shapes)
	}
}

func TestClearAllShapesKeepsCircle(t *testing.T) {
	m := newModel()
	m.MoveMainCircle(5, 5)
	m.Shapes = []geometry.Shape{{Closed: true}, {Closed: true}}
	m.ClearAllShapes()
	if len(m.Shapes) != 0 {
		t.Fatalf("shapes not cleared: %d", len(m.Shapes))
	}
	if m.Circle.CenterX != 405 {
		t.Fatalf("circle changed: %+v", m.Circle)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := newModel()
	m.Shapes = []geometry.Shape{{Points: []geometry.Point{geometry.Pt(1, 1)}, Closed: true}}
	m.StartStroke(geometry.Pt(2, 2))
	c := m.Clone()
	c.Shapes[0].Points[0] = geometry.Pt(9, 9)
	c.Stroke[0] = geometry.Pt(9, 9)
	if m.Shapes[0].Points[0] != geometry.Pt(1, 1) || m.Stroke[0] != geometry.Pt(2, 2) {
		t.Fatal("clone shares backing arrays with original")
	}
}
