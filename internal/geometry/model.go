package geometry

import "math"

const (
	defaultMinPointDistance  = 5.0
	defaultCloseDistance     = 20.0
	defaultSimplifyTolerance = 5.0
	defaultMinRadius         = 10.0
	defaultSnapDistance      = 10.0
)

// Limits are the numeric constraints the model enforces on mutation.
type Limits struct {
	// MinPointDistance is the spacing a freeform point must exceed relative to
	// the previous stroke point to be accepted.
	MinPointDistance float64
	// CloseDistance is the first/last point gap below which a stroke seals.
	CloseDistance float64
	// SimplifyTolerance is passed to Simplify when a stroke seals.
	SimplifyTolerance float64
	// MinRadius is the floor applied on every circle resize.
	MinRadius float64
	// SnapDistance pulls drawn points onto the frame border. Zero disables it.
	SnapDistance float64
}

// DefaultLimits returns the stock editor limits.
func DefaultLimits() Limits {
	return Limits{
		MinPointDistance:  defaultMinPointDistance,
		CloseDistance:     defaultCloseDistance,
		SimplifyTolerance: defaultSimplifyTolerance,
		MinRadius:         defaultMinRadius,
		SnapDistance:      defaultSnapDistance,
	}
}

func (l Limits) normalized() Limits {
	def := DefaultLimits()
	if l.MinPointDistance <= 0 {
		l.MinPointDistance = def.MinPointDistance
	}
	if l.CloseDistance <= 0 {
		l.CloseDistance = def.CloseDistance
	}
	if l.SimplifyTolerance <= 0 {
		l.SimplifyTolerance = def.SimplifyTolerance
	}
	if l.MinRadius <= 0 {
		l.MinRadius = def.MinRadius
	}
	if l.SnapDistance < 0 {
		l.SnapDistance = 0
	}
	return l
}

// Model is the single source of truth for one editing session.
type Model struct {
	Circle Circle
	Shapes []Shape
	Stroke []Point

	width  int
	height int
	limits Limits
}

// NewModel returns a model for a width x height frame with the default
// circle, no shapes and an empty stroke.
func NewModel(width, height int, limits Limits) *Model {
	return &Model{
		Circle: DefaultCircle(width, height),
		width:  width,
		height: height,
		limits: limits.normalized(),
	}
}

// Size returns the frame dimensions the model was created for.
func (m *Model) Size() (width, height int) {
	return m.width, m.height
}

// Snap pulls p onto the frame border when it lies within SnapDistance of an
// edge.
func (m *Model) Snap(p Point) Point {
	return Snap(p, m.width, m.height, m.limits.SnapDistance)
}

// Limits returns the constraints in effect.
func (m *Model) Limits() Limits {
	return m.limits
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	out := &Model{
		Circle: m.Circle,
		Stroke: append([]Point(nil), m.Stroke...),
		width:  m.width,
		height: m.height,
		limits: m.limits,
	}
	if len(m.Shapes) > 0 {
		out.Shapes = make([]Shape, len(m.Shapes))
		for i, s := range m.Shapes {
			out.Shapes[i] = s.Clone()
		}
	}
	return out
}

// SetCircle replaces the main circle, enforcing the minimum radius.
func (m *Model) SetCircle(c Circle) {
	c.Radius = math.Max(m.limits.MinRadius, c.Radius)
	m.Circle = c
}

// SetShapes replaces the shape list with copies of shapes.
func (m *Model) SetShapes(shapes []Shape) {
	m.Shapes = m.Shapes[:0]
	for _, s := range shapes {
		m.Shapes = append(m.Shapes, s.Clone())
	}
}

// MoveMainCircle translates the circle center.
func (m *Model) MoveMainCircle(dx, dy float64) {
	m.Circle.CenterX += dx
	m.Circle.CenterY += dy
}

// ResizeMainCircle adds delta to the radius without dropping below the
// minimum radius.
func (m *Model) ResizeMainCircle(delta float64) {
	m.Circle.Radius = math.Max(m.limits.MinRadius, m.Circle.Radius+delta)
}

// HasShape reports whether index addresses an existing shape.
func (m *Model) HasShape(index int) bool {
	return index >= 0 && index < len(m.Shapes)
}

// MoveShape translates every point of the shape at index. It reports false
// when index is out of range.
func (m *Model) MoveShape(index int, dx, dy float64) bool {
	if !m.HasShape(index) {
		return false
	}
	m.Shapes[index].translate(dx, dy)
	return true
}

// ResizeShape scales the shape at index about its centroid. A factor of
// exactly 1 leaves the points untouched.
func (m *Model) ResizeShape(index int, factor float64) bool {
	if !m.HasShape(index) {
		return false
	}
	if factor == 1 {
		return true
	}
	m.Shapes[index].scale(factor)
	return true
}

// DeleteShape removes the shape at index, shifting later shapes down. Out of
// range indexes are a no-op.
func (m *Model) DeleteShape(index int) bool {
	if !m.HasShape(index) {
		return false
	}
	m.Shapes = append(m.Shapes[:index], m.Shapes[index+1:]...)
	return true
}

// ClearAllShapes empties the shape list. The circle is untouched.
func (m *Model) ClearAllShapes() {
	m.Shapes = nil
}

// Drawing reports whether a stroke is in progress.
func (m *Model) Drawing() bool {
	return len(m.Stroke) > 0
}

// StartStroke discards any open stroke and begins a new one at p.
func (m *Model) StartStroke(p Point) {
	m.Stroke = append(m.Stroke[:0], p)
}

// AddStrokePoint appends p unconditionally (click-to-add mode).
func (m *Model) AddStrokePoint(p Point) {
	m.Stroke = append(m.Stroke, p)
}

// AppendStrokePoint appends p when it lies farther than MinPointDistance from
// the previous stroke point. It reports whether the point was accepted.
func (m *Model) AppendStrokePoint(p Point) bool {
	if n := len(m.Stroke); n > 0 && Distance(m.Stroke[n-1], p) <= m.limits.MinPointDistance {
		return false
	}
	m.Stroke = append(m.Stroke, p)
	return true
}

// TrySealStroke closes the stroke when it has at least two points and its
// endpoints are closer than CloseDistance. The sealed stroke is simplified,
// closed by repeating its first point and appended to Shapes. A ring left
// with fewer than three distinct vertices is not a shape: the stroke stays
// open so drawing can continue. It reports whether a shape was added.
func (m *Model) TrySealStroke() bool {
	if len(m.Stroke) < 2 {
		return false
	}
	first, last := m.Stroke[0], m.Stroke[len(m.Stroke)-1]
	if Distance(first, last) >= m.limits.CloseDistance {
		return false
	}
	points := Simplify(m.Stroke, m.limits.SimplifyTolerance)
	shape := Shape{Points: append(points, first), Closed: true}
	if !shape.Fillable() {
		return false
	}
	m.Shapes = append(m.Shapes, shape)
	m.Stroke = nil
	return true
}

// DiscardStroke drops the open stroke.
func (m *Model) DiscardStroke() {
	m.Stroke = nil
}
