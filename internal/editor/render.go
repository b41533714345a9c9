package editor

import (
	"image/color"

	"puppetmask/internal/geometry"
)

// Snapshot is an immutable view of editor state.
type Snapshot struct {
	Model       *geometry.Model
	Mode        Mode
	Selection   Selection
	Transparent bool
}

// CommandKind identifies a display primitive.
type CommandKind int

const (
	DrawFrame CommandKind = iota
	DrawCircle
	DrawPolygon
	DrawStroke
)

// Command is a single display instruction. Layer opacity applies to every
// overlay command; the frame is always drawn opaque.
type Command struct {
	Kind        CommandKind
	Width       int
	Height      int
	Circle      geometry.Circle
	Points      []geometry.Point
	Closed      bool
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Opacity     float64
	// ShapeIndex addresses the shape for DrawPolygon and is -1 otherwise.
	ShapeIndex int
}

var (
	ColorSelected    = color.NRGBA{R: 255, G: 255, A: 255}
	ColorUnselected  = color.NRGBA{B: 255, A: 255}
	ColorStroke      = color.NRGBA{R: 255, A: 255}
	ColorFillOpaque  = color.NRGBA{A: 255}
	ColorFillOverlay = color.NRGBA{B: 255, A: 77}
)

const (
	outlineWidth       = 2.0
	translucentOpacity = 0.5
)

// Render projects a snapshot into display commands: the frame, the main
// circle, every shape in list order and the in-progress stroke. It holds no
// state and may be called after every event.
func Render(s Snapshot) []Command {
	if s.Model == nil {
		return nil
	}
	width, height := s.Model.Size()
	opacity := 1.0
	fill := ColorFillOpaque
	if s.Transparent {
		opacity = translucentOpacity
		fill = ColorFillOverlay
	}

	cmds := make([]Command, 0, len(s.Model.Shapes)+3)
	cmds = append(cmds, Command{Kind: DrawFrame, Width: width, Height: height, Opacity: 1, ShapeIndex: -1})

	circleStroke := ColorUnselected
	if s.Selection.Kind == SelectNone {
		circleStroke = ColorSelected
	}
	cmds = append(cmds, Command{
		Kind:        DrawCircle,
		Circle:      s.Model.Circle,
		Fill:        fill,
		Stroke:      circleStroke,
		StrokeWidth: outlineWidth,
		Opacity:     opacity,
		ShapeIndex:  -1,
	})

	for i, shape := range s.Model.Shapes {
		stroke := ColorUnselected
		if s.Selection.Includes(i) {
			stroke = ColorSelected
		}
		cmd := Command{
			Kind:        DrawPolygon,
			Points:      append([]geometry.Point(nil), shape.Points...),
			Closed:      shape.Closed,
			Stroke:      stroke,
			StrokeWidth: outlineWidth,
			Opacity:     opacity,
			ShapeIndex:  i,
		}
		if shape.Closed {
			cmd.Fill = fill
		}
		cmds = append(cmds, cmd)
	}

	if len(s.Model.Stroke) > 0 {
		cmds = append(cmds, Command{
			Kind:        DrawStroke,
			Points:      append([]geometry.Point(nil), s.Model.Stroke...),
			Stroke:      ColorStroke,
			StrokeWidth: outlineWidth,
			Opacity:     opacity,
			ShapeIndex:  -1,
		})
	}
	return cmds
}
