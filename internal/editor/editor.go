package editor

import (
	"log/slog"
	"sync/atomic"

	"puppetmask/internal/geometry"
	"puppetmask/internal/logging"
)

const (
	defaultMoveStep   = 5.0
	defaultRadiusStep = 5.0
	defaultScaleStep  = 0.05
)

// Options sets the keyboard step sizes.
type Options struct {
	MoveStep   float64
	RadiusStep float64
	ScaleStep  float64
}

func (o Options) normalized() Options {
	if o.MoveStep <= 0 {
		o.MoveStep = defaultMoveStep
	}
	if o.RadiusStep <= 0 {
		o.RadiusStep = defaultRadiusStep
	}
	if o.ScaleStep <= 0 {
		o.ScaleStep = defaultScaleStep
	}
	return o
}

// Editor dispatches input events to a geometry model.
type Editor struct {
	model       *geometry.Model
	opts        Options
	logger      *slog.Logger
	mode        Mode
	selection   Selection
	transparent bool
	// closed is set from whichever goroutine tears the session down while
	// events may still be dispatched.
	closed atomic.Bool
}

// New returns an idle editor over model with nothing selected and the
// translucent display enabled.
func New(model *geometry.Model, opts Options, logger *slog.Logger) *Editor {
	return &Editor{
		model:       model,
		opts:        opts.normalized(),
		logger:      logging.NewComponentLogger(logger, "editor"),
		mode:        ModeIdle,
		selection:   NoSelection(),
		transparent: true,
	}
}

// Model returns the live model. Callers must not mutate it concurrently with
// Handle.
func (e *Editor) Model() *geometry.Model { return e.model }

// Mode reports the drawing state.
func (e *Editor) Mode() Mode { return e.mode }

// Selection reports the current selection.
func (e *Editor) Selection() Selection { return e.selection }

// Transparent reports whether the overlay renders translucent.
func (e *Editor) Transparent() bool { return e.transparent }

// Closed reports whether Close has been called.
func (e *Editor) Closed() bool { return e.closed.Load() }

// Close stops input handling. Later events are ignored. It is safe to call
// concurrently with Handle.
func (e *Editor) Close() { e.closed.Store(true) }

// Snapshot captures a deep copy of the state for rendering.
func (e *Editor) Snapshot() Snapshot {
	return Snapshot{
		Model:       e.model.Clone(),
		Mode:        e.mode,
		Selection:   e.selection,
		Transparent: e.transparent,
	}
}

// Handle applies one event and reports whether any state changed. Save
// actions are not handled here; the owning session performs the save.
func (e *Editor) Handle(ev Event) bool {
	if e.closed.Load() {
		return false
	}
	switch ev.Kind {
	case PointerDown:
		return e.pointerDown(ev.Point)
	case PointerMove:
		return e.pointerMove(ev.Point)
	case PointerUp:
		return e.pointerUp()
	case Click:
		return e.click(ev.Point)
	case KeyPress:
		return e.key(ev)
	case SelectAllAction:
		return e.setSelection(AllSelection())
	case ClearAllAction:
		return e.clearAll()
	default:
		return false
	}
}

// HandleAll applies events in order and returns how many changed state.
func (e *Editor) HandleAll(events []Event) int {
	changed := 0
	for _, ev := range events {
		if e.Handle(ev) {
			changed++
		}
	}
	return changed
}

func (e *Editor) pointerDown(p geometry.Point) bool {
	if e.mode == ModeDrawing {
		e.model.AddStrokePoint(e.model.Snap(p))
		return true
	}
	e.model.StartStroke(p)
	e.mode = ModeDrawing
	e.selection = NoSelection()
	return true
}

func (e *Editor) pointerMove(p geometry.Point) bool {
	if e.mode != ModeDrawing {
		return false
	}
	return e.model.AppendStrokePoint(e.model.Snap(p))
}

func (e *Editor) pointerUp() bool {
	if e.mode != ModeDrawing {
		return false
	}
	points := len(e.model.Stroke)
	if !e.model.TrySealStroke() {
		return false
	}
	e.mode = ModeIdle
	e.logger.Debug("stroke sealed",
		logging.Int("stroke_points", points),
		logging.Int("shape_index", len(e.model.Shapes)-1),
		logging.Int("shape_points", len(e.model.Shapes[len(e.model.Shapes)-1].Points)),
	)
	return true
}

// click hit-tests shapes topmost first, then the main circle.
func (e *Editor) click(p geometry.Point) bool {
	for i := len(e.model.Shapes) - 1; i >= 0; i-- {
		if !e.model.Shapes[i].Contains(p) {
			continue
		}
		e.model.DiscardStroke()
		e.mode = ModeIdle
		e.selection = SingleSelection(i)
		return true
	}
	if e.model.Circle.Contains(p) {
		return e.setSelection(NoSelection())
	}
	return false
}

func (e *Editor) key(ev Event) bool {
	if w, h := e.model.Size(); w <= 0 || h <= 0 {
		return false
	}
	if ev.isSelectAllCombo() {
		return e.setSelection(AllSelection())
	}
	step := e.opts.MoveStep
	switch ev.Key {
	case KeyArrowUp:
		return e.move(0, -step)
	case KeyArrowDown:
		return e.move(0, step)
	case KeyArrowLeft:
		return e.move(-step, 0)
	case KeyArrowRight:
		return e.move(step, 0)
	case "+", "=":
		return e.resize(e.opts.RadiusStep, 1+e.opts.ScaleStep)
	case "-":
		return e.resize(-e.opts.RadiusStep, 1-e.opts.ScaleStep)
	case "T", "t":
		e.transparent = !e.transparent
		return true
	case KeyEscape:
		if e.mode == ModeDrawing {
			e.model.DiscardStroke()
			e.mode = ModeIdle
			return true
		}
		return e.setSelection(NoSelection())
	case KeyDelete, KeyBackspace:
		return e.deleteSelection()
	default:
		return false
	}
}

// move translates the circle or the single selected shape. A select-all
// selection is not a move target.
func (e *Editor) move(dx, dy float64) bool {
	switch e.selection.Kind {
	case SelectNone:
		e.model.MoveMainCircle(dx, dy)
		return true
	case SelectSingle:
		return e.model.MoveShape(e.selection.Index, dx, dy)
	default:
		return false
	}
}

func (e *Editor) resize(radiusDelta, factor float64) bool {
	switch e.selection.Kind {
	case SelectNone:
		before := e.model.Circle.Radius
		e.model.ResizeMainCircle(radiusDelta)
		return e.model.Circle.Radius != before
	case SelectSingle:
		return e.model.ResizeShape(e.selection.Index, factor)
	default:
		return false
	}
}

func (e *Editor) deleteSelection() bool {
	switch e.selection.Kind {
	case SelectAll:
		return e.clearAll()
	case SelectSingle:
		index := e.selection.Index
		if !e.model.DeleteShape(index) {
			return false
		}
		e.selection = NoSelection()
		e.logger.Debug("shape deleted", logging.Int("shape_index", index), logging.Int("remaining", len(e.model.Shapes)))
		return true
	default:
		return false
	}
}

func (e *Editor) clearAll() bool {
	removed := len(e.model.Shapes)
	e.model.ClearAllShapes()
	e.selection = NoSelection()
	if removed > 0 {
		e.logger.Debug("shapes cleared", logging.Int("removed", removed))
	}
	return true
}

func (e *Editor) setSelection(s Selection) bool {
	if e.selection == s {
		return false
	}
	e.selection = s
	return true
}
