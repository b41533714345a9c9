package editor

import (
	"fmt"
	"strings"

	"puppetmask/internal/geometry"
)

// EventKind enumerates the inputs the editor reacts to.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	Click
	KeyPress
	SelectAllAction
	ClearAllAction
	SaveAction
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointer_down"
	case PointerMove:
		return "pointer_move"
	case PointerUp:
		return "pointer_up"
	case Click:
		return "click"
	case KeyPress:
		return "key"
	case SelectAllAction:
		return "select_all"
	case ClearAllAction:
		return "clear_all"
	case SaveAction:
		return "save"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Key names understood by the editor. Single characters are matched as typed.
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyEscape     = "Escape"
	KeyDelete     = "Delete"
	KeyBackspace  = "Backspace"
)

// Event is one discrete input. Point is set for pointer and click events;
// Key, Ctrl and Meta for key presses.
type Event struct {
	Kind  EventKind
	Point geometry.Point
	Key   string
	Ctrl  bool
	Meta  bool
}

// Down, Move, Up, ClickAt and Key build events for scripts and tests.
func Down(x, y float64) Event { return Event{Kind: PointerDown, Point: geometry.Pt(x, y)} }
func Move(x, y float64) Event { return Event{Kind: PointerMove, Point: geometry.Pt(x, y)} }
func Up() Event { return Event{Kind: PointerUp} }
func ClickAt(x, y float64) Event { return Event{Kind: Click, Point: geometry.Pt(x, y)} }
func Key(name string) Event { return Event{Kind: KeyPress, Key: name} }

func (e Event) String() string {
	switch e.Kind {
	case PointerDown, PointerMove, Click:
		return fmt.Sprintf("%s(%g,%g)", e.Kind, e.Point.X, e.Point.Y)
	case KeyPress:
		var mods []string
		if e.Ctrl {
			mods = append(mods, "ctrl")
		}
		if e.Meta {
			mods = append(mods, "meta")
		}
		return fmt.Sprintf("key(%s)", strings.Join(append(mods, e.Key), "+"))
	default:
		return e.Kind.String()
	}
}

func (e Event) isSelectAllCombo() bool {
	return (e.Ctrl || e.Meta) && strings.EqualFold(e.Key, "a")
}
