package editor

import "fmt"

// Mode is the drawing state of the editor.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDrawing:
		return "drawing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SelectionKind distinguishes the selection variants.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectSingle
	SelectAll
)

// Selection addresses what keyboard commands act on. Index is meaningful
// only when Kind is SelectSingle.
type Selection struct {
	Kind  SelectionKind
	Index int
}

// NoSelection targets the main circle.
func NoSelection() Selection { return Selection{Kind: SelectNone} }

// SingleSelection targets the shape at index.
func SingleSelection(index int) Selection { return Selection{Kind: SelectSingle, Index: index} }

// AllSelection targets every shape.
func AllSelection() Selection { return Selection{Kind: SelectAll} }

// Includes reports whether the shape at index is part of the selection.
func (s Selection) Includes(index int) bool {
	switch s.Kind {
	case SelectAll:
		return true
	case SelectSingle:
		return s.Index == index
	default:
		return false
	}
}

func (s Selection) String() string {
	switch s.Kind {
	case SelectNone:
		return "none"
	case SelectSingle:
		return fmt.Sprintf("shape %d", s.Index)
	case SelectAll:
		return "all"
	default:
		return fmt.Sprintf("selection(%d)", int(s.Kind))
	}
}
