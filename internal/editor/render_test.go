package editor_test

import (
	"testing"

	"puppetmask/internal/editor"
	"puppetmask/internal/geometry"
)

func TestRenderProjectsState(t *testing.T) {
	e := newEditor(t)
	e.Model().Shapes = []geometry.Shape{triangle(0, 0), triangle(300, 300)}
	e.Handle(editor.ClickAt(310, 310))
	e.Handle(editor.Down(600, 100))

	cmds := editor.Render(e.Snapshot())
	if len(cmds) != 5 {
		t.Fatalf("expected frame, circle, 2 shapes and stroke; got %d commands", len(cmds))
	}
	if cmds[0].Kind != editor.DrawFrame || cmds[0].Width != 800 || cmds[0].Height != 600 {
		t.Fatalf("unexpected frame command %+v", cmds[0])
	}
	if cmds[1].Kind != editor.DrawCircle || cmds[1].Stroke != editor.ColorSelected {
		t.Fatalf("pointer down clears selection so the circle is highlighted: %+v", cmds[1])
	}
	for _, cmd := range cmds[2:4] {
		if cmd.Kind != editor.DrawPolygon || cmd.Stroke != editor.ColorUnselected {
			t.Fatalf("unexpected shape command %+v", cmd)
		}
		if cmd.Fill != editor.ColorFillOverlay || cmd.Opacity != 0.5 {
			t.Fatalf("expected translucent fill, got %+v", cmd)
		}
	}
	if cmds[4].Kind != editor.DrawStroke || cmds[4].Stroke != editor.ColorStroke {
		t.Fatalf("unexpected stroke command %+v", cmds[4])
	}
}

func TestRenderSelectionAndOpaqueMode(t *testing.T) {
	e := newEditor(t)
	e.Model().Shapes = []geometry.Shape{triangle(0, 0), triangle(300, 300)}
	e.Handle(editor.ClickAt(10, 10))
	e.Handle(editor.Key("t"))

	cmds := editor.Render(e.Snapshot())
	if cmds[1].Stroke != editor.ColorUnselected {
		t.Fatal("circle should not be highlighted while a shape is selected")
	}
	if cmds[2].Stroke != editor.ColorSelected || cmds[3].Stroke != editor.ColorUnselected {
		t.Fatal("only shape 0 should be highlighted")
	}
	if cmds[2].Fill != editor.ColorFillOpaque || cmds[2].Opacity != 1 {
		t.Fatalf("expected opaque fill, got %+v", cmds[2])
	}

	e.Handle(editor.Event{Kind: editor.SelectAllAction})
	for _, cmd := range editor.Render(e.Snapshot())[2:] {
		if cmd.Stroke != editor.ColorSelected {
			t.Fatal("select-all highlights every shape")
		}
	}
}

func TestRenderDoesNotAliasModel(t *testing.T) {
	e := newEditor(t)
	e.Model().Shapes = []geometry.Shape{triangle(0, 0)}
	cmds := editor.Render(e.Snapshot())
	cmds[2].Points[0] = geometry.Pt(999, 999)
	if e.Model().Shapes[0].Points[0] != geometry.Pt(0, 0) {
		t.Fatal("render output aliases model points")
	}
}

func TestRenderNilModel(t *testing.T) {
	if cmds := editor.Render(editor.Snapshot{}); cmds != nil {
		t.Fatalf("expected no commands, got %v", cmds)
	}
}
