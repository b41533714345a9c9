package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"puppetmask/internal/editor"
	"puppetmask/internal/geometry"
	"puppetmask/internal/logging"
)

func isBinary(img *image.Gray) bool {
	for _, v := range img.Pix {
		if v != Used && v != Unused {
			return false
		}
	}
	return true
}

func usedAt(img *image.Gray, x, y int) bool {
	return img.GrayAt(x, y) == color.Gray{Y: Used}
}

func countRegions(img *image.Gray) int {
	b := img.Bounds()
	seen := make([]bool, b.Dx()*b.Dy())
	regions := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if seen[y*b.Dx()+x] || !usedAt(img, x, y) {
				continue
			}
			regions++
			queue := []image.Point{{X: x, Y: y}}
			seen[y*b.Dx()+x] = true
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				for _, d := range []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					n := p.Add(d)
					if !n.In(b) || seen[n.Y*b.Dx()+n.X] || !usedAt(img, n.X, n.Y) {
						continue
					}
					seen[n.Y*b.Dx()+n.X] = true
					queue = append(queue, n)
				}
			}
		}
	}
	return regions
}

func TestRasterizeCircleAndTriangle(t *testing.T) {
	circle := geometry.Circle{CenterX: 100, CenterY: 100, Radius: 50}
	tri := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(300, 300), geometry.Pt(400, 300), geometry.Pt(350, 380), geometry.Pt(300, 300)},
		Closed: true,
	}
	mask, err := Rasterize(640, 480, circle, []geometry.Shape{tri}, logging.NewNop())
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if mask.Bounds() != image.Rect(0, 0, 640, 480) {
		t.Fatalf("unexpected bounds %v", mask.Bounds())
	}
	if !isBinary(mask) {
		t.Fatal("mask must only contain black and white")
	}
	if got := countRegions(mask); got != 2 {
		t.Fatalf("expected 2 black regions, got %d", got)
	}
	if !usedAt(mask, 100, 100) || !usedAt(mask, 350, 320) {
		t.Fatal("expected circle and triangle interiors to be black")
	}
	if usedAt(mask, 0, 0) || usedAt(mask, 100, 160) {
		t.Fatal("expected background to be white")
	}
}

func TestRasterizeSkipsOpenAndDegenerateShapes(t *testing.T) {
	open := geometry.Shape{Points: []geometry.Point{geometry.Pt(300, 300), geometry.Pt(400, 300), geometry.Pt(350, 380)}}
	line := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(300, 100), geometry.Pt(400, 100), geometry.Pt(300, 100)},
		Closed: true,
	}
	mask, err := Rasterize(640, 480, geometry.Circle{CenterX: 50, CenterY: 50, Radius: 20}, []geometry.Shape{open, line}, nil)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if got := countRegions(mask); got != 1 {
		t.Fatalf("expected only the circle, got %d regions", got)
	}
	if usedAt(mask, 350, 320) {
		t.Fatal("open shape must not be filled")
	}
}

func TestRasterizeOppositeWindingsDoNotCancel(t *testing.T) {
	cw := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(10, 10), geometry.Pt(60, 10), geometry.Pt(60, 60), geometry.Pt(10, 60)},
		Closed: true,
	}
	ccw := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(30, 30), geometry.Pt(30, 90), geometry.Pt(90, 90), geometry.Pt(90, 30)},
		Closed: true,
	}
	mask, err := Rasterize(100, 100, geometry.Circle{CenterX: -500, CenterY: -500, Radius: 10}, []geometry.Shape{cw, ccw}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !usedAt(mask, 45, 45) {
		t.Fatal("overlap of opposite windings must stay filled")
	}
}

func TestRasterizeClipsToFrame(t *testing.T) {
	circle := geometry.Circle{CenterX: 0, CenterY: 0, Radius: 40}
	big := geometry.Shape{
		Points: []geometry.Point{geometry.Pt(-100, 150), geometry.Pt(500, 150), geometry.Pt(500, 900), geometry.Pt(-100, 900)},
		Closed: true,
	}
	mask, err := Rasterize(200, 200, circle, []geometry.Shape{big}, nil)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if !usedAt(mask, 5, 5) || !usedAt(mask, 199, 199) || !usedAt(mask, 0, 160) {
		t.Fatal("expected clipped geometry to cover frame edges")
	}
	if usedAt(mask, 100, 100) {
		t.Fatal("expected untouched center")
	}
}

func TestRasterizeRejectsEmptyFrame(t *testing.T) {
	if _, err := Rasterize(0, 10, geometry.Circle{}, nil, nil); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	mask, err := Rasterize(64, 48, geometry.Circle{CenterX: 32, CenterY: 24, Radius: 10}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := EncodePNG(mask)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != mask.Bounds() {
		t.Fatalf("bounds changed: %v", decoded.Bounds())
	}
	r, g, b, _ := decoded.At(32, 24).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Fatal("expected black center after round trip")
	}
}

func TestPaintOverlay(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range frame.Pix {
		frame.Pix[i] = 0xff
	}
	model := geometry.NewModel(200, 100, geometry.DefaultLimits())
	e := editor.New(model, editor.Options{}, nil)
	e.Handle(editor.Key("t"))
	cmds := editor.Render(e.Snapshot())

	out := PaintOverlay(frame, cmds, 0)
	if out.Bounds() != frame.Bounds() {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if got := out.NRGBAAt(100, 50); got != (color.NRGBA{A: 255}) {
		t.Fatalf("expected opaque black fill at circle center, got %v", got)
	}
	if got := out.NRGBAAt(2, 2); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("expected untouched frame pixel, got %v", got)
	}
	if frame.RGBAAt(100, 50).R != 0xff {
		t.Fatal("frame must not be modified")
	}

	small := PaintOverlay(frame, cmds, 50)
	if small.Bounds().Dx() != 50 || small.Bounds().Dy() != 25 {
		t.Fatalf("expected fitted preview, got %v", small.Bounds())
	}
}
