package effects

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"testing"

	"github.com/skip2/go-qrcode"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestFadeLevel(t *testing.T) {
	fade := Fade{Duration: 1}
	tests := []struct {
		time float64
		want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{2, 1},
		{3.75, 0.25},
		{4, 0},
	}
	for _, tt := range tests {
		got := fade.Level(FrameInfo{Time: tt.time, MinTime: 0, MaxTime: 4})
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Level(t=%v) = %v, want %v", tt.time, got, tt.want)
		}
	}

	if got := (Fade{}).Level(FrameInfo{Time: 0, MaxTime: 4}); got != 1 {
		t.Errorf("zero duration should not fade, got %v", got)
	}
}

func TestFadeApply(t *testing.T) {
	img := solid(4, 4, color.RGBA{200, 100, 50, 255})
	Fade{Duration: 2}.Apply(img, FrameInfo{Time: 1, MinTime: 0, MaxTime: 10})

	got := img.RGBAAt(2, 2)
	if got.R != 100 || got.G != 50 || got.B != 25 || got.A != 255 {
		t.Errorf("expected half brightness, got %v", got)
	}
}

func TestHUD(t *testing.T) {
	bg := color.RGBA{10, 20, 30, 255}
	img := solid(320, 120, bg)
	hud := NewHUD()
	f := FrameInfo{Index: 4, Total: 10, Time: 1.25, MaxTime: 4, Segment: 2, Source: "default", Fallback: true}

	lines := hud.Lines(f)
	if !strings.Contains(lines[0], "frame 5/10") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "(fallback)") {
		t.Errorf("fallback not reported: %q", lines[1])
	}

	hud.Apply(img, f)
	if img.RGBAAt(2, 2) == bg {
		t.Error("HUD box should be drawn in the corner")
	}
	if img.RGBAAt(319, 119) != bg {
		t.Error("HUD should leave the opposite corner untouched")
	}
}

func TestQRStamp(t *testing.T) {
	bg := color.RGBA{0, 0, 255, 255}
	img := solid(200, 200, bg)
	q := NewQRStamp(64)
	f := FrameInfo{Index: 7, Time: 0.5}

	q.Apply(img, f)
	if img.RGBAAt(200-8-32, 200-8-32) == bg {
		t.Error("stamp should cover the bottom-right corner")
	}
	if img.RGBAAt(10, 10) != bg {
		t.Error("stamp should leave the top-left corner untouched")
	}

	code, err := qrcode.New(q.Payload(f), q.Level)
	if err != nil {
		t.Fatal(err)
	}
	if code.Content != "flycam frame=7 t=0.500000" {
		t.Errorf("unexpected payload %q", code.Content)
	}
}

type countEffect struct{ n *int }

func (c countEffect) Apply(*image.RGBA, FrameInfo) { *c.n++ }

func TestChain(t *testing.T) {
	n := 0
	Chain{countEffect{&n}, countEffect{&n}, Chain{countEffect{&n}}}.Apply(nil, FrameInfo{})
	if n != 3 {
		t.Errorf("expected 3 applications, got %d", n)
	}
}
