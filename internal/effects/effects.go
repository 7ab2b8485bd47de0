// Package effects post-processes rendered frames.
package effects

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/flycam/internal/logging"
)

// FrameInfo describes the frame an effect is applied to.
type FrameInfo struct {
	Index    int
	Total    int
	Time     float64
	MinTime  float64
	MaxTime  float64
	Segment  int
	Source   string
	Eye      mgl64.Vec3
	Target   mgl64.Vec3
	Fallback bool
}

type Effect interface {
	Apply(img *image.RGBA, f FrameInfo)
}

// Chain applies effects in order.
type Chain []Effect

func (c Chain) Apply(img *image.RGBA, f FrameInfo) {
	for _, e := range c {
		e.Apply(img, f)
	}
}

// HUD prints the playback state in the top-left corner.
type HUD struct {
	Face font.Face
	Fg   color.Color
	Bg   color.Color
}

func NewHUD() *HUD {
	return &HUD{
		Face: basicfont.Face7x13,
		Fg:   color.RGBA{255, 230, 120, 255},
		Bg:   color.RGBA{0, 0, 0, 160},
	}
}

// Lines returns the text printed for f.
func (h *HUD) Lines(f FrameInfo) []string {
	src := f.Source
	if f.Fallback {
		src += " (fallback)"
	}
	return []string{
		fmt.Sprintf("frame %d/%d  t=%.3f [%.2f..%.2f]", f.Index+1, f.Total, f.Time, f.MinTime, f.MaxTime),
		fmt.Sprintf("segment %d  src=%s", f.Segment, src),
		fmt.Sprintf("eye    %6.2f %6.2f %6.2f", f.Eye.X(), f.Eye.Y(), f.Eye.Z()),
		fmt.Sprintf("target %6.2f %6.2f %6.2f", f.Target.X(), f.Target.Y(), f.Target.Z()),
	}
}

func (h *HUD) Apply(img *image.RGBA, f FrameInfo) {
	lines := h.Lines(f)
	m := h.Face.Metrics()
	lineH := m.Height.Ceil()
	const pad = 6

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(h.Face, l).Ceil(); w > width {
			width = w
		}
	}
	box := image.Rect(0, 0, width+2*pad, len(lines)*lineH+2*pad).Add(img.Rect.Min)
	draw.Draw(img, box.Intersect(img.Rect), image.NewUniform(h.Bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(h.Fg),
		Face: h.Face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(box.Min.X+pad, box.Min.Y+pad+i*lineH+m.Ascent.Ceil())
		d.DrawString(l)
	}
}

// QRStamp encodes the frame index and time as a QR code in the bottom-right
// corner so exported frames can be matched to the animation time.
type QRStamp struct {
	Size   int
	Margin int
	Level  qrcode.RecoveryLevel
}

func NewQRStamp(size int) *QRStamp {
	return &QRStamp{Size: size, Margin: 8, Level: qrcode.Medium}
}

// Payload returns the text encoded for f.
func (q *QRStamp) Payload(f FrameInfo) string {
	return fmt.Sprintf("flycam frame=%d t=%.6f", f.Index, f.Time)
}

func (q *QRStamp) Apply(img *image.RGBA, f FrameInfo) {
	code, err := qrcode.New(q.Payload(f), q.Level)
	if err != nil {
		logging.Logger().Warn("qr stamp skipped", "frame", f.Index, "err", err)
		return
	}
	stamp := code.Image(q.Size)
	b := stamp.Bounds()
	at := image.Pt(img.Rect.Max.X-b.Dx()-q.Margin, img.Rect.Max.Y-b.Dy()-q.Margin)
	draw.Draw(img, b.Add(at).Intersect(img.Rect), stamp, b.Min, draw.Src)
}

// Fade darkens frames within Duration seconds of either end of the range.
type Fade struct {
	Duration float64
}

// Level returns the brightness factor for f in [0,1].
func (e Fade) Level(f FrameInfo) float64 {
	if e.Duration <= 0 {
		return 1
	}
	in := (f.Time - f.MinTime) / e.Duration
	out := (f.MaxTime - f.Time) / e.Duration
	return mgl64.Clamp(min(in, out), 0, 1)
}

func (e Fade) Apply(img *image.RGBA, f FrameInfo) {
	k := e.Level(f)
	if k >= 1 {
		return
	}
	scale := uint32(k * 256)
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		row := img.Pix[img.PixOffset(img.Rect.Min.X, y):img.PixOffset(img.Rect.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i] = uint8(uint32(row[i]) * scale >> 8)
			row[i+1] = uint8(uint32(row[i+1]) * scale >> 8)
			row[i+2] = uint8(uint32(row[i+2]) * scale >> 8)
		}
	}
}
