package renderer

import (
	"github.com/go-gl/mathgl/mgl64"
)

// minW is the clip-space w below which a point counts as behind the camera.
const minW = 1e-6

// Viewport maps normalized device coordinates to pixels, y growing downwards.
type Viewport struct {
	Width, Height int
}

func (v Viewport) toPixels(ndc mgl64.Vec3) (float64, float64) {
	x := (ndc.X() + 1) / 2 * float64(v.Width)
	y := (1 - ndc.Y()) / 2 * float64(v.Height)
	return x, y
}

// Project maps a world point through the combined projection*view matrix.
// ok is false when the point lies behind the camera.
func (v Viewport) Project(mvp mgl64.Mat4, p mgl64.Vec3) (x, y float64, ok bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip.W() <= minW {
		return 0, 0, false
	}
	x, y = v.toPixels(clip.Vec3().Mul(1 / clip.W()))
	return x, y, true
}

// ProjectSegment projects the segment a-b, trimming the part behind the
// camera. ok is false when nothing of the segment is visible.
func (v Viewport) ProjectSegment(mvp mgl64.Mat4, a, b mgl64.Vec3) (x1, y1, x2, y2 float64, ok bool) {
	ca := mvp.Mul4x1(a.Vec4(1))
	cb := mvp.Mul4x1(b.Vec4(1))
	wa, wb := ca.W(), cb.W()
	if wa <= minW && wb <= minW {
		return 0, 0, 0, 0, false
	}
	if wa <= minW {
		ca = clipTo(cb, ca)
	} else if wb <= minW {
		cb = clipTo(ca, cb)
	}
	x1, y1 = v.toPixels(ca.Vec3().Mul(1 / ca.W()))
	x2, y2 = v.toPixels(cb.Vec3().Mul(1 / cb.W()))
	return x1, y1, x2, y2, true
}

// clipTo moves the hidden end of a clip-space segment onto w = minW.
func clipTo(visible, hidden mgl64.Vec4) mgl64.Vec4 {
	s := (visible.W() - minW) / (visible.W() - hidden.W())
	return visible.Add(hidden.Sub(visible).Mul(s))
}
