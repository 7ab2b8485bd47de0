// Package renderer rasterizes a wireframe view of the camera scene.
package renderer

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"

	"github.com/ivlev/flycam/internal/keyframe"
	"github.com/ivlev/flycam/internal/system"
)

const circleSteps = 96

// Style holds the colors and line widths of a frame.
type Style struct {
	Background gg.RGBA
	Sphere     gg.RGBA
	AxisX      gg.RGBA
	AxisY      gg.RGBA
	AxisZ      gg.RGBA
	Path       gg.RGBA
	Keyframe   gg.RGBA
	LookAt     gg.RGBA
	LineWidth  float64
	PointSize  float64
}

func DefaultStyle() Style {
	return Style{
		Background: gg.RGB(0.07, 0.08, 0.1),
		Sphere:     gg.RGBA2(0.6, 0.65, 0.75, 0.5),
		AxisX:      gg.RGB(0.9, 0.3, 0.3),
		AxisY:      gg.RGB(0.3, 0.85, 0.35),
		AxisZ:      gg.RGB(0.35, 0.5, 0.95),
		Path:       gg.RGB(0.95, 0.8, 0.3),
		Keyframe:   gg.RGB(1, 1, 1),
		LookAt:     gg.RGBA2(1, 1, 1, 0.25),
		LineWidth:  1.5,
		PointSize:  4,
	}
}

// Scene is the static content drawn under every frame.
type Scene struct {
	Orbit     keyframe.Orbit
	Keyframes []keyframe.Keyframe
	Path      []mgl64.Vec3 // sampled eye positions
}

type Renderer struct {
	vp       Viewport
	style    Style
	scene    Scene
	backdrop *gg.ImageBuf
	pool     *system.ImagePool
}

type Option func(*Renderer)

func WithStyle(s Style) Option {
	return func(r *Renderer) { r.style = s }
}

// WithBackdrop draws img under the wireframe. It should already match the
// viewport size.
func WithBackdrop(img image.Image) Option {
	return func(r *Renderer) {
		if img != nil {
			r.backdrop = gg.ImageBufFromImage(img)
		}
	}
}

// WithPool sets the buffer pool frames are taken from.
func WithPool(p *system.ImagePool) Option {
	return func(r *Renderer) { r.pool = p }
}

func New(width, height int, scene Scene, opts ...Option) *Renderer {
	r := &Renderer{
		vp:    Viewport{Width: width, Height: height},
		style: DefaultStyle(),
		scene: scene,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Viewport() Viewport { return r.vp }

// Render draws the scene seen through view and proj. The returned buffer
// belongs to the pool; hand it back with Release once it has been written.
// Render is safe for concurrent use.
func (r *Renderer) Render(view, proj mgl64.Mat4) (*image.RGBA, error) {
	dc := gg.NewContext(r.vp.Width, r.vp.Height)
	defer dc.Close()

	dc.ClearWithColor(r.style.Background)
	if r.backdrop != nil {
		dc.DrawImage(r.backdrop, 0, 0)
	}

	mvp := proj.Mul4(view)
	dc.SetLineWidth(r.style.LineWidth)

	steps := []func(*gg.Context, mgl64.Mat4) error{
		r.drawSphere,
		r.drawAxes,
		r.drawPath,
		r.drawKeyframes,
	}
	for _, step := range steps {
		if err := step(dc, mvp); err != nil {
			return nil, err
		}
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}
	dst := r.buffer()
	copy(dst.Pix, dc.ResizeTarget().Data())
	return dst, nil
}

// Release returns a frame obtained from Render to the pool.
func (r *Renderer) Release(img *image.RGBA) {
	if r.pool != nil {
		r.pool.Put(img)
		return
	}
	system.PutImage(img)
}

func (r *Renderer) buffer() *image.RGBA {
	rect := image.Rect(0, 0, r.vp.Width, r.vp.Height)
	if r.pool != nil {
		return r.pool.Get(rect)
	}
	return system.GetImage(rect)
}

func setColor(dc *gg.Context, c gg.RGBA) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}

// polyline adds the visible parts of pts to the current path.
func (r *Renderer) polyline(dc *gg.Context, mvp mgl64.Mat4, pts []mgl64.Vec3) {
	for i := 1; i < len(pts); i++ {
		x1, y1, x2, y2, ok := r.vp.ProjectSegment(mvp, pts[i-1], pts[i])
		if !ok {
			continue
		}
		dc.MoveTo(x1, y1)
		dc.LineTo(x2, y2)
	}
}

// drawSphere outlines the scene sphere with its three axis-aligned great circles.
func (r *Renderer) drawSphere(dc *gg.Context, mvp mgl64.Mat4) error {
	c := r.scene.Orbit.Center
	rad := r.scene.Orbit.Diameter
	for axis := 0; axis < 3; axis++ {
		pts := make([]mgl64.Vec3, circleSteps+1)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / circleSteps
			s, co := math.Sincos(a)
			var p mgl64.Vec3
			switch axis {
			case 0:
				p = mgl64.Vec3{co, s, 0}
			case 1:
				p = mgl64.Vec3{0, co, s}
			default:
				p = mgl64.Vec3{co, 0, s}
			}
			pts[i] = c.Add(p.Mul(rad))
		}
		r.polyline(dc, mvp, pts)
	}
	setColor(dc, r.style.Sphere)
	return dc.Stroke()
}

func (r *Renderer) drawAxes(dc *gg.Context, mvp mgl64.Mat4) error {
	c := r.scene.Orbit.Center
	l := r.scene.Orbit.Diameter
	axes := []struct {
		dir mgl64.Vec3
		col gg.RGBA
	}{
		{mgl64.Vec3{1, 0, 0}, r.style.AxisX},
		{mgl64.Vec3{0, 1, 0}, r.style.AxisY},
		{mgl64.Vec3{0, 0, 1}, r.style.AxisZ},
	}
	for _, ax := range axes {
		r.polyline(dc, mvp, []mgl64.Vec3{c, c.Add(ax.dir.Mul(l))})
		setColor(dc, ax.col)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawPath(dc *gg.Context, mvp mgl64.Mat4) error {
	if len(r.scene.Path) < 2 {
		return nil
	}
	r.polyline(dc, mvp, r.scene.Path)
	setColor(dc, r.style.Path)
	return dc.Stroke()
}

func (r *Renderer) drawKeyframes(dc *gg.Context, mvp mgl64.Mat4) error {
	if len(r.scene.Keyframes) == 0 {
		return nil
	}
	for _, kf := range r.scene.Keyframes {
		r.polyline(dc, mvp, []mgl64.Vec3{kf.Position, kf.LookAt})
	}
	setColor(dc, r.style.LookAt)
	if err := dc.Stroke(); err != nil {
		return err
	}

	for _, kf := range r.scene.Keyframes {
		x, y, ok := r.vp.Project(mvp, kf.Position)
		if !ok {
			continue
		}
		dc.DrawCircle(x, y, r.style.PointSize)
	}
	setColor(dc, r.style.Keyframe)
	return dc.Fill()
}
